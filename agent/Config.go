package agent

import (
	"github.com/samuelfneumann/qlambda/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent that the Config constructs
	Type() Type
}

// ConfigList stores a number of Configs compactly. Each field of a
// concrete ConfigList is a slice of values for the same field of the
// concrete Config, and the list represents every combination of them.
type ConfigList interface {
	// Config returns an empty Config of the type stored by the list
	Config() Config

	// At returns the Config at index i of the list
	At(i int) Config

	// Len returns the number of Configs in the list
	Len() int

	// Type returns the type of agent constructed by the list's Configs
	Type() Type
}
