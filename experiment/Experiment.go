// Package experiment implements functionality for running an experiment
package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/qlambda/agent"
	"github.com/samuelfneumann/qlambda/environment/envconfig"
	"github.com/samuelfneumann/qlambda/experiment/checkpointer"
	"github.com/samuelfneumann/qlambda/experiment/trackers"
	ts "github.com/samuelfneumann/qlambda/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes util the maximum timestep or episode limit is
// reached. The RunEpisode() function will run a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments will
// send each TimeStep to Trackers using the Tracker's Track() method.
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register() function.
type Experiment interface {
	Run() error
	RunEpisode() (bool, error) // Returns whether the experiment is done

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep) error

	// Save all tracked data to disk
	Save() error

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)

	// Saves the current state of all agents
	checkpoint(ts.TimeStep) error
}

// Type is the type of an Experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxSteps    uint
	MaxEpisodes uint
	EnvConf     envconfig.Config
	AgentConf   agent.TypedConfigList

	// CheckpointEvery is the number of steps between agent checkpoints.
	// A value of 0 disables checkpointing.
	CheckpointEvery int
	OutputDir       string
}

// LoadConfig reads a JSON experiment Config from filename
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}
	return c, c.Validate()
}

// Validate returns an error if the Config cannot create an Experiment
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %v", c.Type)
	}
	if c.MaxSteps == 0 && c.MaxEpisodes == 0 {
		return fmt.Errorf("validate: at least one of MaxSteps and " +
			"MaxEpisodes must be positive")
	}
	if c.AgentConf.ConfigList == nil || c.AgentConf.Len() == 0 {
		return fmt.Errorf("validate: no agent configurations")
	}
	if !agent.Registered(c.AgentConf.Type) {
		return fmt.Errorf("validate: unregistered agent type %q",
			c.AgentConf.Type)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint interval cannot be "+
			"negative (%d)", c.CheckpointEvery)
	}
	return nil
}

// CreateExp creates the Experiment that runs the agent at index i of
// the agent configuration list
func (c Config) CreateExp(i int, seed uint64, t []trackers.Tracker,
	logger *logrus.Logger) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %v", err)
	}
	if i < 0 || i >= c.AgentConf.Len() {
		return nil, fmt.Errorf("createExp: agent index %d out of range "+
			"[0, %d)", i, c.AgentConf.Len())
	}

	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create "+
			"environment: %v", err)
	}

	agentConf := c.AgentConf.At(i)
	if err := agentConf.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	a, err := agentConf.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	var checks []checkpointer.Checkpointer
	if c.CheckpointEvery > 0 {
		object, ok := a.(checkpointer.Serializable)
		if !ok {
			return nil, fmt.Errorf("createExp: agent %T cannot be "+
				"checkpointed", a)
		}

		dir := filepath.Join(c.OutputDir, "checkpoints")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("createExp: %v", err)
		}
		name := fmt.Sprintf("agent%d", i)
		check, err := checkpointer.NewNStep(c.CheckpointEvery, object,
			checkpointer.FilenameEnumerator(0, dir, name, ".gob"))
		if err != nil {
			return nil, fmt.Errorf("createExp: %v", err)
		}
		checks = append(checks, check)
	}

	return NewOnline(env, a, c.MaxSteps, c.MaxEpisodes, t, checks, logger),
		nil
}
