package qlambda

import (
	"fmt"

	"github.com/samuelfneumann/qlambda/agent"
	"github.com/samuelfneumann/qlambda/environment"
)

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.QLambdaTabular, ConfigList{})
}

// Exploration names an exploration strategy
type Exploration string

const (
	EpsilonGreedy Exploration = "eps"
	UCB           Exploration = "ucb"
)

// Config represents a configuration for the QLambda agent
type Config struct {
	Discount float64 // γ

	// LearningRate is the constant step size. If DecayLearningRate is
	// set, LearningRate is ignored and the step size of a state-action
	// pair is 1 / (1 + number of times it was updated).
	LearningRate      float64
	DecayLearningRate bool

	Lambda float64 // λ, the trace decay rate

	Exploration       Exploration
	EpsilonStart      float64
	EpsilonEnd        float64
	EpsilonDecaySteps int
	UCBConstant       float64

	// OptimisticInit is the initial value of every action value
	OptimisticInit float64

	// TraceCutoff zeroes traces whose magnitude falls below it. A
	// cutoff of 0 keeps every non-zero trace.
	TraceCutoff float64
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		Discount:          1.0,
		LearningRate:      0.5,
		DecayLearningRate: false,
		Lambda:            0.0,
		Exploration:       EpsilonGreedy,
		EpsilonStart:      1.0,
		EpsilonEnd:        0.05,
		EpsilonDecaySteps: 10000,
		UCBConstant:       1.0,
		OptimisticInit:    0.0,
		TraceCutoff:       0.0,
	}
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	n, err := env.ActionSpec().NumActions()
	if err != nil {
		return nil, fmt.Errorf("createAgent: %v: %w", err,
			agent.ErrConfiguration)
	}
	return New(n, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLambda)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"(discount = %v): %w", c.Discount, agent.ErrConfiguration)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("validate: lambda must be in [0, 1] "+
			"(lambda = %v): %w", c.Lambda, agent.ErrConfiguration)
	}
	if !c.DecayLearningRate && c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive "+
			"(learning rate = %v): %w", c.LearningRate,
			agent.ErrConfiguration)
	}
	if c.TraceCutoff < 0 {
		return fmt.Errorf("validate: trace cutoff cannot be negative: %w",
			agent.ErrConfiguration)
	}

	switch c.Exploration {
	case EpsilonGreedy:
		if c.EpsilonStart < 0 || c.EpsilonStart > 1 ||
			c.EpsilonEnd < 0 || c.EpsilonEnd > 1 {
			return fmt.Errorf("validate: epsilon must be in [0, 1] "+
				"(start = %v, end = %v): %w", c.EpsilonStart, c.EpsilonEnd,
				agent.ErrConfiguration)
		}
		if c.EpsilonDecaySteps <= 0 {
			return fmt.Errorf("validate: epsilon decay steps must be "+
				"positive (steps = %d): %w", c.EpsilonDecaySteps,
				agent.ErrConfiguration)
		}

	case UCB:
		if c.UCBConstant < 0 {
			return fmt.Errorf("validate: ucb constant cannot be "+
				"negative (c = %v): %w", c.UCBConstant,
				agent.ErrConfiguration)
		}

	default:
		return fmt.Errorf("validate: unknown exploration %q: %w",
			c.Exploration, agent.ErrConfiguration)
	}

	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.QLambdaTabular
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values. A field left empty takes the
// value of DefaultConfig.
type ConfigList struct {
	Discount          []float64
	LearningRate      []float64
	DecayLearningRate []bool
	Lambda            []float64
	Exploration       []Exploration
	EpsilonStart      []float64
	EpsilonEnd        []float64
	EpsilonDecaySteps []int
	UCBConstant       []float64
	OptimisticInit    []float64
	TraceCutoff       []float64
}

// NewConfigList returns a new ConfigList as an agent.TypedConfigList
// so that it can easily be JSON serialized/deserialized without
// knowing the underlying concrete type.
func NewConfigList(c ConfigList) agent.TypedConfigList {
	return agent.NewTypedConfigList(c)
}

// Config returns an empty Config that is of the type stored by
// ConfigList
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// Len returns the number of Configs stored by the list
func (c ConfigList) Len() int {
	return span(c.Discount) * span(c.LearningRate) *
		span(c.DecayLearningRate) * span(c.Lambda) * span(c.Exploration) *
		span(c.EpsilonStart) * span(c.EpsilonEnd) *
		span(c.EpsilonDecaySteps) * span(c.UCBConstant) *
		span(c.OptimisticInit) * span(c.TraceCutoff)
}

// At returns the Config at index i of the list. The first field varies
// slowest and the last field fastest.
func (c ConfigList) At(i int) agent.Config {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("at: index out of range [%d] with length %d", i,
			c.Len()))
	}

	def := DefaultConfig()
	config := Config{}

	// Fill fields from last to first so that the first field varies
	// slowest
	config.TraceCutoff = pick(c.TraceCutoff, def.TraceCutoff, &i)
	config.OptimisticInit = pick(c.OptimisticInit, def.OptimisticInit, &i)
	config.UCBConstant = pick(c.UCBConstant, def.UCBConstant, &i)
	config.EpsilonDecaySteps = pick(c.EpsilonDecaySteps,
		def.EpsilonDecaySteps, &i)
	config.EpsilonEnd = pick(c.EpsilonEnd, def.EpsilonEnd, &i)
	config.EpsilonStart = pick(c.EpsilonStart, def.EpsilonStart, &i)
	config.Exploration = pick(c.Exploration, def.Exploration, &i)
	config.Lambda = pick(c.Lambda, def.Lambda, &i)
	config.DecayLearningRate = pick(c.DecayLearningRate,
		def.DecayLearningRate, &i)
	config.LearningRate = pick(c.LearningRate, def.LearningRate, &i)
	config.Discount = pick(c.Discount, def.Discount, &i)

	return config
}

// span returns the number of values a ConfigList field contributes
func span[T any](values []T) int {
	if len(values) == 0 {
		return 1
	}
	return len(values)
}

// pick selects the value of a field for the mixed-radix index *i and
// consumes that field's digit from *i
func pick[T any](values []T, def T, i *int) T {
	if len(values) == 0 {
		return def
	}
	v := values[*i%len(values)]
	*i /= len(values)
	return v
}
