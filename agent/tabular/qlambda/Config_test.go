package qlambda

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/qlambda/agent"
)

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, agent.QLambdaTabular, DefaultConfig().Type())
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown exploration": func(c *Config) { c.Exploration = "boltzmann" },
		"discount above 1":    func(c *Config) { c.Discount = 1.5 },
		"negative lambda":     func(c *Config) { c.Lambda = -0.1 },
		"zero learning rate":  func(c *Config) { c.LearningRate = 0 },
		"epsilon above 1":     func(c *Config) { c.EpsilonStart = 2 },
		"zero decay steps":    func(c *Config) { c.EpsilonDecaySteps = 0 },
		"negative cutoff":     func(c *Config) { c.TraceCutoff = -1 },
		"negative ucb": func(c *Config) {
			c.Exploration = UCB
			c.UCBConstant = -1
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(&c)
			err := c.Validate()
			assert.True(t, errors.Is(err, agent.ErrConfiguration), err)
		})
	}

	// Decay steps are only required for ε-greedy exploration
	c := DefaultConfig()
	c.Exploration = UCB
	c.EpsilonDecaySteps = 0
	assert.NoError(t, c.Validate())
}

func TestConfigListAt(t *testing.T) {
	list := ConfigList{
		LearningRate: []float64{0.1, 0.5},
		Lambda:       []float64{0, 0.5, 0.9},
		Exploration:  []Exploration{EpsilonGreedy, UCB},
	}
	require.Equal(t, 12, list.Len())

	first := list.At(0).(Config)
	assert.Equal(t, 0.1, first.LearningRate)
	assert.Equal(t, 0.0, first.Lambda)
	assert.Equal(t, EpsilonGreedy, first.Exploration)
	assert.Equal(t, DefaultConfig().Discount, first.Discount)
	assert.Equal(t, DefaultConfig().EpsilonDecaySteps, first.EpsilonDecaySteps)

	// The last field varies fastest
	second := list.At(1).(Config)
	assert.Equal(t, UCB, second.Exploration)
	assert.Equal(t, 0.0, second.Lambda)

	last := list.At(11).(Config)
	assert.Equal(t, 0.5, last.LearningRate)
	assert.Equal(t, 0.9, last.Lambda)
	assert.Equal(t, UCB, last.Exploration)

	seen := make(map[Config]bool)
	for i := 0; i < list.Len(); i++ {
		seen[list.At(i).(Config)] = true
	}
	assert.Len(t, seen, 12)

	assert.Panics(t, func() { list.At(12) })
}

func TestEmptyConfigList(t *testing.T) {
	list := ConfigList{}
	require.Equal(t, 1, list.Len())
	assert.Equal(t, DefaultConfig(), list.At(0))
}

func TestTypedConfigListJSON(t *testing.T) {
	list := NewConfigList(ConfigList{
		Lambda:      []float64{0.2, 0.8},
		Exploration: []Exploration{UCB},
		UCBConstant: []float64{2},
	})

	data, err := json.Marshal(list)
	require.NoError(t, err)

	var decoded agent.TypedConfigList
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, agent.QLambdaTabular, decoded.Type)
	require.Equal(t, 2, decoded.Len())
	config, ok := decoded.At(1).(Config)
	require.True(t, ok)
	assert.Equal(t, 0.8, config.Lambda)
	assert.Equal(t, UCB, config.Exploration)
	assert.Equal(t, 2.0, config.UCBConstant)
}

func TestConfigCreatesAgent(t *testing.T) {
	config := DefaultConfig()
	q, err := New(3, config, 7)
	require.NoError(t, err)
	assert.True(t, config.ValidAgent(q))
	assert.Equal(t, 3, q.NumActions())
}
