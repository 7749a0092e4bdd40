// Package qlambda implements tabular Watkins-style Q(λ) with replacing
// eligibility traces.
//
// Action values, traces, and visit counts are stored sparsely, keyed by
// the exact value of each observation, and are created lazily the first
// time a state is encountered. Exploration is either ε-greedy with a
// linearly decaying ε or UCB1, and every random choice made by the agent
// is drawn from a single source seeded at construction.
//
// The agent is not safe for concurrent use.
package qlambda

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/agent"
	"github.com/samuelfneumann/qlambda/agent/tabular/policy"
	"github.com/samuelfneumann/qlambda/agent/tabular/table"
	"github.com/samuelfneumann/qlambda/timestep"
	"github.com/samuelfneumann/qlambda/utils/floatutils"
)

// QLambda implements the tabular Q(λ) algorithm
type QLambda struct {
	config     Config
	numActions int
	seed       uint64

	table    *table.Table
	initRow  []float64
	src      *rand.PCGSource
	explorer policy.Explorer
	greedy   *policy.Greedy

	globalStep int
	eval       bool

	// Cached transition used by the agent.Learner methods
	step     timestep.TimeStep
	action   int
	nextStep timestep.TimeStep
	observed bool

	maxIndices []int
}

// New creates a new QLambda agent for an environment with numActions
// discrete actions
func New(numActions int, config Config, seed uint64) (*QLambda, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if numActions <= 0 {
		return nil, fmt.Errorf("new: number of actions must be positive "+
			"(actions = %d): %w", numActions, agent.ErrConfiguration)
	}

	t, err := table.New(numActions, config.OptimisticInit)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	q := &QLambda{
		config:     config,
		numActions: numActions,
		seed:       seed,
		table:      t,
	}
	q.initRow = make([]float64, numActions)
	for i := range q.initRow {
		q.initRow[i] = config.OptimisticInit
	}

	q.src = &rand.PCGSource{}
	q.src.Seed(seed)
	q.setPolicies()

	return q, nil
}

// setPolicies constructs the explorer and greedy policies, both drawing
// from the agent's random source
func (q *QLambda) setPolicies() {
	switch q.config.Exploration {
	case UCB:
		q.explorer = policy.NewUCB(q.config.UCBConstant, q.src)

	default:
		schedule := policy.LinearSchedule{
			Start:      q.config.EpsilonStart,
			End:        q.config.EpsilonEnd,
			DecaySteps: q.config.EpsilonDecaySteps,
		}
		q.explorer = policy.NewEGreedy(schedule, q.src)
	}
	q.greedy = policy.NewGreedy(q.src)
}

// checkMask returns an error if the valid-action mask does not have one
// entry per action
func (q *QLambda) checkMask(valid []bool) error {
	if len(valid) != q.numActions {
		return fmt.Errorf("mask has %d entries for %d actions: %w",
			len(valid), q.numActions, agent.ErrInvalidMask)
	}
	return nil
}

// Act selects an action to take in the state obs while exploring.
// Only actions marked in valid are chosen, unless no action is valid,
// in which case an action is chosen uniformly over the entire action
// space.
//
// Each call to Act advances the global step by one and lazily creates
// the rows of obs.
func (q *QLambda) Act(obs mat.Vector, valid []bool) (int, error) {
	if err := q.checkMask(valid); err != nil {
		return 0, fmt.Errorf("act: %w", err)
	}

	id := q.table.ID(table.Key(obs))
	q.globalStep++

	return q.explorer.Choose(q.table.Values(id), q.table.Visits(id), valid,
		q.globalStep), nil
}

// Greedy returns the valid action with the largest action value in
// state obs, breaking ties uniformly at random. Greedy does not modify
// the agent's tables or its global step, and unseen states are treated
// as though their action values are all equal to the initial value.
func (q *QLambda) Greedy(obs mat.Vector, valid []bool) (int, error) {
	if err := q.checkMask(valid); err != nil {
		return 0, fmt.Errorf("greedy: %w", err)
	}

	values := q.initRow
	if id, ok := q.table.Lookup(table.Key(obs)); ok {
		values = q.table.Values(id)
	}

	a, err := q.greedy.Choose(values, valid)
	if err != nil {
		return 0, fmt.Errorf("greedy: %w", err)
	}
	return a, nil
}

// SelectAction selects an action in the state of the argument
// TimeStep. In training mode the agent explores, and in evaluation mode
// it acts greedily. Evaluation mode returns agent.ErrInvalidState if the
// state has no valid action.
func (q *QLambda) SelectAction(t timestep.TimeStep) (int, error) {
	if q.eval {
		return q.Greedy(t.Observation, t.ValidActions)
	}
	return q.Act(t.Observation, t.ValidActions)
}

// Eval sets the agent to evaluation mode
func (q *QLambda) Eval() { q.eval = true }

// Train sets the agent to training mode
func (q *QLambda) Train() { q.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (q *QLambda) IsEval() bool { return q.eval }

// Update performs a single Q(λ) update for the transition
// (obs, action, reward, nextObs). The target bootstraps off of the
// largest valid action value in nextObs, unless done is set or no
// action in nextObs is valid.
func (q *QLambda) Update(obs mat.Vector, action int, reward float64,
	nextObs mat.Vector, done bool, nextValid []bool) error {
	if action < 0 || action >= q.numActions {
		return fmt.Errorf("update: action %d with %d actions: %w", action,
			q.numActions, agent.ErrInvalidAction)
	}
	if err := q.checkMask(nextValid); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	s := q.table.ID(table.Key(obs))

	target := reward
	if !done && anyValid(nextValid) {
		next := q.table.ID(table.Key(nextObs))
		var maxValue float64
		maxValue, q.maxIndices = floatutils.MaxSliceMasked(
			q.table.Values(next), nextValid, q.maxIndices)
		target += q.config.Discount * maxValue
	}

	values := q.table.Values(s)
	tdError := target - values[action]

	// Step size is computed before the visit count is incremented
	alpha := q.stepSize(q.table.Visits(s)[action])

	q.table.DecayTraces(q.config.Discount*q.config.Lambda,
		q.config.TraceCutoff)
	q.table.Traces(s)[action] = 1
	q.table.Activate(s)

	scale := alpha * tdError
	for _, id := range q.table.Live() {
		row := q.table.Values(id)
		for b, e := range q.table.Traces(id) {
			if e != 0 {
				row[b] += scale * e
			}
		}
	}

	q.table.Visits(s)[action]++
	return nil
}

// stepSize returns the learning rate to use given the number of times
// the updated state-action pair has previously been visited
func (q *QLambda) stepSize(visits int) float64 {
	if q.config.DecayLearningRate {
		return 1.0 / (1.0 + float64(visits))
	}
	return q.config.LearningRate
}

// ObserveFirst observes and records the first episodic timestep
func (q *QLambda) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %d is not the first "+
			"timestep of an episode", t.Number)
	}
	q.step = timestep.TimeStep{}
	q.nextStep = t
	q.observed = false
	return nil
}

// Observe observes and records any timestep other than the first
// timestep
func (q *QLambda) Observe(action int, nextStep timestep.TimeStep) error {
	if action < 0 || action >= q.numActions {
		return fmt.Errorf("observe: action %d with %d actions: %w", action,
			q.numActions, agent.ErrInvalidAction)
	}
	q.step = q.nextStep
	q.action = action
	q.nextStep = nextStep
	q.observed = true
	return nil
}

// Step updates the agent using the most recently observed transition.
// Episodes cut off by a step limit are bootstrapped as though they
// continued. Step does nothing in evaluation mode.
func (q *QLambda) Step() error {
	if q.eval {
		return nil
	}
	if !q.observed {
		return fmt.Errorf("step: no transition observed")
	}

	next := q.nextStep
	done := next.Last() && next.EndType() != timestep.Timeout
	nextValid := next.ValidActions
	if nextValid == nil {
		nextValid = make([]bool, q.numActions)
	}

	if err := q.Update(q.step.Observation, q.action, next.Reward,
		next.Observation, done, nextValid); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	q.observed = false
	return nil
}

// EndEpisode performs cleanup at the end of an episode. Traces are
// kept across episode boundaries.
func (q *QLambda) EndEpisode() {
	q.step = timestep.TimeStep{}
	q.nextStep = timestep.TimeStep{}
	q.observed = false
}

// Q returns a copy of the action values of state obs. Unseen states
// report the initial action values.
func (q *QLambda) Q(obs mat.Vector) []float64 {
	if id, ok := q.table.Lookup(table.Key(obs)); ok {
		return append([]float64(nil), q.table.Values(id)...)
	}
	return append([]float64(nil), q.initRow...)
}

// Traces returns a copy of the eligibility traces of state obs
func (q *QLambda) Traces(obs mat.Vector) []float64 {
	if id, ok := q.table.Lookup(table.Key(obs)); ok {
		return append([]float64(nil), q.table.Traces(id)...)
	}
	return make([]float64, q.numActions)
}

// Visits returns a copy of the visit counts of state obs
func (q *QLambda) Visits(obs mat.Vector) []int {
	if id, ok := q.table.Lookup(table.Key(obs)); ok {
		return append([]int(nil), q.table.Visits(id)...)
	}
	return make([]int, q.numActions)
}

// Epsilon returns the current exploration rate. Agents exploring with
// UCB report 0.
func (q *QLambda) Epsilon() float64 {
	if e, ok := q.explorer.(*policy.EGreedy); ok {
		return e.Epsilon(q.globalStep)
	}
	return 0
}

// GlobalStep returns the number of actions selected by Act
func (q *QLambda) GlobalStep() int { return q.globalStep }

// NumStates returns the number of distinct states stored by the agent
func (q *QLambda) NumStates() int { return q.table.Len() }

// NumActions returns the number of actions the agent chooses between
func (q *QLambda) NumActions() int { return q.numActions }

// Config returns the configuration of the agent
func (q *QLambda) Config() Config { return q.config }

// States returns every state stored by the agent, in the order they
// were first encountered
func (q *QLambda) States() []*mat.VecDense {
	keys := q.table.Keys()
	states := make([]*mat.VecDense, len(keys))
	for i, k := range keys {
		states[i] = k.Vector()
	}
	return states
}

func anyValid(valid []bool) bool {
	for _, v := range valid {
		if v {
			return true
		}
	}
	return false
}
