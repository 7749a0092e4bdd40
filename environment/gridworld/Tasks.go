package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/qlambda/environment"
	"github.com/samuelfneumann/qlambda/timestep"
)

// Goal represents the task of reaching goal cells in a GridWorld.
//
// Each move is rewarded with the timestep reward, entering a goal cell
// with the goal reward, and walking into a dead end with no legal moves
// with the trap reward. Episodes end when a goal is reached, when no
// legal move remains, or at the episode cutoff.
type Goal struct {
	environment.Starter
	environment.Ender

	goals          []int
	r, c           int // total rows and columns in environment
	timeStepReward float64
	goalReward     float64
	trapReward     float64
}

// NewGoal creates and returns a new Goal task with goals at positions
// (x[i], y[i]), given that the gridworld has r rows and c columns.
// Episodes are cut off after cutoff steps, and a cutoff of 0 never cuts
// episodes off.
func NewGoal(s environment.Starter, x, y []int, r, c, cutoff int, tr, gr,
	trap float64) (*Goal, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("newGoal: x length (%d) != y length (%d)",
			len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("newGoal: at least one goal is required")
	}

	goals := make([]int, len(x))
	for i := range x {
		// Ensure that the goal is within the proper bounds
		if x[i] < 0 || x[i] >= c {
			return nil, fmt.Errorf("newGoal: x[%d] = %d outside of cols = %d",
				i, x[i], c)
		} else if y[i] < 0 || y[i] >= r {
			return nil, fmt.Errorf("newGoal: y[%d] = %d outside of rows = %d",
				i, y[i], r)
		}
		goals[i] = cToInd(x[i], y[i], c)
	}

	g := &Goal{
		Starter:        s,
		goals:          goals,
		r:              r,
		c:              c,
		timeStepReward: tr,
		goalReward:     gr,
		trapReward:     trap,
	}

	atGoal := environment.NewFunctionEnder(func(t *timestep.TimeStep) bool {
		return g.AtGoal(t.Observation)
	}, timestep.TerminalStateReached)

	g.Ender = environment.Enders{
		atGoal,
		environment.NewNoValidActionsEnder(),
		environment.NewStepLimit(cutoff),
	}

	return g, nil
}

// NewGoalFromLayout creates a new Goal task whose goals are the goal
// cells of a Layout
func NewGoalFromLayout(s environment.Starter, l Layout, cutoff int, tr, gr,
	trap float64) (*Goal, error) {
	x := make([]int, len(l.Goals))
	y := make([]int, len(l.Goals))
	for i, goal := range l.Goals {
		x[i], y[i] = indToC(goal, l.Cols)
	}
	return NewGoal(s, x, y, l.Rows, l.Cols, cutoff, tr, gr, trap)
}

// Goals returns the cell indices of the goals
func (g *Goal) Goals() []int {
	return g.goals
}

// GetReward returns the reward for transitioning from state to
// nextState by taking action
func (g *Goal) GetReward(_ mat.Vector, _ int, nextState mat.Vector) float64 {
	if g.AtGoal(nextState) {
		return g.goalReward
	}
	if g.trapped(nextState) {
		return g.trapReward
	}
	return g.timeStepReward
}

// AtGoal represents if the goal state has been reached or not
func (g *Goal) AtGoal(state mat.Vector) bool {
	position, ok := g.position(state)
	if !ok {
		return false
	}
	for _, goal := range g.goals {
		if position == goal {
			return true
		}
	}
	return false
}

// trapped returns whether the agent has no legal move in state
func (g *Goal) trapped(state mat.Vector) bool {
	position, ok := g.position(state)
	if !ok {
		return false
	}

	blocked := func(cell int) bool {
		code := state.AtVec(cell)
		return code == Wall || code == Visited
	}
	for a := 0; a < NumActions; a++ {
		if _, legal := neighbour(position, a, g.r, g.c, blocked); legal {
			return false
		}
	}
	return true
}

// position returns the cell index of the agent in an observation
func (g *Goal) position(state mat.Vector) (int, bool) {
	if state == nil || state.Len() != g.r*g.c {
		return 0, false
	}
	for i := 0; i < state.Len(); i++ {
		if state.AtVec(i) == Agent {
			return i, true
		}
	}
	return 0, false
}

// String returns the Goal as a string
func (g *Goal) String() string {
	coords := make([][2]int, len(g.goals))
	for i, goal := range g.goals {
		x, y := indToC(goal, g.c)
		coords[i] = [2]int{x, y}
	}
	return fmt.Sprint(coords)
}

// Min returns the minimum reward attainable in the Task
func (g *Goal) Min() float64 {
	rewards := []float64{g.timeStepReward, g.goalReward, g.trapReward}
	return floats.Min(rewards)
}

// Max returns the maximum reward attainable in the Task
func (g *Goal) Max() float64 {
	rewards := []float64{g.timeStepReward, g.goalReward, g.trapReward}
	return floats.Max(rewards)
}
