// Package envconfig provides configuration structs for configuring
// environments with default layouts and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/qlambda/environment"
	"github.com/samuelfneumann/qlambda/environment/gridworld"
	ts "github.com/samuelfneumann/qlambda/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	GridWorld EnvName = "GridWorld"
	Maze      EnvName = "Maze"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	GridWorld			Goal
//	Maze				Goal
type TaskName string

// Tasks available for configuration
const (
	Goal TaskName = "Goal"
)

// DefaultMap is the layout used when a Config does not specify one
var DefaultMap = []string{
	"......G",
	".##.#..",
	".#...#.",
	".#.#.#.",
	"S......",
}

// Default rewards of the Goal task
const (
	DefaultStepReward = -1.0
	DefaultGoalReward = 0.0
	DefaultTrapReward = -10.0
)

// Config implements a specific configuration of a specific environment
// and specific task. Not all environments can have all tasks.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64

	// Map is the gridworld layout in the format read by
	// gridworld.ParseLayout. An empty Map uses DefaultMap.
	Map          []string
	SelfAvoiding bool

	// MazeRows and MazeCols are the number of passage cells of a
	// generated Maze environment
	MazeRows int `json:",omitempty"`
	MazeCols int `json:",omitempty"`

	// RandomStart starts episodes in any open cell rather than the
	// starting cells of the Map
	RandomStart bool

	// Rewards of the Goal task. Nil rewards use the defaults.
	StepReward *float64 `json:",omitempty"`
	GoalReward *float64 `json:",omitempty"`
	TrapReward *float64 `json:",omitempty"`
}

// NewConfig returns a new environment Config with default rewards
func NewConfig(envName EnvName, taskName TaskName, episodeCutoff uint,
	discount float64, layout []string, selfAvoiding bool) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
		Map:           layout,
		SelfAvoiding:  selfAvoiding,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (*gridworld.GridWorld, ts.TimeStep,
	error) {
	switch c.Environment {
	case GridWorld:
		return c.CreateGridWorld(seed)

	case Maze:
		return c.CreateMaze(seed)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateGridWorld is a factory for creating the GridWorld environment
// with the layout and task described by the Config
func (c Config) CreateGridWorld(seed uint64) (*gridworld.GridWorld,
	ts.TimeStep, error) {
	layoutMap := c.Map
	if len(layoutMap) == 0 {
		layoutMap = DefaultMap
	}
	layout, err := gridworld.ParseLayout(layoutMap)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createGridWorld: %v", err)
	}

	g, step, err := c.create(layout, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createGridWorld: %v", err)
	}
	return g, step, nil
}

// CreateMaze is a factory for creating a GridWorld on a randomly
// generated maze of MazeRows x MazeCols passage cells. The maze is
// generated from seed.
func (c Config) CreateMaze(seed uint64) (*gridworld.GridWorld,
	ts.TimeStep, error) {
	layout, err := gridworld.Maze(c.MazeRows, c.MazeCols, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createMaze: %v", err)
	}

	g, step, err := c.create(layout, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createMaze: %v", err)
	}
	return g, step, nil
}

// create returns a GridWorld on layout with the task of the Config
func (c Config) create(layout gridworld.Layout, seed uint64) (
	*gridworld.GridWorld, ts.TimeStep, error) {
	var err error
	var starter environment.Starter
	if c.RandomStart {
		starter, err = gridworld.NewUniformStart(layout.Rows, layout.Cols,
			seed)
	} else {
		starter, err = gridworld.NewLayoutStart(layout, seed)
	}
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	var task gridworld.Task
	switch c.Task {
	case Goal:
		task, err = gridworld.NewGoalFromLayout(starter, layout,
			int(c.EpisodeCutoff), reward(c.StepReward, DefaultStepReward),
			reward(c.GoalReward, DefaultGoalReward),
			reward(c.TrapReward, DefaultTrapReward))
		if err != nil {
			return nil, ts.TimeStep{}, err
		}

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("%v environment "+
			"has no task %v", c.Environment, c.Task)
	}

	return gridworld.New(layout, c.SelfAvoiding, task, c.Discount)
}

func reward(r *float64, def float64) float64 {
	if r == nil {
		return def
	}
	return *r
}
