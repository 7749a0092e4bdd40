package experiment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/qlambda/agent"
	env "github.com/samuelfneumann/qlambda/environment"
	"github.com/samuelfneumann/qlambda/experiment/checkpointer"
	"github.com/samuelfneumann/qlambda/experiment/trackers"
	ts "github.com/samuelfneumann/qlambda/timestep"
	"github.com/samuelfneumann/qlambda/utils/progressbar"
)

// describer is implemented by agents which can report their internal
// statistics for logging
type describer interface {
	Epsilon() float64
	GlobalStep() int
	NumStates() int
}

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent

	runID           string
	maxSteps        uint
	maxEpisodes     uint
	currentSteps    uint
	currentEpisodes uint

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer

	log      *logrus.Entry
	progress *progressbar.ManualProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The experiment runs until steps
// timesteps or episodes episodes have passed, whichever happens first.
// A limit of 0 is no limit. The t parameter is a slice of
// trackers.Tracker which determine what data is saved, and the c
// parameter determines when the agent is checkpointed. A nil logger
// logs with the standard logrus logger.
func NewOnline(e env.Environment, a agent.Agent, steps, episodes uint,
	t []trackers.Tracker, c []checkpointer.Checkpointer,
	logger *logrus.Logger) *Online {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runID := uuid.New().String()

	return &Online{
		Environment:   e,
		Agent:         a,
		runID:         runID,
		maxSteps:      steps,
		maxEpisodes:   episodes,
		trackers:      t,
		checkpointers: c,
		log:           logger.WithField("run", runID),
	}
}

// RunID returns the unique id of the experiment run
func (o *Online) RunID() string {
	return o.runID
}

// Steps returns the number of timesteps run so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// Episodes returns the number of episodes run so far
func (o *Online) Episodes() uint {
	return o.currentEpisodes
}

// SetProgressBar sets a progress bar that is advanced on each timestep
// if the experiment has a step limit, or on each episode otherwise
func (o *Online) SetProgressBar(p *progressbar.ManualProgressBar) {
	o.progress = p
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// done returns whether the experiment has reached one of its limits
func (o *Online) done() bool {
	return (o.maxSteps > 0 && o.currentSteps >= o.maxSteps) ||
		(o.maxEpisodes > 0 && o.currentEpisodes >= o.maxEpisodes)
}

// RunEpisode runs a single episode of the experiment and returns
// whether the experiment is done
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}
	if err := o.track(step); err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}

	episodeReturn := 0.0
	for !step.Last() && !(o.maxSteps > 0 && o.currentSteps >= o.maxSteps) {
		o.currentSteps++

		// Select action, step in environment
		action, err := o.Agent.SelectAction(step)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
		episodeReturn += step.Reward

		// Cache the environment step in each Tracker
		if err := o.track(step); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.Agent.Step(); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		if err := o.checkpoint(step); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
		if o.progress != nil && o.maxSteps > 0 {
			o.progress.Increment()
		}
	}
	o.Agent.EndEpisode()
	o.currentEpisodes++

	if o.progress != nil {
		if o.maxSteps == 0 {
			o.progress.Increment()
		}
		if err := o.progress.Display(); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
	}

	fields := logrus.Fields{
		"episode": o.currentEpisodes,
		"steps":   step.Number,
		"return":  episodeReturn,
		"end":     step.EndType().String(),
	}
	if d, ok := o.Agent.(describer); ok {
		fields["epsilon"] = d.Epsilon()
		fields["states"] = d.NumStates()
		fields["globalStep"] = d.GlobalStep()
	}
	o.log.WithFields(fields).Debug("episode finished")

	return o.done(), nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	o.log.WithFields(logrus.Fields{
		"maxSteps":    o.maxSteps,
		"maxEpisodes": o.maxEpisodes,
	}).Info("starting experiment")

	for !o.done() {
		if _, err := o.RunEpisode(); err != nil {
			o.log.WithError(err).Error("experiment failed")
			return fmt.Errorf("run: %w", err)
		}
	}
	if o.progress != nil {
		if err := o.progress.Close(); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}

	o.log.WithFields(logrus.Fields{
		"steps":    o.currentSteps,
		"episodes": o.currentEpisodes,
	}).Info("experiment finished")
	return nil
}

// Save saves all the data cached by the Trackers
func (o *Online) Save() error {
	for _, tracker := range o.trackers {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) error {
	for _, tracker := range o.trackers {
		if err := tracker.Track(t); err != nil {
			return err
		}
	}
	return nil
}

// checkpoint passes the current timestep to each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}
