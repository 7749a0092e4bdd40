package agent

import "errors"

var (
	// ErrConfiguration is returned when an agent is configured with
	// an unknown exploration strategy or invalid hyperparameters
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidMask is returned when a valid-action mask does not have
	// one entry per action
	ErrInvalidMask = errors.New("valid-action mask length does not " +
		"match number of actions")

	// ErrInvalidState is returned when a greedy action is requested in
	// a state that has no valid actions
	ErrInvalidState = errors.New("state has no valid actions")

	// ErrInvalidAction is returned when an action index lies outside
	// of the action space
	ErrInvalidAction = errors.New("action outside of action space")
)
