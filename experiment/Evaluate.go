package experiment

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/qlambda/agent"
	env "github.com/samuelfneumann/qlambda/environment"
)

// Evaluate runs episodes greedy episodes of a in e and returns the
// undiscounted return of each. The agent is placed in evaluation mode
// for the duration of the call and does not learn. Episodes which reach
// a state with no valid actions end early. A maxSteps of 0 places no
// limit on the length of an episode beyond the environment's own.
func Evaluate(a agent.Agent, e env.Environment, episodes,
	maxSteps int) ([]float64, error) {
	if episodes < 0 {
		return nil, fmt.Errorf("evaluate: cannot run %d episodes", episodes)
	}

	if !a.IsEval() {
		a.Eval()
		defer a.Train()
	}

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		step, err := e.Reset()
		if err != nil {
			return returns, fmt.Errorf("evaluate: %v", err)
		}

		episodeReturn := 0.0
		for n := 0; !step.Last() && (maxSteps <= 0 || n < maxSteps); n++ {
			action, err := a.SelectAction(step)
			if errors.Is(err, agent.ErrInvalidState) {
				break
			} else if err != nil {
				return returns, fmt.Errorf("evaluate: %w", err)
			}

			step, _, err = e.Step(action)
			if err != nil {
				return returns, fmt.Errorf("evaluate: %v", err)
			}
			episodeReturn += step.Reward
		}
		returns = append(returns, episodeReturn)
	}
	return returns, nil
}
