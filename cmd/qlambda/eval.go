package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/qlambda/agent"
	"github.com/samuelfneumann/qlambda/agent/tabular/qlambda"
	"github.com/samuelfneumann/qlambda/environment/gridworld"
	"github.com/samuelfneumann/qlambda/experiment"
)

// renderLimit bounds the length of a rendered episode when no step
// limit is given
const renderLimit = 100

func newEvalCmd(o *options) *cobra.Command {
	var (
		episodes int
		maxSteps int
		render   bool
		colour   bool
	)

	cmd := &cobra.Command{
		Use:   "eval CONFIG AGENT",
		Short: "Evaluate a trained agent greedily",
		Long: `eval loads the agent saved in AGENT and runs greedy episodes in the
environment of the experiment configuration CONFIG. The agent does not
learn during evaluation. With --render the first episode is drawn in
the terminal step by step.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.eval(cmd.OutOrStdout(), args[0], args[1], episodes,
				maxSteps, render, colour)
		},
	}

	cmd.Flags().IntVarP(&episodes, "episodes", "n", 10,
		"number of episodes to run")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0,
		"maximum steps per episode, 0 uses the environment's limit")
	cmd.Flags().BoolVar(&render, "render", false,
		"draw the first episode in the terminal")
	cmd.Flags().BoolVar(&colour, "colour", true, "colour rendered grids")
	return cmd
}

func (o *options) eval(out io.Writer, configFile, agentFile string,
	episodes, maxSteps int, render, colour bool) error {
	c, err := experiment.LoadConfig(configFile)
	if err != nil {
		return err
	}
	env, _, err := c.EnvConf.Create(o.seed)
	if err != nil {
		return err
	}

	f, err := os.Open(agentFile)
	if err != nil {
		return err
	}
	a, err := qlambda.Load(f)
	f.Close()
	if err != nil {
		return err
	}
	if a.NumActions() != env.NumActions() {
		return fmt.Errorf("agent has %d actions but environment has %d",
			a.NumActions(), env.NumActions())
	}

	if render {
		limit := maxSteps
		if limit <= 0 {
			limit = renderLimit
		}
		if err := renderEpisode(out, env, a, limit, colour); err != nil {
			return err
		}
	}

	returns, err := experiment.Evaluate(a, env, episodes, maxSteps)
	if err != nil {
		return err
	}
	for i, r := range returns {
		fmt.Fprintf(out, "episode %d: return %v\n", i, r)
	}
	if len(returns) > 0 {
		mean, std := stat.MeanStdDev(returns, nil)
		fmt.Fprintf(out, "mean return %.3f (std %.3f) over %d episodes\n",
			mean, std, len(returns))
	}

	o.logger.WithField("states", a.NumStates()).Debug("evaluation finished")
	return nil
}

// renderEpisode prints the grid after every step of one greedy episode
func renderEpisode(out io.Writer, g *gridworld.GridWorld, a *qlambda.QLambda,
	limit int, colour bool) error {
	step, err := g.Reset()
	if err != nil {
		return err
	}
	if err := g.Print(out, colour); err != nil {
		return err
	}

	for n := 0; !step.Last() && n < limit; n++ {
		action, err := a.Greedy(step.Observation, step.ValidActions)
		if errors.Is(err, agent.ErrInvalidState) {
			break
		} else if err != nil {
			return err
		}

		step, _, err = g.Step(action)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nstep %d reward %v\n", step.Number, step.Reward)
		if err := g.Print(out, colour); err != nil {
			return err
		}
	}
	if step.Last() {
		fmt.Fprintf(out, "episode ended: %v\n", step.EndType())
	}
	return nil
}
