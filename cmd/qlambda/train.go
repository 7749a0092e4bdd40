package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/qlambda/agent/tabular/qlambda"
	"github.com/samuelfneumann/qlambda/environment/gridworld"
	"github.com/samuelfneumann/qlambda/experiment"
	"github.com/samuelfneumann/qlambda/experiment/trackers"
	"github.com/samuelfneumann/qlambda/utils/progressbar"
)

func newTrainCmd(o *options) *cobra.Command {
	var (
		index    int
		progress bool
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "train CONFIG",
		Short: "Train the agents of an experiment configuration",
		Long: `train runs the experiment described by the JSON file CONFIG once
for each agent configuration it lists, or only for the configuration
selected with --agent. For agent i the returns and episode lengths are
saved to returns-i.bin and lengths-i.bin, the trained agent to
agent-i.gob, and a picture of its greedy policy to policy-i.png. Every
episode is also recorded in the run database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.train(cmd.OutOrStdout(), args[0], index, progress, dbPath)
		},
	}

	cmd.Flags().IntVar(&index, "agent", -1,
		"index of the agent configuration to train, -1 trains all")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar")
	cmd.Flags().StringVar(&dbPath, "db", "",
		"run database (default OUTPUT/runs.db)")
	return cmd
}

func (o *options) train(out io.Writer, configFile string, index int,
	progress bool, dbPath string) error {
	c, err := experiment.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if c.OutputDir == "" {
		c.OutputDir = o.outputDir
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return err
	}

	if dbPath == "" {
		dbPath = filepath.Join(c.OutputDir, "runs.db")
	}
	db, err := trackers.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	var indices []int
	if index < 0 {
		for i := 0; i < c.AgentConf.Len(); i++ {
			indices = append(indices, i)
		}
	} else if index < c.AgentConf.Len() {
		indices = []int{index}
	} else {
		return fmt.Errorf("agent index %d out of range [0, %d)", index,
			c.AgentConf.Len())
	}

	for _, i := range indices {
		if err := o.trainAgent(out, c, i, db, progress); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	return nil
}

// trainAgent runs the experiment for agent configuration i and saves
// its data, the trained agent, and the picture of its greedy policy
func (o *options) trainAgent(out io.Writer, c experiment.Config, i int,
	db *sql.DB, progress bool) error {
	configJSON, err := json.Marshal(c.AgentConf.At(i))
	if err != nil {
		return err
	}

	returns := trackers.NewReturn(outputFile(c, "returns", i, ".bin"))
	lengths := trackers.NewEpisodeLength(outputFile(c, "lengths", i, ".bin"))
	exp, err := c.CreateExp(i, o.seed, []trackers.Tracker{returns, lengths},
		o.logger)
	if err != nil {
		return err
	}

	store, err := trackers.NewSQLite(db, exp.RunID(), string(configJSON))
	if err != nil {
		return err
	}
	exp.Register(store)

	if progress {
		total := c.MaxEpisodes
		if c.MaxSteps > 0 {
			total = c.MaxSteps
		}
		exp.SetProgressBar(progressbar.NewManualProgressBar(out, 50,
			int(total)))
	}

	if err := exp.Run(); err != nil {
		return err
	}
	if err := exp.Save(); err != nil {
		return err
	}

	a, ok := exp.Agent.(*qlambda.QLambda)
	if !ok {
		return fmt.Errorf("cannot save agent of type %T", exp.Agent)
	}
	if err := saveAgent(a, outputFile(c, "agent", i, ".gob")); err != nil {
		return err
	}

	grid, ok := exp.Environment.(*gridworld.GridWorld)
	if !ok {
		return fmt.Errorf("cannot draw policy on %T", exp.Environment)
	}
	if err := grid.SavePolicy(a, outputFile(c, "policy", i, ".png")); err != nil {
		return err
	}

	fields := logrus.Fields{
		"agent":    i,
		"run":      exp.RunID(),
		"episodes": exp.Episodes(),
		"states":   a.NumStates(),
	}
	if r := returns.Returns(); len(r) > 0 {
		fields["meanReturn"] = stat.Mean(r, nil)
		fields["lastReturn"] = r[len(r)-1]
	}
	o.logger.WithFields(fields).Info("training finished")
	return nil
}

func saveAgent(a *qlambda.QLambda, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := a.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func outputFile(c experiment.Config, name string, i int, ext string) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf("%v-%d%v", name, i, ext))
}
