// Command qlambda trains and evaluates tabular Q(λ) agents on
// gridworlds and plots their learning curves.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options holds the flags shared by every subcommand
type options struct {
	envFile   string
	logLevel  string
	outputDir string
	seed      uint64

	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{logger: logrus.New()}

	root := &cobra.Command{
		Use:   "qlambda",
		Short: "Tabular Q(λ) agents on gridworlds",
		Long: `qlambda trains tabular Q(λ) agents described by an experiment
configuration file, evaluates saved agents greedily, and plots the
learning curves stored in the run database.

Defaults for the global flags may be set with the QLAMBDA_LOG_LEVEL,
QLAMBDA_OUTPUT_DIR, and QLAMBDA_SEED environment variables, which are
also read from the file given by --env-file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.envFile, "env-file", ".env",
		"file of environment variable defaults")
	flags.StringVar(&o.logLevel, "log-level", "info", "logging level")
	flags.StringVarP(&o.outputDir, "output", "o", "out",
		"directory for data, agents, and plots")
	flags.Uint64Var(&o.seed, "seed", 1, "seed for agents and environments")

	root.AddCommand(newTrainCmd(o), newEvalCmd(o), newPlotCmd(o))
	return root
}

// setup loads the environment file, fills unset flags from the
// environment, and configures the logger
func (o *options) setup(cmd *cobra.Command) error {
	err := godotenv.Load(o.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not load %v: %w", o.envFile, err)
	}

	flags := cmd.Flags()
	if v := os.Getenv("QLAMBDA_LOG_LEVEL"); v != "" &&
		!flags.Changed("log-level") {
		o.logLevel = v
	}
	if v := os.Getenv("QLAMBDA_OUTPUT_DIR"); v != "" &&
		!flags.Changed("output") {
		o.outputDir = v
	}
	if v := os.Getenv("QLAMBDA_SEED"); v != "" && !flags.Changed("seed") {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid QLAMBDA_SEED %q: %w", v, err)
		}
		o.seed = seed
	}

	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.logger.SetLevel(level)
	o.logger.SetOutput(cmd.ErrOrStderr())
	return nil
}
