package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/qlambda/experiment/trackers"
)

func newPlotCmd(o *options) *cobra.Command {
	var (
		dbPath  string
		outFile string
		window  int
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot the learning curves of every stored run",
		Long: `plot reads every run in the run database and draws the smoothed
return and length of each episode as line charts in an HTML page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				dbPath = filepath.Join(o.outputDir, "runs.db")
			}
			if outFile == "" {
				outFile = filepath.Join(o.outputDir, "curves.html")
			}
			return o.plot(dbPath, outFile, window)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "",
		"run database (default OUTPUT/runs.db)")
	cmd.Flags().StringVar(&outFile, "out", "",
		"HTML file to write (default OUTPUT/curves.html)")
	cmd.Flags().IntVarP(&window, "window", "w", 10,
		"number of episodes averaged for each point")
	return cmd
}

func (o *options) plot(dbPath, outFile string, window int) error {
	if window < 1 {
		return fmt.Errorf("window must be positive (%d)", window)
	}
	if _, err := os.Stat(dbPath); err != nil {
		return err
	}

	db, err := trackers.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := trackers.Runs(db)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs stored in %v", dbPath)
	}

	returns := newCurve("Episode return", "return", window)
	lengths := newCurve("Episode length", "steps", window)

	longest := 0
	for _, run := range runs {
		episodes, err := trackers.Episodes(db, run)
		if err != nil {
			return err
		}

		r := make([]float64, len(episodes))
		l := make([]float64, len(episodes))
		for i, e := range episodes {
			r[i] = e.Return
			l[i] = float64(e.Length)
		}

		name := run
		if len(name) > 8 {
			name = name[:8]
		}
		returns.AddSeries(name, lineData(smooth(r, window)))
		lengths.AddSeries(name, lineData(smooth(l, window)))

		if len(episodes) > longest {
			longest = len(episodes)
		}
	}

	xAxis := make([]string, longest)
	for i := range xAxis {
		xAxis[i] = strconv.Itoa(i + 1)
	}
	returns.SetXAxis(xAxis)
	lengths.SetXAxis(xAxis)

	if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(returns, lengths)
	if err := page.Render(f); err != nil {
		return err
	}

	o.logger.WithFields(logrus.Fields{
		"runs": len(runs),
		"file": outFile,
	}).Info("plotted learning curves")
	return nil
}

func newCurve(title, yName string, window int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("moving average over %d episodes", window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

// smooth returns the trailing moving average of x over window points.
// The first points average over all points seen so far.
func smooth(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = stat.Mean(x[start:i+1], nil)
	}
	return out
}
