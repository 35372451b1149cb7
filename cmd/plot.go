package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdevs-sim/pdevs-sim/sim/store"
)

var (
	// CLI flags for the plot command
	plotRunID  string // Run to plot; empty = most recent
	plotPort   string // Output port to plot; empty = every numeric port
	plotList   bool   // List recorded runs instead of plotting
	plotHeight int    // Graph height in rows
	plotWidth  int    // Graph width in columns
)

// plotCmd renders recorded outputs as terminal line graphs
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot recorded outputs of a run",
	Run: func(cmd *cobra.Command, args []string) {
		if dbPath == "" {
			logrus.Fatalf("--db is required")
		}
		db, err := store.Open(dbPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer db.Close()

		if plotList {
			err = listRuns(db, cmd.OutOrStdout())
		} else {
			err = plotRun(db, plotRunID, plotPort, cmd.OutOrStdout())
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func listRuns(db *store.Store, w io.Writer) error {
	runs, err := db.ListRuns()
	if err != nil {
		return err
	}
	for _, r := range runs {
		status := "unfinished"
		if r.FinishedAt != nil {
			status = fmt.Sprintf("ended at %s, %d cycles", r.EndTick.Clock(), r.Cycles)
		}
		fmt.Fprintf(w, "%s  %-16s %s\n", r.ID, r.Network, status)
	}
	return nil
}

// plotRun draws one graph per requested port. Booleans plot as 0/1; ports
// carrying other values are skipped.
func plotRun(db *store.Store, runID, port string, w io.Writer) error {
	if runID == "" {
		runs, err := db.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return errors.New("no runs recorded")
		}
		runID = runs[len(runs)-1].ID
	}
	if _, err := db.GetRun(runID); err != nil {
		return err
	}

	ports := []string{port}
	if port == "" {
		var err error
		if ports, err = db.Ports(runID); err != nil {
			return err
		}
	}

	plotted := 0
	for _, p := range ports {
		outs, err := db.Outputs(runID, p)
		if err != nil {
			return err
		}
		data := make([]float64, 0, len(outs))
		for _, o := range outs {
			if v, ok := o.Float(); ok {
				data = append(data, v)
			}
		}
		if len(data) == 0 {
			logrus.Debugf("port %s has no numeric outputs", p)
			continue
		}
		caption := fmt.Sprintf("%s (%d values, %s to %s)", p, len(data), outs[0].Tick.Clock(), outs[len(outs)-1].Tick.Clock())
		fmt.Fprintln(w, asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(caption),
		))
		fmt.Fprintln(w)
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("run %s has no numeric outputs to plot", runID)
	}
	return nil
}

func init() {
	plotCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database written by run --db")
	plotCmd.Flags().StringVar(&plotRunID, "run", "", "Run ID (default: most recent)")
	plotCmd.Flags().StringVar(&plotPort, "port", "", "Output port (default: every numeric port)")
	plotCmd.Flags().BoolVar(&plotList, "list", false, "List recorded runs")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "Graph height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "Graph width")
	rootCmd.AddCommand(plotCmd)
}
