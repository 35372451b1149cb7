package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdevs-sim/pdevs-sim/sim/trace"
)

var (
	// CLI flags for the run command
	networkPath  string // Network description (YAML)
	stimulusPath string // Recorded stimuli (.txt) or synthetic stimulus spec (.yaml)
	startTime    string // Initial simulation time (ticks or hh:mm:ss:mmm)
	untilTime    string // Stop time (ticks or hh:mm:ss:mmm)
	traceLevel   string // Trace verbosity: none, transitions, messages
	traceOutPath string // Where to write the rendered trace ("-" for stdout)
	dbPath       string // SQLite database recording the run's outputs

	logLevel string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pdevs-sim",
	Short: "Parallel DEVS simulator for hierarchical model networks",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd builds the network from --network and simulates it until --until
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a network description",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := runOptionsFromFlags()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := runSimulation(ctx, opts, cmd.OutOrStdout())
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if res.RunID != "" {
			logrus.Infof("Outputs recorded as run %s in %s", res.RunID, opts.DBPath)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&networkPath, "network", "", "Network description (YAML)")
	runCmd.Flags().StringVar(&stimulusPath, "stimulus", "", "Stimulus recording (.txt) or synthetic stimulus spec (.yaml)")
	runCmd.Flags().StringVar(&startTime, "start", "0", "Initial simulation time (ticks or hh:mm:ss:mmm)")
	runCmd.Flags().StringVar(&untilTime, "until", "00:10:00:000", "Stop time, exclusive (ticks, hh:mm:ss:mmm or inf)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, transitions, messages)")
	runCmd.Flags().StringVar(&traceOutPath, "trace-out", "", "Write the rendered trace to this file (\"-\" for stdout)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "Record outputs and metrics in this SQLite database")
	_ = runCmd.MarkFlagRequired("network")

	rootCmd.AddCommand(runCmd)
}
