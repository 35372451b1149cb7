package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdevs-sim/pdevs-sim/sim"
	_ "github.com/pdevs-sim/pdevs-sim/sim/library"
	"github.com/pdevs-sim/pdevs-sim/sim/network"
	"github.com/pdevs-sim/pdevs-sim/sim/store"
	"github.com/pdevs-sim/pdevs-sim/sim/trace"
	"github.com/pdevs-sim/pdevs-sim/sim/workload"
)

// runOptions is the validated form of the run command's flags.
type runOptions struct {
	NetworkPath  string
	StimulusPath string
	Start        sim.Time
	Until        sim.Time
	TraceLevel   trace.TraceLevel
	TraceOut     string
	DBPath       string
}

func runOptionsFromFlags() (runOptions, error) {
	opts := runOptions{
		NetworkPath:  networkPath,
		StimulusPath: stimulusPath,
		TraceLevel:   trace.TraceLevel(traceLevel),
		TraceOut:     traceOutPath,
		DBPath:       dbPath,
	}
	if opts.NetworkPath == "" {
		return opts, fmt.Errorf("--network is required")
	}
	var err error
	if opts.Start, err = sim.ParseTime(startTime); err != nil {
		return opts, fmt.Errorf("--start: %w", err)
	}
	if opts.Start == sim.Infinity {
		return opts, fmt.Errorf("--start cannot be infinite")
	}
	if opts.Until, err = sim.ParseTime(untilTime); err != nil {
		return opts, fmt.Errorf("--until: %w", err)
	}
	if opts.Until < opts.Start {
		return opts, fmt.Errorf("--until %s is before --start %s", opts.Until, opts.Start)
	}
	if !trace.IsValidTraceLevel(traceLevel) {
		return opts, fmt.Errorf("unknown trace level %q; valid: none, transitions, messages", traceLevel)
	}
	if opts.TraceOut != "" && (opts.TraceLevel == "" || opts.TraceLevel == trace.TraceLevelNone) {
		opts.TraceLevel = trace.TraceLevelMessages
	}
	return opts, nil
}

// runResult is what a finished run leaves behind.
type runResult struct {
	Metrics *sim.Metrics
	Trace   *trace.SimulationTrace
	RunID   string
}

// runSimulation builds the network, wires stimulus, sinks and trace, runs it
// and reports metrics to w.
func runSimulation(ctx context.Context, opts runOptions, w io.Writer) (*runResult, error) {
	spec, err := network.Load(opts.NetworkPath)
	if err != nil {
		return nil, err
	}
	top, err := network.Build(spec)
	if err != nil {
		return nil, err
	}

	cfg := sim.NewConfig(opts.Start)
	cfg.Sinks = []sim.Sink{sim.LogSink{}}

	if opts.StimulusPath != "" {
		src, closeFn, err := openStimulus(opts.StimulusPath, top.InPorts())
		if err != nil {
			return nil, err
		}
		defer closeFn()
		cfg.Stimulus = src
	}

	if opts.TraceLevel != "" && opts.TraceLevel != trace.TraceLevelNone {
		cfg.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: opts.TraceLevel})
	}

	var run *store.Run
	if opts.DBPath != "" {
		db, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if run, err = db.BeginRun(spec.Name, opts.Start, opts.Until); err != nil {
			return nil, err
		}
		cfg.Sinks = append(cfg.Sinks, run)
	}

	s, err := sim.NewSimulator(top, cfg)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded %s: %d atomic models", spec.Name, len(s.Paths()))

	runErr := s.Run(ctx, opts.Until)
	res := &runResult{Metrics: s.Metrics(), Trace: s.Trace()}
	if run != nil {
		res.RunID = run.ID
		if err := run.Finish(s.Metrics()); err != nil {
			logrus.Warnf("recording final metrics: %v", err)
		}
	}
	if runErr != nil {
		return res, runErr
	}

	s.Metrics().Print(w)
	if res.Trace != nil {
		printTraceSummary(w, trace.Summarize(res.Trace))
		if err := writeTrace(res.Trace, opts.TraceOut, w); err != nil {
			return res, err
		}
	}
	return res, nil
}

// openStimulus picks the source by extension: YAML files are synthetic
// stimulus specs, anything else is a text recording.
func openStimulus(path string, ports []sim.PortSpec) (sim.StimulusSource, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		spec, err := workload.LoadStimulusSpec(path)
		if err != nil {
			return nil, nil, err
		}
		src, err := workload.NewSyntheticSource(spec, ports)
		if err != nil {
			return nil, nil, fmt.Errorf("stimulus spec: %w", err)
		}
		return src, func() error { return nil }, nil
	default:
		src, err := workload.OpenReplayFile(path, ports)
		if err != nil {
			return nil, nil, err
		}
		return src, func() error {
			if src.Malformed > 0 {
				logrus.Warnf("%d malformed stimulus lines were skipped", src.Malformed)
			}
			return src.Close()
		}, nil
	}
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Transitions          : %d (internal %d, external %d, confluent %d)\n",
		ts.TotalTransitions, ts.InternalCount, ts.ExternalCount, ts.ConfluentCount)
	fmt.Fprintf(w, "Deliveries           : %d\n", ts.Deliveries)
	fmt.Fprintf(w, "Drops                : %d\n", ts.Drops)
	fmt.Fprintf(w, "Models traced        : %d\n", ts.UniqueModels)
}

func writeTrace(st *trace.SimulationTrace, path string, stdout io.Writer) error {
	switch path {
	case "":
		return nil
	case "-":
		return st.WriteText(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	if err := st.WriteText(f); err != nil {
		f.Close()
		return fmt.Errorf("writing trace: %w", err)
	}
	return f.Close()
}
