package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/galtonsim/internal/anim"
	"github.com/san-kum/galtonsim/internal/config"
	"github.com/san-kum/galtonsim/internal/logging"
	"github.com/san-kum/galtonsim/internal/prob"
	"github.com/san-kum/galtonsim/internal/report"
	"github.com/san-kum/galtonsim/internal/sim"
	"github.com/san-kum/galtonsim/internal/viz"
	"github.com/spf13/cobra"
)

// loadConfig layers the config file, then the preset, then any flag the user
// actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		shape, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(shape, name)
		if !ok || p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, presetNames())
		}
		cfg.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("levels") {
		cfg.Levels = levels
	}
	if flags.Changed("balls") {
		cfg.Balls = balls
	}
	if flags.Changed("prob") {
		cfg.ProbRight = probRight
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger. The terminal UI owns the screen, so
// its logs only go to the configured file. A log file ending in a path
// separator names a directory that gets one timestamped file per session.
func newLogger(cfg *config.Config, tui bool) (zerolog.Logger, func() error, error) {
	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}
	if strings.HasSuffix(opts.File, "/") || strings.HasSuffix(opts.File, string(os.PathSeparator)) {
		opts.File = logging.LogFilePath(opts.File, "galton", time.Now())
	}
	if tui {
		opts.Out = io.Discard
		if opts.File == "" {
			return zerolog.Nop(), func() error { return nil }, nil
		}
	}
	return logging.New(opts)
}

func vizOptions(cfg *config.Config, log zerolog.Logger) viz.Options {
	return viz.Options{
		Params: cfg.Params(),
		Layout: cfg.Layout,
		Timing: cfg.AnimTiming(),
		Frame:  cfg.Frame(),
		Seed:   cfg.Seed,
		Theme:  theme,
		Logger: log,
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	return viz.RunInteractive(vizOptions(cfg, log))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	return viz.Run(vizOptions(cfg, log))
}

// simulate drops one batch and plays it to completion on a virtual clock.
// simulate drops one batch and waits for it. With realtime set the batch is
// played on the wall clock at the configured frame rate.
func simulate(ctx context.Context, cfg *config.Config, log zerolog.Logger, timing anim.Timing, sink anim.Sink, realtime bool) (*sim.Result, error) {
	s, err := sim.New(cfg.Params(),
		sim.WithLayout(cfg.Layout),
		sim.WithTiming(timing),
		sim.WithSeed(cfg.Seed),
		sim.WithSink(sink),
		sim.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	defer s.Destroy()

	if _, err := s.Drop(); err != nil {
		return nil, err
	}
	if realtime {
		err = s.Run(ctx, cfg.Frame())
	} else {
		err = s.RunInstant(ctx, cfg.Frame())
	}
	if err != nil {
		return nil, err
	}
	return s.Result(), nil
}

// progressSink reports landings on w as they happen and logs the batch
// boundaries.
func progressSink(w io.Writer, balls int, log zerolog.Logger) anim.Sink {
	landed := make(map[int]bool, balls)
	progress := anim.Funcs{
		OnBallOpacity: func(ball int, v float64) {
			if v > 0 || landed[ball] {
				return
			}
			landed[ball] = true
			fmt.Fprintf(w, "\rlanded %d/%d", len(landed), balls)
		},
		OnBatchCompleted: func() { fmt.Fprintln(w) },
	}
	events := anim.Funcs{
		OnBatchStarted: func() {
			log.Debug().Int("balls", balls).Msg("batch started")
		},
		OnBatchCompleted: func() {
			log.Info().Int("landed", len(landed)).Msg("batch completed")
		},
	}
	return anim.MultiSink{progress, events}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	timing := cfg.AnimTiming()
	if instant {
		timing = anim.Instant()
		timing.Speed = cfg.Speed
	}
	var sink anim.Sink = anim.NopSink{}
	if realtime {
		sink = progressSink(cmd.ErrOrStderr(), cfg.Balls, log)
	}
	result, err := simulate(ctx, cfg, log, timing, sink, realtime)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Histogram(result, report.HistogramOptions{Height: 10, Color: true}))
	fmt.Fprintln(out)
	if err := report.Table(out, result); err != nil {
		return err
	}
	fmt.Fprintf(out, "seed %d, %v of animation at speed ×%g\n", result.Seed, result.Elapsed, result.Speed)
	if result.Degenerate {
		fmt.Fprintln(out, "note: bar scale was clamped for this distribution")
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewEnsemble(cfg.Params(), numRuns, cfg.Seed).WithLogger(log).Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("runs", len(results)).Dur("took", time.Since(start)).Msg("ensemble finished")

	out := cmd.OutOrStdout()
	if err := report.EnsembleTable(out, results); err != nil {
		return err
	}

	combined := *results[0]
	combined.Params.Balls = cfg.Balls * len(results)
	combined.Bins = make([]sim.BinResult, len(results[0].Bins))
	counts := sim.Aggregate(results)
	expected := make([]float64, len(counts))
	for i, b := range results[0].Bins {
		combined.Bins[i] = sim.BinResult{
			Index:         b.Index,
			Count:         counts[i],
			Expected:      b.Expected,
			ExpectedCount: b.Expected * float64(combined.Params.Balls),
		}
		expected[i] = b.Expected
	}
	combined.ChiSquare = prob.ChiSquare(counts, expected)

	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Histogram(&combined, report.HistogramOptions{Height: 10, Color: true}))
	fmt.Fprintln(out)
	return report.Table(out, &combined)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	result, err := simulate(ctx, cfg, log, anim.Instant(), anim.NopSink{}, false)
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	switch strings.ToLower(format) {
	case "json":
		write = func(w io.Writer) error { return report.WriteJSON(w, result) }
	case "csv":
		write = func(w io.Writer) error { return report.WriteCSV(w, result) }
	case "svg":
		write = func(w io.Writer) error {
			_, err := io.WriteString(w, report.SVG(result, cfg.Layout, viz.GetTheme(theme)))
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s (available: json, csv, svg)", format)
	}

	if outFile == "" {
		return write(cmd.OutOrStdout())
	}
	if err := writeFile(outFile, write); err != nil {
		return err
	}
	log.Info().Str("path", outFile).Str("format", format).Msg("exported")
	return nil
}

// writeFile creates path and fills it with write. A failed close is reported
// unless write already failed.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func presetNames() []string {
	var names []string
	for _, shape := range config.ListShapes() {
		for _, name := range config.ListPresets(shape) {
			names = append(names, shape+"/"+name)
		}
	}
	return names
}

func listPresets(cmd *cobra.Command, args []string) error {
	shapes := config.ListShapes()
	if len(args) == 1 {
		if config.ListPresets(args[0]) == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "no presets for shape: %s\n", args[0])
			return nil
		}
		shapes = []string{args[0]}
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESET\tLEVELS\tBALLS\tP(RIGHT)\tSPEED")
	for _, shape := range shapes {
		for _, name := range config.ListPresets(shape) {
			p := config.GetPreset(shape, name)
			sp := "-"
			if p.Speed > 0 {
				sp = fmt.Sprintf("%g", p.Speed)
			}
			fmt.Fprintf(tw, "%s/%s\t%d\t%d\t%.2f\t%s\n", shape, name, p.Levels, p.Balls, p.ProbRight, sp)
		}
	}
	return tw.Flush()
}

func printExpected(cmd *cobra.Command, args []string) error {
	if err := (sim.Params{Levels: levels, Balls: 1, ProbRight: probRight}).Validate(); err != nil {
		return err
	}
	dist := prob.Distribution(levels-1, probRight)
	out := cmd.OutOrStdout()

	if len(dist) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(dist,
			asciigraph.Height(10),
			asciigraph.Width(4*len(dist)),
			asciigraph.Precision(3),
			asciigraph.Caption(fmt.Sprintf("B(%d, %.2f)", levels-1, probRight))))
		fmt.Fprintln(out)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BIN\tP\t")
	for k, p := range dist {
		fmt.Fprintf(tw, "%d\t%.6f\t\n", k, p)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	scale, err := prob.ScaleFactor(levels, probRight, config.DefaultConfig().Layout.GraphHeight)
	fmt.Fprintf(out, "mean %.3f  variance %.3f  mode %d  bar scale %.2f\n",
		prob.Mean(levels-1, probRight), prob.Variance(levels-1, probRight), prob.Mode(levels-1, probRight), scale)
	if err != nil {
		fmt.Fprintf(out, "note: %v\n", err)
	}
	return nil
}
