package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	levels     int
	balls      int
	probRight  float64
	speed      float64
	seed       int64
	frameRate  int
	theme      string
	instant    bool
	realtime   bool
	numRuns    int
	format     string
	outFile    string
	logLevel   string
	logFormat  string
	logFile    string
)

// main registers commands and flags, launches the preset picker when no
// subcommand is given, and exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "galton",
		Short:         "probability board simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	boardFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "drop one batch headless and print the histogram",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	boardFlags(runCmd)
	runCmd.Flags().BoolVar(&instant, "instant", false, "skip animation timings entirely")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "play the batch on the wall clock and report landings")
	runCmd.MarkFlagsMutuallyExclusive("instant", "realtime")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "open a live board in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	boardFlags(liveCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent seeded boards in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	boardFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of boards")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "drop one batch and write the result as json, csv or svg",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	boardFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json, csv, svg)")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [shape]",
		Short: "list board presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	expectedCmd := &cobra.Command{
		Use:   "expected",
		Short: "print the binomial distribution a board should converge to",
		Args:  cobra.NoArgs,
		RunE:  printExpected,
	}
	expectedCmd.Flags().IntVar(&levels, "levels", 7, "levels of pegs")
	expectedCmd.Flags().Float64VarP(&probRight, "prob", "p", 0.5, "probability of bouncing right")

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, exportCmd, presetsCmd, expectedCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// boardFlags registers the board parameter flags shared by every command
// that builds a simulation.
func boardFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "preset as shape/name (see presets)")
	cmd.Flags().IntVarP(&levels, "levels", "l", 7, "levels of pegs")
	cmd.Flags().IntVarP(&balls, "balls", "n", 10, "balls per drop")
	cmd.Flags().Float64VarP(&probRight, "prob", "p", 0.5, "probability of bouncing right")
	cmd.Flags().Float64Var(&speed, "speed", 1, "animation speed multiplier")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	cmd.Flags().StringVar(&theme, "theme", "classic", "colour theme")
}
