// Package main provides the CLI entry point for sortbench, a tool that
// benchmarks insertion sort against merge sort on synthetic, daily
// growing arrays.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/sortbench/config"
	"github.com/weiihann/sortbench/workload"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands. logger and cfg are
// set by the root PersistentPreRunE.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cfg    config.Config

	configPath string
	logLevel   string
	logJSON    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sortbench",
		Short: "Insertion sort vs merge sort on growing arrays",
		Long: `Sortbench generates months of daily growing integer arrays and times
insertion sort and merge sort against every array, reporting the results
as markdown, JSON and HTML charts, or serving them over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "",
		"Path to a YAML profile")
	flags.StringVar(&a.logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	flags.BoolVar(&a.logJSON, "log-json", false,
		"Log as JSON instead of text")

	root.AddCommand(
		a.newRunCmd(),
		a.newGenerateCmd(),
		a.newBenchCmd(),
		a.newReportCmd(),
		a.newServeCmd(),
	)

	return root
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if a.logJSON {
		a.logger = slog.New(slog.NewJSONHandler(a.stderr, opts))
	} else {
		a.logger = slog.New(slog.NewTextHandler(a.stderr, opts))
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.cfg = cfg

	return nil
}

// simFlags are the generation flags shared by run, generate and serve.
// A flag only overrides the profile when set on the command line.
type simFlags struct {
	months     int
	days       int
	startCount int
	seed       int64
	mode       string
	minValue   int
	maxValue   int
	minGrowth  float64
	maxGrowth  float64
}

func (f *simFlags) register(flags *pflag.FlagSet) {
	def := workload.DefaultConfig()

	flags.IntVar(&f.months, "months", def.Months,
		"Number of months to generate")
	flags.IntVar(&f.days, "days", def.Days,
		"Number of days per month")
	flags.IntVar(&f.startCount, "start-count", def.StartCount,
		"Array size on a fresh day")
	flags.Int64Var(&f.seed, "seed", 0,
		"Random seed (0 = use current time)")
	flags.StringVar(&f.mode, "mode", string(def.Mode),
		"Month boundary behaviour: reset, continuous")
	flags.IntVar(&f.minValue, "min-value", def.MinValue,
		"Smallest generated value (inclusive)")
	flags.IntVar(&f.maxValue, "max-value", def.MaxValue,
		"Largest generated value (exclusive)")
	flags.Float64Var(&f.minGrowth, "min-growth", def.MinGrowth,
		"Minimum daily growth rate")
	flags.Float64Var(&f.maxGrowth, "max-growth", def.MaxGrowth,
		"Maximum daily growth rate")
}

func (f *simFlags) apply(flags *pflag.FlagSet, cfg *workload.Config) {
	if flags.Changed("months") {
		cfg.Months = f.months
	}
	if flags.Changed("days") {
		cfg.Days = f.days
	}
	if flags.Changed("start-count") {
		cfg.StartCount = f.startCount
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("mode") {
		cfg.Mode = workload.Mode(f.mode)
	}
	if flags.Changed("min-value") {
		cfg.MinValue = f.minValue
	}
	if flags.Changed("max-value") {
		cfg.MaxValue = f.maxValue
	}
	if flags.Changed("min-growth") {
		cfg.MinGrowth = f.minGrowth
	}
	if flags.Changed("max-growth") {
		cfg.MaxGrowth = f.maxGrowth
	}
}

func resolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}

	return seed
}
