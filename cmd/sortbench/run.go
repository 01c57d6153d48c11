package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiihann/sortbench/config"
	"github.com/weiihann/sortbench/harness"
	"github.com/weiihann/sortbench/report"
	"github.com/weiihann/sortbench/workload"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		sim         simFlags
		outDir      string
		datasetPath string
		outputJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a dataset, benchmark it and write results and charts",
		Long: `Generate a dataset, save it to the output directory, benchmark every
array in it and write results.json and benchmark.html next to it. The
report is printed to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			sim.apply(cmd.Flags(), &cfg.Simulation)

			if cmd.Flags().Changed("out-dir") {
				cfg.Output.Dir = outDir
			}

			return a.runBatch(cmd.Context(), cfg, datasetPath, outputJSON)
		},
	}

	sim.register(cmd.Flags())

	flags := cmd.Flags()
	flags.StringVar(&outDir, "out-dir", "results",
		"Directory for the dataset, results and charts")
	flags.StringVar(&datasetPath, "dataset", "",
		"Path to pre-generated dataset file (skip generation)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of markdown")

	return cmd
}

func (a *app) newGenerateCmd() *cobra.Command {
	var (
		sim    simFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset and write it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			sim.apply(cmd.Flags(), &cfg.Simulation)

			if output == "" {
				output = cfg.Output.DatasetPath()
			}

			return a.generate(cmd.Context(), a.logger, cfg.Simulation, output)
		},
	}

	sim.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"Dataset file (default: <output dir>/array_data.json)")

	return cmd
}

func (a *app) newBenchCmd() *cobra.Command {
	var (
		datasetPath string
		outDir      string
		outputJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark a previously generated dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("out-dir") {
				cfg.Output.Dir = outDir
			}

			results, err := a.bench(cmd.Context(), a.logger, datasetPath)
			if err != nil {
				return err
			}

			if err := writeOutputs(cfg.Output, results); err != nil {
				return err
			}

			return a.printReport(results, outputJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&datasetPath, "dataset", "",
		"Dataset file written by generate")
	flags.StringVar(&outDir, "out-dir", "results",
		"Directory for results and charts")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of markdown")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func (a *app) newReportCmd() *cobra.Command {
	var (
		resultsPath string
		chartsPath  string
		outputJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report and optionally charts from a results file",
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := os.Open(resultsPath)
			if err != nil {
				return fmt.Errorf("open results: %w", err)
			}
			defer f.Close()

			results, err := harness.ReadResults(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", resultsPath, err)
			}

			if chartsPath != "" {
				if err := writeFile(chartsPath, func(w io.Writer) error {
					return report.RenderCharts(w, results)
				}); err != nil {
					return fmt.Errorf("write charts: %w", err)
				}

				a.logger.Info("charts written", slog.String("path", chartsPath))
			}

			return a.printReport(results, outputJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&resultsPath, "results", "",
		"Results file written by run or bench")
	flags.StringVar(&chartsPath, "charts", "",
		"Also render charts to this HTML file")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of markdown")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}

func (a *app) runBatch(
	ctx context.Context,
	cfg config.Config,
	datasetPath string,
	outputJSON bool,
) error {
	logger := a.logger.With(slog.String("run_id", uuid.NewString()))

	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("months", cfg.Simulation.Months),
		slog.Int("days", cfg.Simulation.Days),
		slog.Int("start_count", cfg.Simulation.StartCount),
		slog.String("mode", string(cfg.Simulation.Mode)),
		slog.String("out_dir", cfg.Output.Dir),
	)

	// Step 1: Generate the dataset (or use a pre-generated file).
	if datasetPath == "" {
		datasetPath = cfg.Output.DatasetPath()

		if err := a.generate(ctx, logger, cfg.Simulation, datasetPath); err != nil {
			return fmt.Errorf("generate dataset: %w", err)
		}
	}

	// Step 2: Benchmark the dataset as read back from disk.
	results, err := a.bench(ctx, logger, datasetPath)
	if err != nil {
		return err
	}

	// Step 3: Persist results and charts.
	if err := writeOutputs(cfg.Output, results); err != nil {
		return err
	}

	logger.InfoContext(ctx, "outputs written",
		slog.String("results", cfg.Output.ResultsPath()),
		slog.String("charts", cfg.Output.ChartsPath()),
	)

	// Step 4: Report.
	return a.printReport(results, outputJSON)
}

func (a *app) generate(
	ctx context.Context,
	logger *slog.Logger,
	cfg workload.Config,
	path string,
) error {
	cfg.Seed = resolveSeed(cfg.Seed)

	ds, err := workload.NewGenerator(cfg).Generate()
	if err != nil {
		return err
	}

	if err := writeFile(path, func(w io.Writer) error {
		return workload.Encode(w, ds)
	}); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	summary := workload.Summarize(ds)

	logger.InfoContext(ctx, "dataset generated",
		slog.String("path", path),
		slog.Int64("seed", cfg.Seed),
		slog.Int("months", summary.Months),
		slog.Int("days_per_month", summary.DaysPerMonth),
		slog.Int("min_size", summary.MinSize),
		slog.Int("max_size", summary.MaxSize),
		slog.Int("elements", summary.TotalElements),
	)

	return nil
}

func (a *app) bench(
	ctx context.Context,
	logger *slog.Logger,
	path string,
) (harness.Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return harness.Results{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := workload.Decode(f)
	if err != nil {
		return harness.Results{}, fmt.Errorf("read %s: %w", path, err)
	}

	logger.InfoContext(ctx, "benchmarking dataset",
		slog.String("path", path),
		slog.Int("months", len(ds.Months)),
	)

	results, err := harness.NewRunner(logger).Run(ctx, ds)
	if err != nil {
		return harness.Results{}, fmt.Errorf("benchmark: %w", err)
	}

	return results, nil
}

func (a *app) printReport(results harness.Results, outputJSON bool) error {
	if outputJSON {
		if err := report.GenerateJSON(a.stdout, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}

		return nil
	}

	if err := report.Generate(a.stdout, results); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	return nil
}

// writeOutputs writes the results JSON and, when there is anything to
// plot, the chart page.
func writeOutputs(out config.Output, results harness.Results) error {
	if err := writeFile(out.ResultsPath(), func(w io.Writer) error {
		return report.GenerateJSON(w, results)
	}); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if len(results.Months) == 0 {
		return nil
	}

	if err := writeFile(out.ChartsPath(), func(w io.Writer) error {
		return report.RenderCharts(w, results)
	}); err != nil {
		return fmt.Errorf("write charts: %w", err)
	}

	return nil
}

// writeFile creates path and its parent directory and fills it with
// write.
func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}
