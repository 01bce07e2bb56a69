package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/qbench/internal/bench"
	"github.com/wesleyorama2/qbench/internal/config"
	"github.com/wesleyorama2/qbench/internal/output"
	"github.com/wesleyorama2/qbench/internal/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run benchmarks and report latency distributions",
	Long: `Run the selected benchmarks against their backends.

Each (benchmark, query) pair is measured by launching the configured
number of workers in parallel, warming up, then measuring for the
configured duration.

Examples:
  qbench run --benchmarks postgres --concurrency 8 --duration 30s
  qbench run -C 16 --queries get_movie,get_user --json results.json
  qbench run --config qbench.yaml --benchmarks postgres,mysql,http`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBenchmarks(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().IntP("concurrency", "C", 4, "number of parallel workers per query")
	runCmd.Flags().Duration("warmup-time", 5*time.Second, "unmeasured warmup period per query")
	runCmd.Flags().DurationP("duration", "D", 30*time.Second, "measured period per query")
	runCmd.Flags().Duration("timeout", 2*time.Second, "latency ceiling bounding the histogram range")
	runCmd.Flags().String("queries", strings.Join(workload.Queries(), ","), "comma-separated query names")
	runCmd.Flags().String("benchmarks", strings.Join(workload.Names(), ","), "comma-separated benchmark names")
	runCmd.Flags().String("config", "", "backend connection config file (YAML)")
	runCmd.Flags().String("json", "", "write aggregated results to this file as JSON")
	runCmd.Flags().Int64("seed", 0, "base seed for id selection (0 = time-derived)")
	runCmd.Flags().Bool("quiet", false, "suppress the per-result text report")
	runCmd.Flags().Bool("no-color", false, "disable colored output")
}

func runBenchmarks(cmd *cobra.Command) error {
	rc, err := contextFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return err
		}
	}

	workloads, err := workload.BuildAll(rc.Benchmarks, cfg)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	jsonPath, _ := cmd.Flags().GetString("json")

	scheme := output.NoColorScheme()
	if !noColor && output.IsTerminal(os.Stdout) {
		scheme = output.DefaultColorScheme()
	}

	var reporters []bench.Reporter
	text := output.NewTextReporter(os.Stdout, scheme)
	if !quiet {
		text.PrintRunHeader(rc)
		reporters = append(reporters, text)
	}

	var exporter *output.JSONExporter
	if jsonPath != "" {
		exporter = output.NewJSONExporter(rc)
		reporters = append(reporters, exporter)
	}

	runner := bench.NewRunner(rc, output.NewMultiReporter(reporters...))
	_, runErr := runner.Run(context.Background(), workloads)

	if exporter != nil {
		if err := exporter.Flush(jsonPath); err != nil {
			// Export failure is a reporting failure: log it, keep the
			// measurement outcome.
			fmt.Fprintf(os.Stderr, "qbench: %v\n", err)
		}
	}

	return runErr
}

// contextFromFlags builds and validates the immutable run context.
func contextFromFlags(cmd *cobra.Command) (*bench.Context, error) {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	warmup, _ := cmd.Flags().GetDuration("warmup-time")
	duration, _ := cmd.Flags().GetDuration("duration")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	queries, _ := cmd.Flags().GetString("queries")
	benchmarks, _ := cmd.Flags().GetString("benchmarks")
	seed, _ := cmd.Flags().GetInt64("seed")

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rc := &bench.Context{
		Concurrency: concurrency,
		Warmup:      warmup,
		Duration:    duration,
		Timeout:     timeout,
		Queries:     splitNames(queries),
		Benchmarks:  splitNames(benchmarks),
		Seed:        seed,
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return rc, nil
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
