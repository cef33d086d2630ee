package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/taglog/internal/analysis"
	"github.com/Iron-Ham/taglog/internal/config"
	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/Iron-Ham/taglog/internal/errors"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/Iron-Ham/taglog/internal/metrics"
	"github.com/Iron-Ham/taglog/internal/workload"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a simulated multi-service workload and report on it",
	Long: `Simulate an application with authentication, data processing, file,
API and reporting services running concurrently. Every service logs through
one dual-tag logger; afterwards the in-memory history is analysed and the
report printed.

Examples:
  # Quick run without simulated latency, logging to a file
  taglog demo --fast --out demo_app.log

  # Also write all_logs.json and errors.csv, and expose metrics while running
  taglog demo --export-dir ./out --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var (
	demoName        string
	demoOut         string
	demoWorkers     int
	demoRounds      int
	demoSeed        int64
	demoFast        bool
	demoConsole     bool
	demoMinLevel    string
	demoExportDir   string
	demoOutput      string
	demoMetrics     bool
	demoMetricsAddr string
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoName, "name", "", "Logger name (default from config)")
	demoCmd.Flags().StringVar(&demoOut, "out", "", "Also log to this JSON-lines file (default from config)")
	demoCmd.Flags().IntVarP(&demoWorkers, "workers", "w", 4, "Flows run concurrently")
	demoCmd.Flags().IntVar(&demoRounds, "rounds", 1, "Times the full set of flows is run")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", 0, "Random seed (0 picks one)")
	demoCmd.Flags().BoolVar(&demoFast, "fast", false, "Skip simulated latency")
	demoCmd.Flags().BoolVar(&demoConsole, "console", false, "Echo entries to stdout as they are logged (default from config)")
	demoCmd.Flags().StringVar(&demoMinLevel, "min-level", "", "Minimum level recorded (default from config)")
	demoCmd.Flags().StringVar(&demoExportDir, "export-dir", "", "Write all_logs.json and errors.csv here")
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "", "Report encoding: json or yaml (default from config)")
	demoCmd.Flags().BoolVar(&demoMetrics, "metrics", false, "Print logger metrics after the report")
	demoCmd.Flags().StringVar(&demoMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := diag.WithComponent("demo")

	collector := metrics.NewCollector()
	opts := cfg.Logging.LoggerOptions()
	opts.ConsoleOut = cmd.OutOrStdout()
	opts.Observer = collector

	// Flags override the logging section only when given explicitly.
	flags := cmd.Flags()
	if flags.Changed("name") {
		opts.Name = demoName
	}
	if flags.Changed("min-level") {
		level, err := logging.ParseLevel(demoMinLevel)
		if err != nil {
			return err
		}
		opts.MinLevel = level
	}
	if flags.Changed("console") {
		opts.Console = demoConsole
	}
	if flags.Changed("out") {
		opts.FilePath = demoOut
	}

	logger, err := logging.Configure(opts)
	if err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing logger handlers failed")
		}
	}()

	if demoMetricsAddr != "" {
		server := &http.Server{Addr: demoMetricsAddr, Handler: collector.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", demoMetricsAddr).Msg("metrics server failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	wopts := workload.DefaultOptions()
	wopts.Workers = demoWorkers
	wopts.Rounds = demoRounds
	if demoSeed != 0 {
		wopts.Seed = demoSeed
	}
	if demoFast {
		wopts.Sleep = nil
	}

	start := time.Now()
	if err := workload.Run(cmd.Context(), logger, wopts); err != nil {
		return fmt.Errorf("workload interrupted: %w", err)
	}
	log.Info().
		Int("entries", logger.Storage().Len()).
		Dur("elapsed", time.Since(start)).
		Msg("workload finished")

	if demoExportDir != "" {
		if err := exportDemo(cmd, logger, demoExportDir); err != nil {
			return err
		}
	}

	output := demoOutput
	if output == "" {
		output = cfg.Report.Output
	}
	report := analysis.NewAnalyzer(logger).ReportFromSource(analysis.AllSections())
	if err := writeReport(cmd.OutOrStdout(), report, output); err != nil {
		return err
	}

	if demoMetrics {
		samples, err := collector.Counters()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		for _, s := range samples {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %g\n", s.Series, s.Value)
		}
	}
	return nil
}

// exportDemo writes every entry as JSON and the errors as CSV.
func exportDemo(cmd *cobra.Command, logger *logging.Logger, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	all := filepath.Join(dir, "all_logs.json")
	if err := logger.Export(all, nil, logging.ExportJSON); err != nil {
		return err
	}

	errorsOnly := &logging.Filter{Levels: []logging.Level{logging.LevelError, logging.LevelCritical}}
	errs := filepath.Join(dir, "errors.csv")
	if err := logger.Export(errs, errorsOnly, logging.ExportCSV); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported all logs to %s and error logs to %s\n", all, errs)
	return nil
}
