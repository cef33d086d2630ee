package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Iron-Ham/taglog/internal/analysis"
	"github.com/Iron-Ham/taglog/internal/config"
	"github.com/Iron-Ham/taglog/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Print an analysis report for a log file",
	Long: `Analyse a JSON-lines log file (or a JSON export) and print a report with
per-feature and per-module summaries, an error breakdown and performance
statistics taken from the duration or elapsed_time parameters.

Examples:
  # Full report as JSON
  taglog report app.log

  # Only the error breakdown for the auth features, as YAML
  taglog report app.log --no-summary --no-performance --feature 'auth*' -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportNoSummary     bool
	reportNoErrors      bool
	reportNoPerformance bool
	reportOutput        string
	reportFilter        entryFilter
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportNoSummary, "no-summary", false, "Omit feature and module summaries")
	reportCmd.Flags().BoolVar(&reportNoErrors, "no-errors", false, "Omit the error analysis")
	reportCmd.Flags().BoolVar(&reportNoPerformance, "no-performance", false, "Omit performance metrics")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output encoding: json or yaml (default from config)")
	addFilterFlags(reportCmd, &reportFilter)
}

func runReport(cmd *cobra.Command, args []string) error {
	entries, err := loadEntries(args[0], &reportFilter)
	if err != nil {
		return err
	}

	output := reportOutput
	if output == "" {
		output = config.Get().Report.Output
	}

	report := analysis.NewAnalyzer(nil).Report(entries, analysis.ReportOptions{
		Summary:     !reportNoSummary,
		Errors:      !reportNoErrors,
		Performance: !reportNoPerformance,
	})
	return writeReport(cmd.OutOrStdout(), report, output)
}

func writeReport(w io.Writer, report analysis.Report, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return errors.NewValidationError("unsupported report output (supported: json, yaml)").
			WithField("output").WithValue(output).WithCause(errors.ErrUnsupportedFormat)
	}
}
