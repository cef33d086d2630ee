package cmd

import (
	"fmt"

	"github.com/Iron-Ham/taglog/internal/config"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Filter a log file and write it as JSON, CSV or text",
	Long: `Read a log file, keep the entries matching the filter flags and write
them to --out in the chosen format.

Examples:
  # Errors only, as CSV
  taglog export app.log --out errors.csv --format csv --level error --level critical

  # Everything from the database module in the last hour, newest first
  taglog export app.log --out db.json --module database --since 1h --sort timestamp --reverse`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportOut    string
	exportFormat string
	exportFilter entryFilter
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Destination file (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json, csv or text (default from config)")
	_ = exportCmd.MarkFlagRequired("out")
	addFilterFlags(exportCmd, &exportFilter)
}

func runExport(cmd *cobra.Command, args []string) error {
	name := exportFormat
	if name == "" {
		name = config.Get().Export.DefaultFormat
	}
	format, err := logging.ParseFormat(name)
	if err != nil {
		return err
	}

	entries, err := loadEntries(args[0], &exportFilter)
	if err != nil {
		return err
	}
	if err := logging.ExportEntries(entries, exportOut, format); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s (%s)\n", len(entries), exportOut, format)
	return nil
}
