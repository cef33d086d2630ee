// Package cmd implements the taglog command line.
package cmd

import (
	"strings"

	"github.com/Iron-Ham/taglog/internal/config"
	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/Iron-Ham/taglog/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "taglog",
	Short: "Dual-tag structured logging and log analysis",
	Long: `taglog records and analyses structured logs tagged along two axes:
the user-facing feature an event belongs to and the internal module that
emitted it.

Log files written by the file handler (JSON lines) or by a JSON export can be
reported on, viewed grouped by feature or module, filtered and re-exported,
and browsed interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Exit statuses returned by the taglog binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitUsage means the command was invoked with invalid input.
	ExitUsage = 2
)

// Execute runs the root command and reports any error on stderr
func Execute() error {
	c, err := rootCmd.ExecuteC()
	if err != nil {
		reportError(c, err)
	}
	return err
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsUsageError(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func reportError(c *cobra.Command, err error) {
	usage := errors.IsUsageError(err)
	c.PrintErrln("Error:", err)
	if usage {
		c.PrintErrf("Run '%s --help' for usage.\n", c.CommandPath())
	}

	dlog := diag.WithComponent("cli")
	dlog.Debug().
		Err(err).
		Str("command", c.CommandPath()).
		Str("severity", errors.GetSeverity(err).String()).
		Bool("usage", usage).
		Msg("command failed")
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taglog/config.yaml)")
	rootCmd.PersistentFlags().String("diag-level", "", "diagnostics level on stderr (debug/info/warn/error)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("diagnostics.level", rootCmd.PersistentFlags().Lookup("diag-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TAGLOG")
	// e.g., TAGLOG_LOGGING_MIN_LEVEL for logging.min_level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()

	cfg := config.Get()
	diag.Init(cfg.Diagnostics.DiagConfig())
}
