package config

import (
	"os"
	"path/filepath"

	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/spf13/viper"
)

// Config represents the complete taglog configuration
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Viewer      ViewerConfig      `mapstructure:"viewer"`
	Export      ExportConfig      `mapstructure:"export"`
	Report      ReportConfig      `mapstructure:"report"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
}

// LoggingConfig controls the logger built by commands that emit entries
type LoggingConfig struct {
	// Name identifies the logger in diagnostics
	Name string `mapstructure:"name"`
	// MinLevel is the lowest level admitted (DEBUG, INFO, WARNING, ERROR, CRITICAL)
	MinLevel string `mapstructure:"min_level"`
	// Console enables the console handler
	Console bool `mapstructure:"console"`
	// FilePath enables a JSON-lines file handler when non-empty
	FilePath string `mapstructure:"file_path"`
	// RotateSize is the file size in bytes that triggers rotation (0 = never)
	RotateSize int64 `mapstructure:"rotate_size"`
	// MaxBackups is the number of rotated files to keep (0 = keep all)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress"`
	// MaxMemoryEntries bounds the in-memory history
	MaxMemoryEntries int `mapstructure:"max_memory_entries"`
}

// ViewerConfig controls grouped terminal views
type ViewerConfig struct {
	// MaxEntries is the number of newest entries shown per group
	MaxEntries int `mapstructure:"max_entries"`
	// Width truncates lines to this many columns (0 = terminal width)
	Width int `mapstructure:"width"`
	// Color enables styled output
	Color bool `mapstructure:"color"`
}

// ExportConfig controls the export command
type ExportConfig struct {
	// DefaultFormat is used when --format is not given (json, csv, text)
	DefaultFormat string `mapstructure:"default_format"`
}

// ReportConfig controls the report command
type ReportConfig struct {
	// Output is the report encoding (json, yaml)
	Output string `mapstructure:"output"`
}

// DiagnosticsConfig controls taglog's own diagnostic output on stderr
type DiagnosticsConfig struct {
	// Level is the diagnostic level (debug, info, warn, error)
	Level string `mapstructure:"level"`
	// JSON switches diagnostics to JSON lines
	JSON bool `mapstructure:"json"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Logging: LoggingConfig{
			Name:             logging.DefaultName,
			MinLevel:         logging.LevelInfo.String(),
			Console:          true,
			FilePath:         "",
			RotateSize:       rotation.RotateSize,
			MaxBackups:       rotation.MaxBackups,
			Compress:         rotation.Compress,
			MaxMemoryEntries: logging.DefaultMaxEntries,
		},
		Viewer: ViewerConfig{
			MaxEntries: 50,
			Width:      0,
			Color:      true,
		},
		Export: ExportConfig{
			DefaultFormat: string(logging.ExportJSON),
		},
		Report: ReportConfig{
			Output: "json",
		},
		Diagnostics: DiagnosticsConfig{
			Level: string(diag.WarnLevel),
			JSON:  false,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logging defaults
	viper.SetDefault("logging.name", defaults.Logging.Name)
	viper.SetDefault("logging.min_level", defaults.Logging.MinLevel)
	viper.SetDefault("logging.console", defaults.Logging.Console)
	viper.SetDefault("logging.file_path", defaults.Logging.FilePath)
	viper.SetDefault("logging.rotate_size", defaults.Logging.RotateSize)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
	viper.SetDefault("logging.max_memory_entries", defaults.Logging.MaxMemoryEntries)

	// Viewer defaults
	viper.SetDefault("viewer.max_entries", defaults.Viewer.MaxEntries)
	viper.SetDefault("viewer.width", defaults.Viewer.Width)
	viper.SetDefault("viewer.color", defaults.Viewer.Color)

	viper.SetDefault("export.default_format", defaults.Export.DefaultFormat)
	viper.SetDefault("report.output", defaults.Report.Output)

	viper.SetDefault("diagnostics.level", defaults.Diagnostics.Level)
	viper.SetDefault("diagnostics.json", defaults.Diagnostics.JSON)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// LoggerOptions converts the logging section into logger build options.
// The level is assumed valid; Validate reports it otherwise.
func (c *LoggingConfig) LoggerOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Name = c.Name
	if level, err := logging.ParseLevel(c.MinLevel); err == nil {
		opts.MinLevel = level
	}
	opts.MaxEntries = c.MaxMemoryEntries
	opts.Console = c.Console
	opts.FilePath = c.FilePath
	opts.Rotation = logging.RotationConfig{
		RotateSize: c.RotateSize,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
	return opts
}

// DiagConfig converts the diagnostics section into a diag.Config.
func (c *DiagnosticsConfig) DiagConfig() diag.Config {
	return diag.Config{
		Level:      diag.ParseLevel(c.Level),
		JSONOutput: c.JSON,
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taglog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taglog"
	}
	return filepath.Join(home, ".config", "taglog")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
