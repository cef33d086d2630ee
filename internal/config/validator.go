package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/taglog/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.rotate_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidDiagnosticLevels returns the list of valid diagnostics levels
func ValidDiagnosticLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidReportOutputs returns the list of valid report encodings
func ValidReportOutputs() []string {
	return []string{"json", "yaml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateViewer()...)
	errors = append(errors, c.validateExport()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateDiagnostics()...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if _, err := logging.ParseLevel(c.Logging.MinLevel); err != nil {
		errors = append(errors, ValidationError{
			Field:   "logging.min_level",
			Value:   c.Logging.MinLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	if c.Logging.RotateSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.rotate_size",
			Value:   c.Logging.RotateSize,
			Message: "must be non-negative",
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxMemoryEntries <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_memory_entries",
			Value:   c.Logging.MaxMemoryEntries,
			Message: "must be positive",
		})
	}

	return errors
}

// validateViewer validates the ViewerConfig
func (c *Config) validateViewer() []ValidationError {
	var errors []ValidationError

	if c.Viewer.MaxEntries <= 0 {
		errors = append(errors, ValidationError{
			Field:   "viewer.max_entries",
			Value:   c.Viewer.MaxEntries,
			Message: "must be positive",
		})
	}

	// Width 0 means "use the terminal width"
	if c.Viewer.Width < 0 {
		errors = append(errors, ValidationError{
			Field:   "viewer.width",
			Value:   c.Viewer.Width,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateExport validates the ExportConfig
func (c *Config) validateExport() []ValidationError {
	if _, err := logging.ParseFormat(c.Export.DefaultFormat); err != nil {
		formats := make([]string, 0, len(logging.Formats()))
		for _, f := range logging.Formats() {
			formats = append(formats, string(f))
		}
		return []ValidationError{{
			Field:   "export.default_format",
			Value:   c.Export.DefaultFormat,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(formats, ", ")),
		}}
	}
	return nil
}

// validateReport validates the ReportConfig
func (c *Config) validateReport() []ValidationError {
	if !slices.Contains(ValidReportOutputs(), c.Report.Output) {
		return []ValidationError{{
			Field:   "report.output",
			Value:   c.Report.Output,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidReportOutputs(), ", ")),
		}}
	}
	return nil
}

// validateDiagnostics validates the DiagnosticsConfig
func (c *Config) validateDiagnostics() []ValidationError {
	if c.Diagnostics.Level != "" && !slices.Contains(ValidDiagnosticLevels(), c.Diagnostics.Level) {
		return []ValidationError{{
			Field:   "diagnostics.level",
			Value:   c.Diagnostics.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDiagnosticLevels(), ", ")),
		}}
	}
	return nil
}
