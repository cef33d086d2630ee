package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Iron-Ham/taglog/internal/errors"
)

// Format is an export file format.
type Format string

// Supported export formats
const (
	ExportJSON Format = "json"
	ExportCSV  Format = "csv"
	ExportText Format = "text"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{ExportJSON, ExportCSV, ExportText}
}

// ParseFormat converts a format name to a Format. Unknown names fail with
// errors.ErrUnsupportedFormat.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case ExportJSON, ExportCSV, ExportText:
		return f, nil
	default:
		return "", errors.NewValidationError("unsupported export format (supported: json, csv, text)").
			WithField("format").WithValue(name).WithCause(errors.ErrUnsupportedFormat)
	}
}

// ExportEntries writes entries to path in the given format:
//   - json: a pretty-printed array of records
//   - csv: a header row of record keys and one row per entry; an empty
//     entry set produces an empty file
//   - text: one formatted string per line
//
// An unsupported format is rejected before the file is created.
func ExportEntries(entries []*Entry, path string, format Format) error {
	format, err := ParseFormat(string(format))
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	switch format {
	case ExportJSON:
		err = WriteJSON(file, entries)
	case ExportCSV:
		err = WriteCSV(file, entries)
	default:
		err = WriteText(file, entries)
	}

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return err
}

// WriteJSON writes entries as an indented JSON array of records.
func WriteJSON(w io.Writer, entries []*Entry) error {
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}
	return nil
}

// WriteText writes one formatted string per entry.
func WriteText(w io.Writer, entries []*Entry) error {
	for _, e := range entries {
		if _, err := io.WriteString(w, e.FormattedString()+"\n"); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}
	return nil
}

// WriteCSV writes a header row and one row per entry. Parameters are
// JSON-encoded into a single column. Nothing is written for no entries.
func WriteCSV(w io.Writer, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(RecordKeys); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		rec := e.Record()
		params, err := json.Marshal(rec.Parameters)
		if err != nil {
			params = []byte(fmt.Sprintf("%v", map[string]any(rec.Parameters)))
		}
		row := []string{
			strconv.FormatFloat(rec.Timestamp, 'f', -1, 64),
			rec.FormattedTimestamp,
			rec.Level.String(),
			rec.FeatureTag,
			rec.ModuleTag,
			rec.FunctionName,
			rec.Message,
			string(params),
			strconv.FormatInt(rec.ThreadID, 10),
			strconv.Itoa(rec.ProcessID),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
