package logging

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/taglog/internal/errors"
)

func authScenario() *Logger {
	l := New(WithMinLevel(LevelInfo))
	l.Info("auth", "auth_module", "login", "ok", Params{"username": "a"})
	l.Error("auth", "db", "login", "fail", Params{"username": "b"})
	return l
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "CSV", " text "} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
		}
	}
	_, err := ParseFormat("yaml")
	if !errors.Is(err, errors.ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(yaml) error = %v, want ErrUnsupportedFormat", err)
	}
	if !errors.IsUsageError(err) {
		t.Error("unsupported format should classify as a usage error")
	}
}

func TestExport_JSON(t *testing.T) {
	l := authScenario()
	path := filepath.Join(t.TempDir(), "out.json")

	if err := l.Export(path, nil, ExportJSON); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Error("JSON export should be pretty-printed")
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, rec := range records {
		if rec["feature_tag"] != "auth" {
			t.Errorf("record %d feature_tag = %v, want auth", i, rec["feature_tag"])
		}
		if len(rec) != len(RecordKeys) {
			t.Errorf("record %d has %d keys, want %d", i, len(rec), len(RecordKeys))
		}
	}
}

func TestExport_FilteredCSV(t *testing.T) {
	l := authScenario()
	path := filepath.Join(t.TempDir(), "out.csv")

	filter := &Filter{ModuleTags: []string{"db"}}
	if err := l.Export(path, filter, ExportCSV); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header plus 1", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(RecordKeys, ",") {
		t.Errorf("header = %v", rows[0])
	}
	row := rows[1]
	if row[2] != "ERROR" || row[4] != "db" || row[6] != "fail" {
		t.Errorf("row = %v", row)
	}
	if row[7] != `{"username":"b"}` {
		t.Errorf("parameters column = %q", row[7])
	}
}

func TestExport_EmptyCSVWritesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ExportEntries(nil, path, ExportCSV); err != nil {
		t.Fatalf("ExportEntries failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("empty CSV export has %d bytes, want 0", info.Size())
	}
}

func TestExport_Text(t *testing.T) {
	l := authScenario()
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := l.Export(path, nil, ExportText); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	all := l.AllLogs()
	if len(lines) != len(all) {
		t.Fatalf("got %d lines, want %d", len(lines), len(all))
	}
	for i, e := range all {
		if lines[i] != e.FormattedString() {
			t.Errorf("line %d = %q, want %q", i, lines[i], e.FormattedString())
		}
	}
}

func TestExport_InvalidPath(t *testing.T) {
	l := authScenario()
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.json")
	err := l.Export(path, nil, ExportJSON)
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap the OS error, got %v", err)
	}
}
