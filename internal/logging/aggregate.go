package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Iron-Ham/taglog/internal/diag"
)

// maxScanTokenSize bounds a single JSON line.
const maxScanTokenSize = 1024 * 1024

// ReadEntries loads entries written by a FileHandler (JSON lines) or by a
// JSON export (one array). Corrupt lines are skipped so a partially written
// file still yields its readable entries. Entries are returned sorted by
// timestamp; ties keep file order.
func ReadEntries(path string) ([]*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	entries, skipped, err := DecodeEntries(file)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		rlog := diag.WithComponent("reader")
		rlog.Warn().
			Str("path", path).
			Int("skipped", skipped).
			Msg("skipped unreadable log lines")
	}
	return entries, nil
}

// DecodeEntries reads entries from r and reports how many lines could not
// be parsed.
func DecodeEntries(r io.Reader) (entries []*Entry, skipped int, err error) {
	br := bufio.NewReaderSize(r, 64*1024)
	first, err := peekNonSpace(br)
	if err != nil {
		if err == io.EOF {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("error reading log file: %w", err)
	}

	if first == '[' {
		var records []Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, 0, fmt.Errorf("invalid JSON export: %w", err)
		}
		entries = make([]*Entry, len(records))
		for i, rec := range records {
			entries[i] = EntryFromRecord(rec)
		}
	} else {
		scanner := bufio.NewScanner(br)
		scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			entry, err := ParseLine(line)
			if err != nil {
				skipped++
				continue
			}
			entries = append(entries, entry)
		}
		if err := scanner.Err(); err != nil {
			return nil, skipped, fmt.Errorf("error reading log file: %w", err)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})
	return entries, skipped, nil
}

// ParseLine decodes a single JSON-lines record.
func ParseLine(line []byte) (*Entry, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if rec.FeatureTag == "" && rec.ModuleTag == "" && rec.Message == "" {
		return nil, fmt.Errorf("line is not a log record")
	}
	return EntryFromRecord(rec), nil
}

// peekNonSpace discards leading whitespace and returns the next byte
// without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
