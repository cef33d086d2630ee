package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"os"
	"runtime"
	"strconv"
	"time"
)

// TimestampLayout is the local ISO-8601 layout used for formatted timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Params holds the free-form parameters attached to an entry.
type Params map[string]any

// Entry is one logged event. It is immutable once constructed; the
// accessors return copies where the underlying value is mutable.
type Entry struct {
	at        time.Time
	formatted string
	level     Level
	feature   string
	module    string
	function  string
	message   string
	params    Params
	threadID  int64
	processID int
}

// NewEntry builds an entry stamped at the given time, truncated to the
// microsecond and without a monotonic reading. The emitting goroutine
// and process ids are captured here. params is copied so later mutation of
// the caller's map does not reach the entry.
func NewEntry(at time.Time, level Level, feature, module, function, message string, params Params) *Entry {
	at = time.UnixMicro(at.UnixMicro())
	return &Entry{
		at:        at,
		formatted: at.Local().Format(TimestampLayout),
		level:     level,
		feature:   feature,
		module:    module,
		function:  function,
		message:   message,
		params:    copyParams(params),
		threadID:  goroutineID(),
		processID: os.Getpid(),
	}
}

func copyParams(params Params) Params {
	if params == nil {
		return Params{}
	}
	return maps.Clone(params)
}

// Timestamp returns the wall-clock time in seconds since the epoch with
// microsecond resolution.
func (e *Entry) Timestamp() float64 {
	return float64(e.at.UnixMicro()) / 1e6
}

func (e *Entry) Time() time.Time            { return e.at }
func (e *Entry) FormattedTimestamp() string { return e.formatted }
func (e *Entry) Level() Level               { return e.level }
func (e *Entry) FeatureTag() string         { return e.feature }
func (e *Entry) ModuleTag() string          { return e.module }
func (e *Entry) FunctionName() string       { return e.function }
func (e *Entry) Message() string            { return e.message }
func (e *Entry) ThreadID() int64            { return e.threadID }
func (e *Entry) ProcessID() int             { return e.processID }

// Params returns a copy of the entry parameters.
func (e *Entry) Params() Params {
	return maps.Clone(e.params)
}

// Param returns a single parameter value.
func (e *Entry) Param(key string) (any, bool) {
	v, ok := e.params[key]
	return v, ok
}

// Record is the flat, serialisable projection of an entry. Its field order
// is the column order for CSV export.
type Record struct {
	Timestamp          float64 `json:"timestamp" yaml:"timestamp"`
	FormattedTimestamp string  `json:"formatted_timestamp" yaml:"formatted_timestamp"`
	Level              Level   `json:"level" yaml:"level"`
	FeatureTag         string  `json:"feature_tag" yaml:"feature_tag"`
	ModuleTag          string  `json:"module_tag" yaml:"module_tag"`
	FunctionName       string  `json:"function_name" yaml:"function_name"`
	Message            string  `json:"message" yaml:"message"`
	Parameters         Params  `json:"parameters" yaml:"parameters"`
	ThreadID           int64   `json:"thread_id" yaml:"thread_id"`
	ProcessID          int     `json:"process_id" yaml:"process_id"`
}

// RecordKeys lists the record keys in field order.
var RecordKeys = []string{
	"timestamp", "formatted_timestamp", "level", "feature_tag", "module_tag",
	"function_name", "message", "parameters", "thread_id", "process_id",
}

// Record returns the entry's serialisable projection.
func (e *Entry) Record() Record {
	return Record{
		Timestamp:          e.Timestamp(),
		FormattedTimestamp: e.formatted,
		Level:              e.level,
		FeatureTag:         e.feature,
		ModuleTag:          e.module,
		FunctionName:       e.function,
		Message:            e.message,
		Parameters:         e.Params(),
		ThreadID:           e.threadID,
		ProcessID:          e.processID,
	}
}

// ToMap returns the record as a generic map keyed by RecordKeys.
func (e *Entry) ToMap() map[string]any {
	return map[string]any{
		"timestamp":           e.Timestamp(),
		"formatted_timestamp": e.formatted,
		"level":               e.level.String(),
		"feature_tag":         e.feature,
		"module_tag":          e.module,
		"function_name":       e.function,
		"message":             e.message,
		"parameters":          e.Params(),
		"thread_id":           e.threadID,
		"process_id":          e.processID,
	}
}

// ToJSON returns the record as a single line of JSON.
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

// MarshalJSON encodes the entry as its record.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

// UnmarshalJSON decodes a record into the entry.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*e = *EntryFromRecord(rec)
	return nil
}

// EntryFromRecord reconstructs an entry field-for-field from its record.
// The formatted timestamp is recomputed only when the record lacks one.
func EntryFromRecord(rec Record) *Entry {
	at := time.UnixMicro(int64(math.Round(rec.Timestamp * 1e6)))
	formatted := rec.FormattedTimestamp
	if formatted == "" {
		formatted = at.Local().Format(TimestampLayout)
	}
	return &Entry{
		at:        at,
		formatted: formatted,
		level:     rec.Level,
		feature:   rec.FeatureTag,
		module:    rec.ModuleTag,
		function:  rec.FunctionName,
		message:   rec.Message,
		params:    copyParams(rec.Parameters),
		threadID:  rec.ThreadID,
		processID: rec.ProcessID,
	}
}

// FormattedString renders the entry as a single human-readable line:
//
//	[<iso>] [<LEVEL>] [Feature: <f>] [Module: <m>] [<fn>] <msg> | Params: <json>
//
// Consumers parse this shape, so it must not change.
func (e *Entry) FormattedString() string {
	return fmt.Sprintf("[%s] [%s] [Feature: %s] [Module: %s] [%s] %s | Params: %s",
		e.formatted, e.level, e.feature, e.module, e.function, e.message, e.paramsJSON())
}

func (e *Entry) paramsJSON() string {
	if len(e.params) == 0 {
		return "{}"
	}
	data, err := json.Marshal(e.params)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(e.params))
	}
	return string(data)
}

// goroutineID parses the current goroutine id from the runtime stack header
// ("goroutine 42 [running]:"). It returns 0 if the header is unexpected.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(line, ' '); i > 0 {
		line = line[:i]
	}
	id, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Duration returns the numeric "duration" parameter, or "elapsed_time" when
// no duration is present. A present but non-numeric duration yields false.
func (e *Entry) Duration() (float64, bool) {
	v, ok := e.params["duration"]
	if !ok {
		v, ok = e.params["elapsed_time"]
	}
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
