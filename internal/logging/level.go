package logging

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Iron-Ham/taglog/internal/errors"
)

// Level is the severity of an entry. Levels are totally ordered:
// DEBUG < INFO < WARNING < ERROR < CRITICAL.
type Level int

// Log levels supported by the logger
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

var levelNames = [...]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

// String returns the upper-case level name, e.g. "WARNING".
func (l Level) String() string {
	if l < LevelDebug || l > LevelCritical {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= LevelDebug && l <= LevelCritical
}

// MarshalJSON encodes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// MarshalYAML encodes the level as its name.
func (l Level) MarshalYAML() (any, error) {
	return l.String(), nil
}

// UnmarshalJSON decodes a level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("level must be a string: %w", err)
	}
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and "WARN" is accepted as an alias of "WARNING".
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return LevelDebug, errors.NewValidationError("unknown level").
			WithField("level").WithValue(name).WithCause(errors.ErrInvalidLevel)
	}
}

// AllLevels returns every level in ascending order.
func AllLevels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}
}

// ValidLevels returns the list of valid level names.
func ValidLevels() []string {
	return levelNames[:]
}
