package base

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is the severity of a log record
type Level int32

// Severity levels in ascending order; a record passes a filter when its level
// is at or above the filter's
const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// levelMarks are the fixed-width header forms, padded to align columns
var levelMarks = [...][]byte{
	[]byte("TRACE"),
	[]byte("DEBUG"),
	[]byte("INFO "),
	[]byte("WARN "),
	[]byte("ERROR"),
	[]byte("FATAL"),
}

// String returns the canonical upper-case name
func (lv Level) String() string {
	if lv < TraceLevel || lv > FatalLevel {
		return fmt.Sprintf("Level(%d)", int32(lv))
	}
	return levelNames[lv]
}

// Mark returns the fixed-width header form of the level name
//
// The returned slice is immutable shared state
func (lv Level) Mark() []byte {
	if lv < TraceLevel || lv > FatalLevel {
		return levelMarks[ErrorLevel]
	}
	return levelMarks[lv]
}

// Enables reports whether a record of the given level passes a filter at lv
func (lv Level) Enables(recordLevel Level) bool {
	return recordLevel >= lv
}

// ParseLevel parses a case-insensitive level name
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == upper {
			return Level(i), nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level '%s'", name)
}

// UnmarshalYAML decodes a level name in configuration files
func (lv *Level) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*lv = parsed
	return nil
}

// MarshalYAML encodes the canonical level name
func (lv Level) MarshalYAML() (interface{}, error) {
	return lv.String(), nil
}
