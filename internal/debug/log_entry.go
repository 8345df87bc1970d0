package debug

import (
	"fmt"
	"time"
)

// LogLevel represents the severity level of a log entry.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "NONE"
	case LogLevelError:
		return "ERROR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Component identifies which compiler stage produced a log entry.
type Component string

const (
	ComponentLexer   Component = "Lexer"
	ComponentNumber  Component = "Number"
	ComponentParser  Component = "Parser"
	ComponentTiming  Component = "Timing"
	ComponentFlatten Component = "Flatten"
	ComponentLower   Component = "Lower"
	ComponentCLI     Component = "CLI"
)

// LogEntry represents a single log entry. Line/Column carry the source
// position the entry refers to (zero when the component has none, e.g. a
// CLI-stage summary line), letting a trace reconstruct where in the input a
// parser/timing/lowering decision was made without parsing Message back out.
type LogEntry struct {
	Timestamp time.Time
	Component Component
	Level     LogLevel
	Message   string
	Line      int
	Column    int
	Data      map[string]interface{} // stage-specific payload: op ids, wait_ms, voice counts, ...
}

// Format formats the log entry as a string.
func (e *LogEntry) Format() string {
	timestamp := e.Timestamp.Format("15:04:05.000")
	if e.Line > 0 {
		return fmt.Sprintf("[%s] [%s] %s: %d:%d: %s", timestamp, e.Component, e.Level, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("[%s] [%s] %s: %s", timestamp, e.Component, e.Level, e.Message)
}
