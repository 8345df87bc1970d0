package debug

import (
	"fmt"
	"sync"
	"time"
)

// Logger is a centralized, component-scoped log sink for the compiler
// pipeline. Entries live in a circular buffer so a long-running watch-mode
// process doesn't grow its log history without bound.
type Logger struct {
	entries    []LogEntry
	entriesMu  sync.RWMutex
	maxEntries int
	writeIndex int
	entryCount int

	componentEnabled map[Component]bool
	componentMu      sync.RWMutex

	minLevel LogLevel
	levelMu  sync.RWMutex

	logChan  chan LogEntry
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewLogger creates a new logger instance with the given circular-buffer
// capacity. Every component starts disabled; logging is opt-in per stage.
func NewLogger(maxEntries int) *Logger {
	if maxEntries < 100 {
		maxEntries = 100
	}

	logger := &Logger{
		entries:          make([]LogEntry, maxEntries),
		maxEntries:       maxEntries,
		componentEnabled: make(map[Component]bool),
		minLevel:         LogLevelInfo,
		logChan:          make(chan LogEntry, 1000),
		shutdown:         make(chan struct{}),
	}

	logger.componentEnabled[ComponentLexer] = false
	logger.componentEnabled[ComponentNumber] = false
	logger.componentEnabled[ComponentParser] = false
	logger.componentEnabled[ComponentTiming] = false
	logger.componentEnabled[ComponentFlatten] = false
	logger.componentEnabled[ComponentLower] = false
	logger.componentEnabled[ComponentCLI] = false

	logger.wg.Add(1)
	go logger.processLogs()

	return logger
}

func (l *Logger) processLogs() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.logChan:
			l.addEntry(entry)
		case <-l.shutdown:
			for {
				select {
				case entry := <-l.logChan:
					l.addEntry(entry)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) addEntry(entry LogEntry) {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()

	l.entries[l.writeIndex] = entry
	l.writeIndex = (l.writeIndex + 1) % l.maxEntries
	if l.entryCount < l.maxEntries {
		l.entryCount++
	}
}

// Log records a message for component at level, subject to the component's
// enabled flag and the logger's minimum level.
func (l *Logger) Log(component Component, level LogLevel, message string, data map[string]interface{}) {
	l.LogAt(component, level, 0, 0, message, data)
}

// LogAt is Log plus a source position, used by the scanner/parser/timing/
// lowering stages to tie a trace entry back to the line/column it was
// produced for; CLI-level summaries that have no single source position
// keep calling Log (line/col stay zero and Format omits them).
func (l *Logger) LogAt(component Component, level LogLevel, line, column int, message string, data map[string]interface{}) {
	l.componentMu.RLock()
	enabled := l.componentEnabled[component]
	l.componentMu.RUnlock()
	if !enabled {
		return
	}

	l.levelMu.RLock()
	minLevel := l.minLevel
	l.levelMu.RUnlock()
	if level > minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Component: component,
		Level:     level,
		Message:   message,
		Line:      line,
		Column:    column,
		Data:      data,
	}

	select {
	case l.logChan <- entry:
	default:
		// channel full: drop rather than block the compile pipeline
	}
}

// Logf logs a formatted message.
func (l *Logger) Logf(component Component, level LogLevel, format string, args ...interface{}) {
	l.Log(component, level, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) LogLexer(level LogLevel, line, column int, message string, data map[string]interface{}) {
	l.LogAt(ComponentLexer, level, line, column, message, data)
}

func (l *Logger) LogNumber(level LogLevel, line, column int, message string, data map[string]interface{}) {
	l.LogAt(ComponentNumber, level, line, column, message, data)
}

func (l *Logger) LogParser(level LogLevel, line, column int, message string, data map[string]interface{}) {
	l.LogAt(ComponentParser, level, line, column, message, data)
}

func (l *Logger) LogTiming(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentTiming, level, message, data)
}

func (l *Logger) LogFlatten(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentFlatten, level, message, data)
}

func (l *Logger) LogLower(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentLower, level, message, data)
}

func (l *Logger) LogLexerf(level LogLevel, line, column int, format string, args ...interface{}) {
	l.LogAt(ComponentLexer, level, line, column, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) LogNumberf(level LogLevel, line, column int, format string, args ...interface{}) {
	l.LogAt(ComponentNumber, level, line, column, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) LogParserf(level LogLevel, line, column int, format string, args ...interface{}) {
	l.LogAt(ComponentParser, level, line, column, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) LogTimingf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentTiming, level, format, args...)
}

func (l *Logger) LogFlattenf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentFlatten, level, format, args...)
}

func (l *Logger) LogLowerf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentLower, level, format, args...)
}

// GetEntries returns a copy of all log entries, oldest first.
func (l *Logger) GetEntries() []LogEntry {
	l.entriesMu.RLock()
	defer l.entriesMu.RUnlock()

	if l.entryCount == 0 {
		return []LogEntry{}
	}

	entries := make([]LogEntry, l.entryCount)
	if l.entryCount < l.maxEntries {
		copy(entries, l.entries[:l.entryCount])
	} else {
		for i := 0; i < l.entryCount; i++ {
			idx := (l.writeIndex + i) % l.maxEntries
			entries[i] = l.entries[idx]
		}
	}
	return entries
}

// GetRecentEntries returns the most recent count entries.
func (l *Logger) GetRecentEntries(count int) []LogEntry {
	all := l.GetEntries()
	if count >= len(all) {
		return all
	}
	return all[len(all)-count:]
}

// Clear clears all log entries.
func (l *Logger) Clear() {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()
	l.entryCount = 0
	l.writeIndex = 0
}

// SetComponentEnabled enables or disables logging for a component.
func (l *Logger) SetComponentEnabled(component Component, enabled bool) {
	l.componentMu.Lock()
	defer l.componentMu.Unlock()
	l.componentEnabled[component] = enabled
}

// IsComponentEnabled returns whether a component is enabled.
func (l *Logger) IsComponentEnabled(component Component) bool {
	l.componentMu.RLock()
	defer l.componentMu.RUnlock()
	return l.componentEnabled[component]
}

// SetMinLevel sets the minimum log level.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.levelMu.Lock()
	defer l.levelMu.Unlock()
	l.minLevel = level
}

// GetMinLevel returns the minimum log level.
func (l *Logger) GetMinLevel() LogLevel {
	l.levelMu.RLock()
	defer l.levelMu.RUnlock()
	return l.minLevel
}

// Shutdown stops the logger and waits for all queued entries to drain.
func (l *Logger) Shutdown() {
	close(l.shutdown)
	l.wg.Wait()
}
