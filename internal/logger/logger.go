// Package logger provides structured JSON logging and run counters.
//
// Every entry is a single JSON line carrying a timestamp, level, message,
// optional fields and optional error. The default logger writes to stderr;
// Setup adds an append-only log file next to it so a run leaves a trace on
// disk as well as on the terminal.
//
// Example usage:
//
//	logger.Info("Parsed element", logger.Fields{
//	    "classroom": 2,
//	    "element":   14,
//	})
//
//	logger.Warn("Element does not match pattern", logger.Fields{"text": text})
//
//	logger.IncrCounter("records.generated")
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" (any case)
// to a Level. Anything else is INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured logging
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	output   io.Writer
	now      func() time.Time
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

var defaultLogger = New(LevelInfo, os.Stderr)

// New creates a logger writing entries at or above level to output.
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		output:   output,
		now:      time.Now,
	}
}

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	return defaultLogger
}

// Setup points the default logger at stderr plus the file at path (appended
// to, created if needed). An empty path logs to stderr only. The returned
// function closes the file.
func Setup(level Level, path string) (func() error, error) {
	if path == "" {
		SetDefault(New(level, os.Stderr))
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	SetDefault(New(level, io.MultiWriter(os.Stderr, f)))
	return f.Close, nil
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	entry := LogEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if marshalErr != nil {
		fmt.Fprintf(l.output, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs a failure together with its error.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

// Metrics counts what happened during a run. All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string]time.Duration
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string]time.Duration),
	}
}

// IncrCounter adds one to the named counter.
func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter adds delta to the named counter.
func (m *Metrics) AddCounter(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// RecordTiming accumulates time spent under name.
func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] += d
}

// Counter returns the current value of the named counter.
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// Fields returns counters and timings as log fields, suitable for a run
// summary entry. Timings are rendered as duration strings.
func (m *Metrics) Fields() Fields {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(Fields, len(m.counters)+len(m.timings))
	for name, v := range m.counters {
		fields[name] = v
	}
	for name, d := range m.timings {
		fields[name] = d.String()
	}
	return fields
}

// Reset clears every counter and timing.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int64)
	m.timings = make(map[string]time.Duration)
}

func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

func AddCounter(name string, delta int64) {
	defaultMetrics.AddCounter(name, delta)
}

func RecordTiming(name string, d time.Duration) {
	defaultMetrics.RecordTiming(name, d)
}

// DefaultMetrics returns the tracker behind the package-level functions.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
