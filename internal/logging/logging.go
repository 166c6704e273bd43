package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level controls which messages are emitted
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fields is a set of structured key/value pairs attached to a log line
type Fields map[string]interface{}

// WithField builds a single-entry field set
func WithField(key string, value interface{}) Fields {
	return Fields{key: value}
}

// WithFields wraps an existing map as a field set
func WithFields(fields map[string]interface{}) Fields {
	return Fields(fields)
}

// Logger is a leveled logger with structured fields
type Logger struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
}

// New creates a logger writing to stderr at the given level
func New(level Level) *Logger {
	return &Logger{
		level: level,
		out:   os.Stderr,
	}
}

// NewWithOutput creates a logger writing to the given writer
func NewWithOutput(level Level, out io.Writer) *Logger {
	return &Logger{
		level: level,
		out:   out,
	}
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(LevelDebug, msg, fields)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(LevelInfo, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(LevelWarn, msg, fields)
}

func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(LevelError, msg, fields)
}

func (l *Logger) log(level Level, msg string, fieldSets []Fields) {
	if level < l.level {
		return
	}

	merged := make(Fields)
	for _, fields := range fieldSets {
		for k, v := range fields {
			merged[k] = v
		}
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" ")
	b.WriteString(level.String())
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, merged[k]))
	}
	b.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, b.String())
}
