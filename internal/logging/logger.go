// Package logging provides structured JSON logging with trace IDs and
// per-component child loggers.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger is the structured logging interface used throughout the service.
// Fields are passed as alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})

	// Context-aware variants pick up the request trace ID
	InfoContext(ctx context.Context, msg string, fields ...interface{})
	WarnContext(ctx context.Context, msg string, fields ...interface{})
	ErrorContext(ctx context.Context, msg string, fields ...interface{})

	WithTraceID(traceID string) Logger
	WithComponent(component string) Logger
}

// Level represents a logging threshold
type Level int

// Logging levels, lowest to highest severity
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a config string into a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
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

type contextKey string

// TraceIDKey is the context key carrying the request trace ID
const TraceIDKey contextKey = "trace_id"

// ContextWithTraceID returns a context carrying the given trace ID,
// generating one when empty.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// TraceIDFromContext extracts the trace ID from a context, if present.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// entry is the serialized form of one log line
type entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Component string                 `json:"component,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// jsonLogger implements Logger with JSON or plain-text output
type jsonLogger struct {
	level     Level
	traceID   string
	component string
	useJSON   bool
}

// New creates a logger with the given threshold. Format "text" switches to
// human-readable output; anything else logs JSON lines.
func New(level Level, format string) Logger {
	return &jsonLogger{
		level:   level,
		useJSON: format != "text",
	}
}

// WithTraceID returns a child logger bound to a trace ID
func (l *jsonLogger) WithTraceID(traceID string) Logger {
	clone := *l
	clone.traceID = traceID
	return &clone
}

// WithComponent returns a child logger bound to a component name
func (l *jsonLogger) WithComponent(component string) Logger {
	clone := *l
	clone.component = component
	return &clone
}

func (l *jsonLogger) Debug(msg string, fields ...interface{}) {
	if l.level <= LevelDebug {
		l.write("DEBUG", msg, "", fields...)
	}
}

func (l *jsonLogger) Info(msg string, fields ...interface{}) {
	if l.level <= LevelInfo {
		l.write("INFO", msg, "", fields...)
	}
}

func (l *jsonLogger) Warn(msg string, fields ...interface{}) {
	if l.level <= LevelWarn {
		l.write("WARN", msg, "", fields...)
	}
}

func (l *jsonLogger) Error(msg string, fields ...interface{}) {
	if l.level <= LevelError {
		l.write("ERROR", msg, "", fields...)
	}
}

func (l *jsonLogger) InfoContext(ctx context.Context, msg string, fields ...interface{}) {
	if l.level <= LevelInfo {
		l.write("INFO", msg, TraceIDFromContext(ctx), fields...)
	}
}

func (l *jsonLogger) WarnContext(ctx context.Context, msg string, fields ...interface{}) {
	if l.level <= LevelWarn {
		l.write("WARN", msg, TraceIDFromContext(ctx), fields...)
	}
}

func (l *jsonLogger) ErrorContext(ctx context.Context, msg string, fields ...interface{}) {
	if l.level <= LevelError {
		l.write("ERROR", msg, TraceIDFromContext(ctx), fields...)
	}
}

// write formats and emits one log line
func (l *jsonLogger) write(level, msg, contextTraceID string, fields ...interface{}) {
	traceID := l.traceID
	if contextTraceID != "" {
		traceID = contextTraceID
	}

	fieldMap := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		fieldMap[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   msg,
		TraceID:   traceID,
		Component: l.component,
		Fields:    fieldMap,
	}

	if l.useJSON {
		data, err := json.Marshal(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(os.Stdout, string(data))
		return
	}

	parts := []string{e.Timestamp, "[" + e.Level + "]"}
	if e.Component != "" {
		parts = append(parts, "component="+e.Component)
	}
	if e.TraceID != "" {
		parts = append(parts, "trace="+e.TraceID)
	}
	parts = append(parts, e.Message)
	for k, v := range fieldMap {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
}
