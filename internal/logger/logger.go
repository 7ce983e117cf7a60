// Package logger writes structured JSON log lines to stdout.
package logger

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]any

type contextKey string

// RequestIDKey is the context key under which the request id travels.
const RequestIDKey contextKey = "request_id"

type entry struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Service   string `json:"service"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"msg"`
	Error     string `json:"error,omitempty"`
	Fields    Fields `json:"fields,omitempty"`
}

// Logger is safe for concurrent use.
type Logger struct {
	service string
	loc     *time.Location

	mu  sync.Mutex
	out io.Writer
}

var defaultLogger = New("busgallery", os.Stdout, time.UTC)

// New builds a logger writing to w with timestamps in loc.
func New(service string, w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{service: service, out: w, loc: loc}
}

// Init replaces the package-level logger.
func Init(service string, w io.Writer, loc *time.Location) {
	defaultLogger = New(service, w, loc)
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

func (l *Logger) log(ctx context.Context, level, message string, err error, fields Fields) {
	e := entry{
		Timestamp: time.Now().In(l.loc).Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		Message:   message,
		Fields:    fields,
	}
	e.RequestID = RequestIDFrom(ctx)
	if err != nil {
		e.Error = err.Error()
	}

	b, marshalErr := json.Marshal(e)
	if marshalErr != nil {
		log.Printf("logger: marshal entry: %v, original message: %s", marshalErr, message)
		return
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(b)
}

func (l *Logger) Info(ctx context.Context, message string, fields ...Fields) {
	l.log(ctx, "info", message, nil, first(fields))
}

func (l *Logger) Warn(ctx context.Context, message string, fields ...Fields) {
	l.log(ctx, "warn", message, nil, first(fields))
}

func (l *Logger) Debug(ctx context.Context, message string, fields ...Fields) {
	l.log(ctx, "debug", message, nil, first(fields))
}

func (l *Logger) Error(ctx context.Context, message string, err error, fields ...Fields) {
	l.log(ctx, "error", message, err, first(fields))
}

func Info(ctx context.Context, message string, fields ...Fields) {
	defaultLogger.Info(ctx, message, fields...)
}

func Warn(ctx context.Context, message string, fields ...Fields) {
	defaultLogger.Warn(ctx, message, fields...)
}

func Debug(ctx context.Context, message string, fields ...Fields) {
	defaultLogger.Debug(ctx, message, fields...)
}

func Error(ctx context.Context, message string, err error, fields ...Fields) {
	defaultLogger.Error(ctx, message, err, fields...)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFrom returns the request id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(RequestIDKey).(string)
	return rid
}

func first(fields []Fields) Fields {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}
