package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Logger interface
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// Fields is a map of field keys to values
type Fields map[string]interface{}

// StructuredLogger implements the Logger interface on top of logrus.
type StructuredLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string
	Format      string // "json" or "text"
	Output      string // "stdout", "stderr", or file path
	ServiceName string
	Version     string
	Environment string

	// Writer overrides Output when set.
	Writer io.Writer
}

type contextKey string

// RequestIDKey is the gin and request context key holding the request ID.
const RequestIDKey = "request_id"

const requestIDContextKey contextKey = RequestIDKey

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(config *LogConfig) (Logger, error) {
	logger := logrus.New()
	logger.SetLevel(ParseLogLevel(config.Level))

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	switch {
	case config.Writer != nil:
		logger.SetOutput(config.Writer)
	case config.Output == "stderr":
		logger.SetOutput(os.Stderr)
	case config.Output == "" || config.Output == "stdout":
		logger.SetOutput(os.Stdout)
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(file)
	}

	structuredLogger := &StructuredLogger{
		logger: logger,
		fields: logrus.Fields{
			"service":     config.ServiceName,
			"version":     config.Version,
			"environment": config.Environment,
		},
	}

	return structuredLogger, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &StructuredLogger{logger: logger, fields: logrus.Fields{}}
}

func (l *StructuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, logrus.DebugLevel, msg, fields...)
}

func (l *StructuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, logrus.InfoLevel, msg, fields...)
}

func (l *StructuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, logrus.WarnLevel, msg, fields...)
}

func (l *StructuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, logrus.ErrorLevel, msg, fields...)
}

func (l *StructuredLogger) log(ctx context.Context, level logrus.Level, msg string, fields ...Field) {
	if !l.logger.IsLevelEnabled(level) {
		return
	}

	entry := l.logger.WithFields(l.fields)

	if ctx != nil {
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}

		if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			spanContext := span.SpanContext()
			entry = entry.WithFields(logrus.Fields{
				"trace_id": spanContext.TraceID().String(),
				"span_id":  spanContext.SpanID().String(),
			})
		}
	}

	if _, file, line, ok := runtime.Caller(2); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", file, line))
	}

	for _, field := range fields {
		entry = entry.WithField(field.Key, field.Value)
	}

	entry.Log(level, msg)

	// logrus levels grow more verbose as the value increases.
	if ctx != nil && level <= logrus.ErrorLevel {
		if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			span.SetStatus(codes.Error, msg)
			span.SetAttributes(attribute.String("log.level", level.String()))
		}
	}
}

func (l *StructuredLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(Fields{key: value})
}

func (l *StructuredLogger) WithFields(fields Fields) Logger {
	newFields := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &StructuredLogger{
		logger: l.logger,
		fields: newFields,
	}
}

func (l *StructuredLogger) WithError(err error) Logger {
	return l.WithField("error", err.Error())
}

// ContextWithRequestID stores a request ID on ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext returns the request ID stored on ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}

// Helper functions for creating fields
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(key string, err error) Field {
	if err == nil {
		return Field{Key: key, Value: nil}
	}
	return Field{Key: key, Value: err.Error()}
}

// ParseLogLevel falls back to info for unknown levels.
func ParseLogLevel(level string) logrus.Level {
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsedLevel
}
