package common

import "context"

// Log levels understood by every ContainerLogger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// ContainerLogger is the logging port used across the factory.
// Messages start with a "[Component]" tag; metadata may be nil.
type ContainerLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Discard drops everything
var Discard ContainerLogger = discard{}

type discard struct{}

func (discard) Log(string, string, map[string]interface{}) {}

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger
func WithLogger(ctx context.Context, logger ContainerLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger carried by ctx, or Discard
func LoggerFromContext(ctx context.Context) ContainerLogger {
	if logger, ok := ctx.Value(loggerKey{}).(ContainerLogger); ok && logger != nil {
		return logger
	}
	return Discard
}
