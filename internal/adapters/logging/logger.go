package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/furniture-factory/internal/application/common"
)

// Store receives a copy of every entry; GormLogRepository satisfies it
type Store interface {
	Log(ctx context.Context, component, level, message string, metadata map[string]interface{}) error
}

// Options configures a Logger
type Options struct {
	// debug, info, warn or error
	Level string

	// json or text
	Format string

	// Defaults to stdout
	Output io.Writer

	// Optional persistent copy of each entry
	Store Store
}

// Logger implements common.ContainerLogger on top of logrus.
// A leading "[Component]" tag in the message becomes the component field.
type Logger struct {
	log   *logrus.Logger
	store Store
}

var _ common.ContainerLogger = (*Logger)(nil)

// New builds a Logger
func New(opts Options) (*Logger, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if opts.Level == "" {
		level, err = logrus.InfoLevel, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var formatter logrus.Formatter
	switch strings.ToLower(opts.Format) {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("unsupported log format: %s", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	log := logrus.New()
	log.Out = out
	log.Formatter = formatter
	log.Level = level

	return &Logger{log: log, store: opts.Store}, nil
}

// OpenOutput resolves a configured destination: stdout, stderr or file
func OpenOutput(output, filePath string) (io.WriteCloser, error) {
	switch output {
	case "", "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	case "file":
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported log output: %s", output)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Log writes one entry at the given level
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	component, text := splitComponent(message)

	fields := make(logrus.Fields, len(metadata)+1)
	for k, v := range metadata {
		fields[k] = v
	}
	if component != "" {
		fields["component"] = component
	}

	l.log.WithFields(fields).Log(toLogrusLevel(level), text)

	if l.store != nil && l.log.IsLevelEnabled(toLogrusLevel(level)) {
		// A failing store must not take the logger down with it
		_ = l.store.Log(context.Background(), component, strings.ToUpper(level), text, metadata)
	}
}

func toLogrusLevel(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case common.LevelDebug:
		return logrus.DebugLevel
	case common.LevelWarn, "WARNING":
		return logrus.WarnLevel
	case common.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func splitComponent(message string) (string, string) {
	if !strings.HasPrefix(message, "[") {
		return "", message
	}
	end := strings.Index(message, "]")
	if end < 0 {
		return "", message
	}
	return message[1:end], strings.TrimSpace(message[end+1:])
}
