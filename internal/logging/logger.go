package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects format, level and destination.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stdout or stderr
	// RedactFields extends PIIFields.
	RedactFields []string `yaml:"redact_fields"`
}

// New returns a logger writing to cfg.Output with service and version
// default attributes. PII attributes are always redacted.
func New(cfg Config, version string) *slog.Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	return NewWithWriter(cfg, version, output)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg Config, version string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	fields := append(append([]string{}, PIIFields...), cfg.RedactFields...)
	handler = NewRedactingHandler(handler, fields...).WithAttrs([]slog.Attr{
		slog.String("service", "userauth"),
		slog.String("version", version),
	})
	return slog.New(handler)
}

// ParseLevel maps debug, info, warn and error onto slog levels. Anything
// else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
