// Package observability provides structured logging with sensitive-data
// redaction and Prometheus metrics for the query pipeline.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error".
	Level string

	// LevelVar, when set, controls the handler level dynamically and takes
	// precedence over Level. Callers keep the reference to retune the level
	// at runtime, e.g. on config reload.
	LevelVar *slog.LevelVar

	// Format specifies output format: "json" or "text". JSON is the
	// default and recommended for production.
	Format string

	// Output is the writer for log output (defaults to os.Stdout).
	Output io.Writer

	// AddSource includes file and line number in log records.
	AddSource bool

	// RedactPatterns are additional regex patterns for sensitive-data
	// redaction on top of the defaults.
	RedactPatterns []string
}

// DefaultRedactPatterns matches common secrets in log attribute values.
var DefaultRedactPatterns = []string{
	// API keys and bearer tokens
	`(?i)(api[_-]?key|apikey|token|secret|password)[\s:=]+\S+`,

	// OpenAI / Anthropic style keys
	`sk-[a-zA-Z0-9_-]{20,}`,

	// Slack tokens
	`xox[baprs]-[a-zA-Z0-9-]{10,}`,

	// GitHub tokens
	`gh[pousr]_[a-zA-Z0-9]{20,}`,
}

// NewLogger creates a structured slog logger with the given configuration.
// String attribute values and messages pass through the redaction patterns
// before being emitted.
func NewLogger(config LogConfig) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	var level slog.Leveler = ParseLevel(config.Level)
	if config.LevelVar != nil {
		level = config.LevelVar
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "text") {
		handler = slog.NewTextHandler(config.Output, opts)
	} else {
		handler = slog.NewJSONHandler(config.Output, opts)
	}

	redacts := compilePatterns(append(DefaultRedactPatterns, config.RedactPatterns...))
	return slog.New(&redactHandler{inner: handler, redacts: redacts})
}

// ParseLevel maps a config level name to its slog level. Unknown names fall
// back to info.
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

func compilePatterns(patterns []string) []*regexp.Regexp {
	redacts := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		if re, err := regexp.Compile(pattern); err == nil {
			redacts = append(redacts, re)
		}
	}
	return redacts
}

// redactHandler rewrites string attribute values and messages through the
// redaction patterns before delegating to the inner handler.
type redactHandler struct {
	inner   slog.Handler
	redacts []*regexp.Regexp
}

func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *redactHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, h.redact(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		clean[i] = h.redactAttr(attr)
	}
	return &redactHandler{inner: h.inner.WithAttrs(clean), redacts: h.redacts}
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{inner: h.inner.WithGroup(name), redacts: h.redacts}
}

func (h *redactHandler) redactAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindString {
		attr.Value = slog.StringValue(h.redact(attr.Value.String()))
	}
	return attr
}

func (h *redactHandler) redact(s string) string {
	for _, re := range h.redacts {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}
