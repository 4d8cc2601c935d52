package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	ansiCodeReset     = "\033[0m"
	ansiCodeRed       = "\033[31m"
	ansiCodeGreen     = "\033[32m"
	ansiCodeYellow    = "\033[33m"
	ansiCodeCyan      = "\033[36m"
	ansiCodeGray      = "\033[90m"
	ansiCodeUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var ansiCodeMap = map[slog.Level]string{
	slog.LevelDebug: ansiCodeCyan,
	slog.LevelInfo:  ansiCodeGreen,
	slog.LevelWarn:  ansiCodeYellow,
	slog.LevelError: ansiCodeRed,
}

// ConsoleHandler implements slog.Handler with colorized human-readable output
// suitable for development environments.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// LoggerLevels maps logger names to minimum log levels
	LoggerLevels map[string]slog.Level

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler by formatting the log record with colors and
// a timestamp, honoring per-logger level overrides.
func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	var attrs []slog.Attr

	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)

		return true
	})

	attrs = append(attrs, h.attrs...)

	if !h.loggerEnabled(loggerName(attrs), record.Level) {
		return nil
	}

	line := ansiCodeGray + record.Time.Format("15:04:05.000000") + ansiCodeReset
	line += " " + ansiCodeMap[record.Level] + "[" + record.Level.String() + "]" + ansiCodeReset
	line += " " + record.Message

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		line += " " + ansiCodeGray + "|" + ansiCodeReset
		line += h.renderAttrs(prefix, attrs)
	}

	fmt.Fprintln(h.Output, line)

	return nil
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == "logger" {
			return attr.Value.String()
		}
	}

	return ""
}

// loggerEnabled checks the per-logger overrides from most to least specific
// name segment ("svc.authsvc" before "svc").
func (h *ConsoleHandler) loggerEnabled(name string, level slog.Level) bool {
	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0; i-- {
		var key string
		if i > 0 {
			key = strings.Join(parts[:i], ".")
		}

		override, ok := h.LoggerLevels[key]
		if !ok {
			continue
		}

		return level >= override
	}

	return true
}

func (h *ConsoleHandler) renderAttrs(prefix string, attrs []slog.Attr) (out string) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			out += h.renderAttrs(prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		out += " " + prefix + attr.Key
		out += "=" + ansiCodeGray + attr.Value.String() + ansiCodeReset
	}

	return
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	return &ConsoleHandler{
		Output:       h.Output,
		Level:        h.Level,
		LoggerLevels: h.LoggerLevels,
		attrs:        append(h.attrs, attrs...),
		groups:       h.groups,
	}
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	return &ConsoleHandler{
		Output:       h.Output,
		Level:        h.Level,
		LoggerLevels: h.LoggerLevels,
		attrs:        h.attrs,
		groups:       append(h.groups, name),
	}
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}
