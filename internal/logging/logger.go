package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects how log records are encoded.
type Format int

const (
	// Text writes logfmt-style key=value lines.
	Text Format = iota
	// JSON writes one JSON object per record.
	JSON
)

// Config describes an application logger.
// An empty Level turns logging off.
type Config struct {
	Level  string
	Format Format
	Output io.Writer
}

// New builds the logger described by cfg. Callers pass Stderr as Output so
// logs never interleave with reports or JSON-RPC on Stdout.
func New(cfg Config) (*slog.Logger, error) {
	if strings.TrimSpace(cfg.Level) == "" || cfg.Output == nil {
		return NewNop(), nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceAttr}
	if cfg.Format == JSON {
		return slog.New(slog.NewJSONHandler(cfg.Output, opts)), nil
	}
	return slog.New(slog.NewTextHandler(cfg.Output, opts)), nil
}

// replaceAttr shortens "error" to "err" and prints terms and substitutions
// through their String method.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	if s, ok := a.Value.Any().(fmt.Stringer); ok && a.Value.Kind() == slog.KindAny {
		a.Value = slog.StringValue(s.String())
	}
	return a
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
