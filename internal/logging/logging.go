// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"docrag/internal/domain"
)

// Config selects the handler and minimum level.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// New returns a logger writing to w. Format is "text" or "json"; level is one
// of debug, info, warn, error.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", domain.ErrConfiguration, cfg.Format)
	}
}

// ParseLevel maps a level name onto slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: unknown log level %q", domain.ErrConfiguration, s)
	}
	return l, nil
}
