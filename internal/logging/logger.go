package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string `yaml:"level"`
	JSON   bool   `yaml:"json"`
	Output string `yaml:"output"` // "stdout", "stderr", or file path
}

// New builds the root logger. Components derive their own with WithComponent.
// An output file that cannot be opened falls back to stdout with a warning.
func New(cfg Config) zerolog.Logger {
	out, openErr := openOutput(cfg.Output)
	if openErr != nil {
		out = os.Stdout
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if openErr != nil {
		l.Warn().Err(openErr).Str("output", cfg.Output).Msg("log file unavailable, logging to stdout")
	}
	return l
}

// openOutput resolves "stdout", "stderr" or a file path to append to.
func openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WithComponent tags every entry from l with the component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
