// Package logger builds the process logger from configuration.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/config"
	"github.com/rs/zerolog"
)

// New returns a zerolog logger writing to stdout. An unknown level falls back
// to info.
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(cfg.Style, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
