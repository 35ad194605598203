package app

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/config"
)

// NewLogger builds the process logger from cfg, writing to w.
func NewLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := cfg.ZerologLevel()
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if strings.ToLower(cfg.Format) != config.FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
