package internal

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the JSON logger described by cfg. Without a log file it
// writes to fallback. The returned closer releases the log file.
func newLogger(cfg ApplicationConfig, fallback io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = fallback
	var closer io.Closer = nopCloser{}
	if cfg.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
		out, closer = lj, lj
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
