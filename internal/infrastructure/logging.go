package infrastructure

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JaimeStill/plagiat/internal/config"
)

// NewLogger builds the root logger from cfg. Records go to w and, when
// cfg.File is set, to a size-rotated file. The returned closer is nil when
// no file sink is configured.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) (*slog.Logger, io.Closer) {
	var sink io.Closer

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(w, rotator)
		sink = rotator
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), sink
}
