package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/config"
)

// Setup builds the process logger from the logging config. With a file
// configured, output goes to a size-rotated log; otherwise to stderr.
// The returned closer is nil when nothing needs closing.
func Setup(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)
	if cfg.File != "" {
		writer, err := NewRotatingWriter(RotationConfig{
			File:      cfg.File,
			MaxSizeMB: cfg.MaxSizeMB,
			MaxFiles:  cfg.MaxFiles,
		})
		if err != nil {
			return nil, nil, err
		}
		out = writer
		closer = writer
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}
