package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the process logger
type Config interface {
	GetLevel() string
	GetFormat() string
	GetFile() string
	GetMaxSizeMB() int
	GetMaxBackups() int
	GetMaxAgeDays() int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a slog logger writing to out and, when a file is
// configured, to a size rotated log file. The returned closer flushes
// the file writer.
func New(cfg Config, out io.Writer) (*slog.Logger, io.Closer, error) {
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	writer := out

	if file := cfg.GetFile(); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to create log directory").
				WithMetadata(map[string]any{"file": file})
		}

		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.GetMaxSizeMB(),
			MaxBackups: cfg.GetMaxBackups(),
			MaxAge:     cfg.GetMaxAgeDays(),
			Compress:   true,
		}
		writer = io.MultiWriter(out, rotator)
		closer = rotator
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.GetLevel())}

	var handler slog.Handler
	if strings.EqualFold(cfg.GetFormat(), "text") {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel maps debug, info, warn and error to slog levels, anything
// else is info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
