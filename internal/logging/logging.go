package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jask/jaskledger/internal/config"
)

// NewRotatingWriter returns a size-rotated log file writer. Zero limits fall
// back to 10 MB and 5 backups.
func NewRotatingWriter(cfg config.LogConfig) (*lumberjack.Logger, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("rotation file path must not be empty")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 5
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
	}, nil
}

// Setup builds the process logger and installs it as slog's default. Without
// a log file it writes text records to stderr; with one it writes JSON
// records to a rotating file. The returned closer releases the file.
func Setup(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var (
		handler slog.Handler
		closer  io.Closer = io.NopCloser(nil)
	)
	if cfg.File == "" {
		handler = slog.NewTextHandler(stderr, opts)
	} else {
		w, err := NewRotatingWriter(cfg)
		if err != nil {
			return nil, nil, err
		}
		handler = slog.NewJSONHandler(w, opts)
		closer = w
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer, nil
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
