package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogWriter returns a size-rotated log file writer inside dir.
// Caller must close it.
func NewLogWriter(dir string, maxSizeMB, maxBackups int) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, "server.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}, nil
}

// NewLogger builds the JSON logger used across the process.
// When LogDir is configured, output is teed into a rotated file; the returned
// closer releases it (no-op otherwise).
func NewLogger(cfg *Config, stdout io.Writer) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}

	out := stdout
	closer := func() error { return nil }

	if cfg.LogDir != "" {
		file, err := NewLogWriter(cfg.LogDir, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(stdout, file)
		closer = file.Close
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))

	return logger, closer, nil
}
