// Package logging builds the structured logger used by library packages.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

const (
	defaultMaxSizeMB  = 5
	defaultMaxBackups = 3
)

// New returns a logger writing to the rotating file in cfg.File and, when
// cfg.Console is set, to console. With neither it returns a no-op logger.
// The returned close function flushes and releases the log file.
func New(cfg model.LogConfig, console io.Writer) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case "", "json", "console":
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	var cores []zapcore.Core
	var file *lumberjack.Logger
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, defaultMaxSizeMB),
			MaxBackups: orDefault(cfg.MaxBackups, defaultMaxBackups),
		}
		cores = append(cores, zapcore.NewCore(encoder(format), zapcore.AddSync(file), level))
	}
	if cfg.Console && console != nil {
		cores = append(cores, zapcore.NewCore(encoder("console"), zapcore.Lock(zapcore.AddSync(console)), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), func() error { return nil }, nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("ghostkeys")
	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if format == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
