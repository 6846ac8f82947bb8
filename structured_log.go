// structured_log.go: zerolog-backed structured log file
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package liquidroute

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// structuredLogger adapts a zerolog.Logger to Logger.
type structuredLogger struct {
	logger zerolog.Logger
}

// newStructuredLogger builds the file logger described by cfg. It returns
// a nil Logger and nil closer when no file is configured.
func newStructuredLogger(cfg LogConfig) (Logger, io.Closer, error) {
	if cfg.File == "" {
		return nil, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: 3,
		Compress:   true,
	}

	level, _ := ParseLevelFilter(cfg.Level)
	return newStructuredLoggerTo(sink, level), sink, nil
}

// newStructuredLoggerTo builds a structured logger over an arbitrary writer.
func newStructuredLoggerTo(w io.Writer, level LevelFilter) Logger {
	return &structuredLogger{
		logger: zerolog.New(w).
			Level(zerologLevel(level)).
			With().
			Timestamp().
			Str("plugin", pluginName).
			Logger(),
	}
}

func zerologLevel(level LevelFilter) zerolog.Level {
	switch level {
	case LevelOff:
		return zerolog.Disabled
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelTrace:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func (s *structuredLogger) Debug(msg string, args ...any) {
	s.emit(s.logger.Debug(), msg, args)
}

func (s *structuredLogger) Info(msg string, args ...any) {
	s.emit(s.logger.Info(), msg, args)
}

func (s *structuredLogger) Warn(msg string, args ...any) {
	s.emit(s.logger.Warn(), msg, args)
}

func (s *structuredLogger) Error(msg string, args ...any) {
	s.emit(s.logger.Error(), msg, args)
}

func (s *structuredLogger) With(args ...any) Logger {
	ctx := s.logger.With()
	for i := 0; i+1 < len(args); i += 2 {
		ctx = ctx.Interface(fieldKey(args[i], i), args[i+1])
	}
	return &structuredLogger{logger: ctx.Logger()}
}

func (s *structuredLogger) emit(event *zerolog.Event, msg string, args []any) {
	// Disabled levels hand back a nil event
	if event == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key := fieldKey(args[i], i)
		if i+1 >= len(args) {
			event = event.Str(key, "BAD_VALUE")
			break
		}
		if err, ok := args[i+1].(error); ok && (key == "error" || key == "err") {
			event = event.Err(err)
			continue
		}
		event = event.Interface(key, args[i+1])
	}
	event.Msg(msg)
}

func fieldKey(k any, i int) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("BAD_KEY_%d", i)
}
