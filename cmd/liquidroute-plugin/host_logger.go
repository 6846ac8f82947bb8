// host_logger.go: forwards plugin records to the host's log callback
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"strings"

	liquidroute "github.com/liquidroute/liquidroute-geyser-plugin"
)

// hostSink receives one rendered record at a filter level.
type hostSink func(level liquidroute.LevelFilter, line string)

type hostLogger struct {
	sink   hostSink
	fields []any
}

func newHostLogger(sink hostSink) *hostLogger {
	return &hostLogger{sink: sink}
}

func (h *hostLogger) Debug(msg string, args ...any) { h.emit(liquidroute.LevelDebug, msg, args) }
func (h *hostLogger) Info(msg string, args ...any)  { h.emit(liquidroute.LevelInfo, msg, args) }
func (h *hostLogger) Warn(msg string, args ...any)  { h.emit(liquidroute.LevelWarn, msg, args) }
func (h *hostLogger) Error(msg string, args ...any) { h.emit(liquidroute.LevelError, msg, args) }

func (h *hostLogger) With(args ...any) liquidroute.Logger {
	fields := make([]any, 0, len(h.fields)+len(args))
	fields = append(fields, h.fields...)
	fields = append(fields, args...)
	return &hostLogger{sink: h.sink, fields: fields}
}

func (h *hostLogger) emit(level liquidroute.LevelFilter, msg string, args []any) {
	h.sink(level, renderHostRecord(msg, append(append([]any{}, h.fields...), args...)))
}

func renderHostRecord(msg string, kv []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing>", kv[i])
		}
	}
	return b.String()
}

// levelFromHost maps the host's numeric level; out-of-range values clamp
// to the nearest filter.
func levelFromHost(level int) liquidroute.LevelFilter {
	switch {
	case level <= int(liquidroute.LevelOff):
		return liquidroute.LevelOff
	case level >= int(liquidroute.LevelTrace):
		return liquidroute.LevelTrace
	default:
		return liquidroute.LevelFilter(level)
	}
}

func optionalInt64(present bool, v int64) *int64 {
	if !present {
		return nil
	}
	return &v
}

func optionalUint64(present bool, v uint64) *uint64 {
	if !present {
		return nil
	}
	return &v
}
