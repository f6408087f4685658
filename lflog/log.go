// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lflog is a thin, observation-only logging hook for lfjson
// consumers: allocator snapshots and malformed-event warnings. It
// never influences lfjson's control flow; a caller that never
// constructs a Logger pays nothing.
package lflog

import "go.uber.org/zap"

// Logger wraps a zap.Logger with the handful of events an lfjson
// consumer cares about.
type Logger struct {
	z *zap.Logger
}

// New returns a production-configured Logger.
func New() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// Nop returns a Logger that discards everything, for tests and
// callers that have not opted into logging.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// AllocatorSnapshot records one allocator's chunk/fallback/byte
// counters, typically taken from Document.Stats.
func (l *Logger) AllocatorSnapshot(name string, chunkCount, fallbackCount int, bytes int64) {
	l.z.Info("lfjson allocator snapshot",
		zap.String("allocator", name),
		zap.Int("chunks", chunkCount),
		zap.Int("fallback", fallbackCount),
		zap.Int64("bytes", bytes),
	)
}

// MalformedEvent logs a warning about a caller event stream that
// looks wrong but has not (yet) failed a debug assertion — for
// example, an EndArray count hint that does not match element count
// when assertions are disabled.
func (l *Logger) MalformedEvent(msg string, fields ...zap.Field) {
	l.z.Warn(msg, fields...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
