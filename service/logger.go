package service

import (
	"github.com/relex/ringlog/base"
)

// Logger is the named producer facade: level pre-filter, logger identity and
// bounded origin name for records. Loggers are cheap shared handles; the
// per-record state lives in ring slots.
type Logger struct {
	svc    *Service
	name   string
	id     int32
	level  base.Level
	origin string
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// Level returns the effective minimum level resolved from configuration
// overrides
func (l *Logger) Level() base.Level {
	return l.level
}

// WithOrigin derives a logger stamping the given origin (producer name) into
// records, truncated to the configured bound. Derive once per producer
// goroutine at setup, not per record.
func (l *Logger) WithOrigin(origin string) *Logger {
	derived := *l
	derived.origin = origin
	return &derived
}

// Log starts a record of the given level, claiming the next free slot; the
// caller must finish with Commit. Filtered-out levels and shutdown return a
// muted entry, so the call chain is always safe.
func (l *Logger) Log(level base.Level) *Entry {
	if !l.level.Enables(level) {
		return muted
	}
	return l.svc.claimEntry(level, l)
}

// TryLog starts a record without blocking: when the ring is full it fails
// with ring.ErrWouldBlock instead of waiting for a free slot
func (l *Logger) TryLog(level base.Level) (*Entry, error) {
	if !l.level.Enables(level) {
		return muted, nil
	}
	return l.svc.tryClaimEntry(level, l)
}

// Trace starts a TRACE record
func (l *Logger) Trace() *Entry {
	return l.Log(base.TraceLevel)
}

// Debug starts a DEBUG record
func (l *Logger) Debug() *Entry {
	return l.Log(base.DebugLevel)
}

// Info starts an INFO record
func (l *Logger) Info() *Entry {
	return l.Log(base.InfoLevel)
}

// Warn starts a WARN record
func (l *Logger) Warn() *Entry {
	return l.Log(base.WarnLevel)
}

// Error starts an ERROR record
func (l *Logger) Error() *Entry {
	return l.Log(base.ErrorLevel)
}

// Fatal starts a FATAL record; it is still asynchronous and does not
// terminate the process
func (l *Logger) Fatal() *Entry {
	return l.Log(base.FatalLevel)
}
