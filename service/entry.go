package service

import (
	"fmt"

	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/defs"
)

// Entry is the record builder bound to one ring slot. A producer obtains it
// from a Logger, appends primitives or fills template placeholders, and
// publishes with Commit. Entries live in the slot array; nothing is allocated
// per record.
//
// Payload overflow truncates the record and appends a truncation mark.
// Template misuse turns the record into an error record at Commit; neither
// ever propagates into the calling goroutine.
type Entry struct {
	svc  *Service
	slot *base.Slot
	seq  int64

	pattern    string
	patternPos int
	patterned  bool
	misuse     error
	active     bool
}

// muted is the shared no-op entry handed out for filtered-out or dropped
// records; it is never mutated
var muted = &Entry{}

func (e *Entry) begin(seq int64, level base.Level, l *Logger) {
	e.seq = seq
	e.slot.Begin(level, e.svc.clock.NowMillis(), l.id, l.name, l.origin)
	e.pattern = ""
	e.patternPos = 0
	e.patterned = false
	e.misuse = nil
	e.active = true
}

// Pattern switches the entry to templated mode: literal characters with %s
// placeholders to be filled by With calls, and %% escaping a literal percent
func (e *Entry) Pattern(pattern string) *Entry {
	if !e.active || e.misuse != nil {
		return e
	}
	if e.patterned {
		e.fail(fmt.Errorf("pattern already set"))
		return e
	}
	e.patterned = true
	e.pattern = pattern
	e.patternPos = 0
	e.appendLiteralRun()
	return e
}

// Commit publishes the record. In templated mode every placeholder must have
// been filled; otherwise an error record describing the misuse is published
// instead. Calling Commit on an already-published or filtered entry is a
// no-op.
func (e *Entry) Commit() {
	if !e.active {
		return
	}
	if e.misuse == nil && e.patterned && e.patternPos < len(e.pattern) {
		e.fail(fmt.Errorf("pattern %q not finished at offset %d: more values required", e.pattern, e.patternPos))
	}
	if e.misuse != nil {
		e.publishMisuse()
		return
	}
	if e.slot.Truncated {
		e.svc.metrics.RecordsTruncated.Inc()
	}
	e.active = false
	e.svc.publishEntry(e)
}

// Append writes a string to the payload
func (e *Entry) Append(s string) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendString(s); err != nil {
			e.truncate()
		}
	}
	return e
}

// AppendInt writes the decimal form of a native int
func (e *Entry) AppendInt(v int) *Entry {
	return e.AppendInt64(int64(v))
}

// AppendInt32 writes the decimal form of a 32-bit integer
func (e *Entry) AppendInt32(v int32) *Entry {
	return e.AppendInt64(int64(v))
}

// AppendInt64 writes the decimal form of a 64-bit integer
func (e *Entry) AppendInt64(v int64) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendInt64(v); err != nil {
			e.truncate()
		}
	}
	return e
}

// AppendInt8 writes the signed decimal of a byte value
func (e *Entry) AppendInt8(v int8) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendInt8(v); err != nil {
			e.truncate()
		}
	}
	return e
}

// AppendRune writes one character; in single-byte mode only ASCII is
// supported
func (e *Entry) AppendRune(r rune) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendRune(r); err != nil {
			e.truncate()
		}
	}
	return e
}

// AppendBool writes "true" or "false"
func (e *Entry) AppendBool(v bool) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendBool(v); err != nil {
			e.truncate()
		}
	}
	return e
}

// AppendFloat64 writes a double in plain decimal notation
func (e *Entry) AppendFloat64(v float64) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendFloat64(v); err != nil {
			e.truncate()
		}
	}
	return e
}

// AppendFloat64Digits writes a double with a fixed number of fraction digits
func (e *Entry) AppendFloat64Digits(v float64, digits int) *Entry {
	if e.canAppend() {
		if err := e.slot.Payload.AppendFloat64Digits(v, digits); err != nil {
			e.truncate()
		}
	}
	return e
}

// With fills the next %s placeholder with a string
func (e *Entry) With(s string) *Entry {
	if e.takePlaceholder() {
		e.Append(s)
		e.appendLiteralRun()
	}
	return e
}

// WithInt fills the next %s placeholder with a native int
func (e *Entry) WithInt(v int) *Entry {
	return e.WithInt64(int64(v))
}

// WithInt32 fills the next %s placeholder with a 32-bit integer
func (e *Entry) WithInt32(v int32) *Entry {
	return e.WithInt64(int64(v))
}

// WithInt64 fills the next %s placeholder with a 64-bit integer
func (e *Entry) WithInt64(v int64) *Entry {
	if e.takePlaceholder() {
		e.AppendInt64(v)
		e.appendLiteralRun()
	}
	return e
}

// WithRune fills the next %s placeholder with one character
func (e *Entry) WithRune(r rune) *Entry {
	if e.takePlaceholder() {
		e.AppendRune(r)
		e.appendLiteralRun()
	}
	return e
}

// WithBool fills the next %s placeholder with "true" or "false"
func (e *Entry) WithBool(v bool) *Entry {
	if e.takePlaceholder() {
		e.AppendBool(v)
		e.appendLiteralRun()
	}
	return e
}

// WithFloat64 fills the next %s placeholder with a double
func (e *Entry) WithFloat64(v float64) *Entry {
	if e.takePlaceholder() {
		e.AppendFloat64(v)
		e.appendLiteralRun()
	}
	return e
}

// WithFloat64Digits fills the next %s placeholder with a fixed-precision
// double
func (e *Entry) WithFloat64Digits(v float64, digits int) *Entry {
	if e.takePlaceholder() {
		e.AppendFloat64Digits(v, digits)
		e.appendLiteralRun()
	}
	return e
}

func (e *Entry) canAppend() bool {
	return e.active && e.misuse == nil && !e.slot.Truncated
}

// truncate marks the record truncated and stamps the truncation mark,
// rewinding just enough to make it fit
func (e *Entry) truncate() {
	e.slot.Truncated = true
	payload := e.slot.Payload
	deficit := len(defs.TruncationMark) - payload.Remaining()
	if deficit > 0 {
		if payload.Len() < deficit {
			return // payload buffer smaller than the mark itself
		}
		payload.Rewind(payload.Len() - deficit)
	}
	_ = payload.AppendString(defs.TruncationMark)
}

// takePlaceholder consumes the %s expected at the current pattern position
func (e *Entry) takePlaceholder() bool {
	if !e.active || e.misuse != nil {
		return false
	}
	if !e.patterned {
		e.fail(fmt.Errorf("with-value called without a pattern"))
		return false
	}
	if e.patternPos+1 >= len(e.pattern) ||
		e.pattern[e.patternPos] != '%' || e.pattern[e.patternPos+1] != 's' {
		e.fail(fmt.Errorf("no remaining placeholder in pattern %q at offset %d", e.pattern, e.patternPos))
		return false
	}
	e.patternPos += 2
	return true
}

// appendLiteralRun copies pattern characters up to the next placeholder or
// the end, unescaping %% on the way
func (e *Entry) appendLiteralRun() {
	p := e.pattern
	i := e.patternPos
	start := i
	for i < len(p) {
		if p[i] == '%' && i+1 < len(p) {
			switch p[i+1] {
			case 's':
				e.appendLiteral(p[start:i])
				e.patternPos = i
				return
			case '%':
				e.appendLiteral(p[start : i+1]) // keep one literal '%'
				i += 2
				start = i
				continue
			}
		}
		i++
	}
	e.appendLiteral(p[start:])
	e.patternPos = len(p)
}

func (e *Entry) appendLiteral(s string) {
	if s == "" || !e.canAppend() {
		return
	}
	if err := e.slot.Payload.AppendString(s); err != nil {
		e.truncate()
	}
}

func (e *Entry) fail(err error) {
	if e.misuse == nil {
		e.misuse = err
	}
}

// publishMisuse replaces the payload with an error record describing the
// template misuse; the application call never fails
func (e *Entry) publishMisuse() {
	payload := e.slot.Payload
	payload.Reset()
	e.slot.Truncated = false
	e.slot.Level = base.ErrorLevel
	_ = payload.AppendString("pattern misuse: ")
	if err := payload.AppendString(e.misuse.Error()); err != nil {
		e.slot.Truncated = true
	}
	e.svc.metrics.PatternErrors.Inc()
	e.active = false
	e.svc.publishEntry(e)
}
