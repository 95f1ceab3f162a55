// Package format implements garbage-free conversion of Go primitives into
// fixed-capacity byte or character buffers.
//
// All appends either succeed completely or fail with ErrBufferOverflow and
// leave the write position at the pre-call value. Nothing here allocates on
// the steady path.
package format

import (
	"errors"
	"unicode/utf8"
)

// ErrBufferOverflow is returned when an append does not fit in the remaining capacity
//
// The buffer's write position is left unchanged (pre-call position)
var ErrBufferOverflow = errors.New("format: buffer overflow")

// Unit is the element type of a payload buffer: bytes in single-byte encoding
// mode, runes in multi-byte mode
type Unit interface {
	~byte | ~rune
}

// Buffer is a fixed-capacity append-only buffer of bytes or runes with an
// explicit write position. A Buffer is owned by exactly one goroutine at a
// time; ownership hand-over is the ring's concern.
type Buffer[U Unit] struct {
	data []U
	pos  int
}

// ByteBuffer is a Buffer of raw bytes (single-byte encoding mode)
type ByteBuffer = Buffer[byte]

// CharBuffer is a Buffer of runes (multi-byte mode)
type CharBuffer = Buffer[rune]

// NewByteBuffer creates a ByteBuffer of fixed capacity
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{data: make([]byte, capacity)}
}

// NewCharBuffer creates a CharBuffer of fixed capacity
func NewCharBuffer(capacity int) *CharBuffer {
	return &CharBuffer{data: make([]rune, capacity)}
}

// Len returns the number of units written so far
func (b *Buffer[U]) Len() int {
	return b.pos
}

// Cap returns the fixed capacity in units
func (b *Buffer[U]) Cap() int {
	return len(b.data)
}

// Remaining returns the free capacity in units
func (b *Buffer[U]) Remaining() int {
	return len(b.data) - b.pos
}

// Reset moves the write position back to the start
func (b *Buffer[U]) Reset() {
	b.pos = 0
}

// Mark returns the current write position, to be passed to Rewind
func (b *Buffer[U]) Mark() int {
	return b.pos
}

// Rewind moves the write position back to an earlier Mark
func (b *Buffer[U]) Rewind(mark int) {
	if mark >= 0 && mark <= b.pos {
		b.pos = mark
	}
}

// Written returns the filled portion of the buffer
//
// The slice aliases the buffer contents and is only valid until the next Reset
func (b *Buffer[U]) Written() []U {
	return b.data[:b.pos]
}

// String renders the filled portion as a Go string. Allocates; for tests and
// error reporting only, never on the logging path.
func (b *Buffer[U]) String() string {
	switch data := any(b.data[:b.pos]).(type) {
	case []byte:
		return string(data)
	case []rune:
		return string(data)
	default:
		return ""
	}
}

// AppendRune writes one character.
//
// In byte mode only code points in [0, 127] are supported; anything else is
// truncated to its lowest byte (caller responsibility, see the slot payload
// contract). In rune mode any code point is written as one unit.
func (b *Buffer[U]) AppendRune(r rune) error {
	if b.pos >= len(b.data) {
		return ErrBufferOverflow
	}
	b.data[b.pos] = U(r)
	b.pos++
	return nil
}

// AppendString writes a string: verbatim bytes in byte mode, decoded runes in
// rune mode
func (b *Buffer[U]) AppendString(s string) error {
	switch data := any(b.data).(type) {
	case []byte:
		if b.pos+len(s) > len(data) {
			return ErrBufferOverflow
		}
		b.pos += copy(data[b.pos:], s)
	case []rune:
		if b.pos+utf8.RuneCountInString(s) > len(data) {
			return ErrBufferOverflow
		}
		for _, r := range s {
			data[b.pos] = r
			b.pos++
		}
	}
	return nil
}

// AppendBytes writes raw bytes: verbatim in byte mode, one unit per byte in
// rune mode (callers pass ASCII there)
func (b *Buffer[U]) AppendBytes(p []byte) error {
	if b.pos+len(p) > len(b.data) {
		return ErrBufferOverflow
	}
	switch data := any(b.data).(type) {
	case []byte:
		copy(data[b.pos:], p)
	case []rune:
		for i, c := range p {
			data[b.pos+i] = rune(c)
		}
	}
	b.pos += len(p)
	return nil
}

// AppendRuneUTF8 encodes one rune as UTF-8 bytes into a ByteBuffer, used when
// draining multi-byte payloads into a byte-oriented output buffer
func AppendRuneUTF8(b *ByteBuffer, r rune) error {
	size := utf8.RuneLen(r)
	if size < 0 {
		size = utf8.RuneLen(utf8.RuneError)
	}
	if b.pos+size > len(b.data) {
		return ErrBufferOverflow
	}
	b.pos += utf8.EncodeRune(b.data[b.pos:], r)
	return nil
}
