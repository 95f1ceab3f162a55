package base

import (
	"github.com/relex/ringlog/format"
)

// Payload is the mode-independent view of a slot's buffer used by the record
// builder; both byte and character buffers satisfy it
type Payload interface {
	Reset()
	Len() int
	Cap() int
	Remaining() int
	Mark() int
	Rewind(mark int)
	AppendRune(r rune) error
	AppendString(s string) error
	AppendBytes(p []byte) error
	AppendInt64(v int64) error
	AppendInt32(v int32) error
	AppendInt(v int) error
	AppendInt8(v int8) error
	AppendBool(v bool) error
	AppendUintPad(u uint64, width int) error
	AppendFloat64(v float64) error
	AppendFloat64Digits(v float64, digits int) error
	String() string
}

// Slot is one record cell of the ring: severity, claim-time wall clock,
// logger identity, bounded origin name, and a fixed-capacity payload buffer
// in either single-byte or multi-byte mode.
//
// A slot is mutated by exactly one goroutine at a time; ownership hand-over
// happens only through sequence publication in the ring.
type Slot struct {
	Level           Level
	TimestampMillis int64
	LoggerID        int32
	LoggerName      string
	Truncated       bool

	// exactly one of Bytes/Chars is non-nil, fixed at ring construction;
	// Payload is the mode-independent view of the same buffer
	Bytes   *format.ByteBuffer
	Chars   *format.CharBuffer
	Payload Payload

	origin    []byte
	originLen int
}

// NewSlot creates a slot with a payload buffer of the given capacity
func NewSlot(payloadCapacity int, multibyte bool, maxOriginChars int) *Slot {
	slot := &Slot{
		origin: make([]byte, maxOriginChars),
	}
	if multibyte {
		slot.Chars = format.NewCharBuffer(payloadCapacity)
		slot.Payload = slot.Chars
	} else {
		slot.Bytes = format.NewByteBuffer(payloadCapacity)
		slot.Payload = slot.Bytes
	}
	return slot
}

// Begin resets the slot for a new record: payload cleared, metadata assigned
func (slot *Slot) Begin(level Level, timestampMillis int64, loggerID int32, loggerName string, origin string) {
	slot.Level = level
	slot.TimestampMillis = timestampMillis
	slot.LoggerID = loggerID
	slot.LoggerName = loggerName
	slot.Truncated = false
	slot.setOrigin(origin)
	slot.Payload.Reset()
}

// setOrigin copies the origin name, truncated to the slot's bound
func (slot *Slot) setOrigin(name string) {
	n := len(name)
	if n > len(slot.origin) {
		n = len(slot.origin)
	}
	copy(slot.origin, name[:n])
	slot.originLen = n
}

// Origin returns the bounded origin name (the producer name filling the
// thread-name role); the slice is only valid until the slot is reused
func (slot *Slot) Origin() []byte {
	return slot.origin[:slot.originLen]
}

// PayloadLen returns the number of payload units written
func (slot *Slot) PayloadLen() int {
	return slot.Payload.Len()
}
