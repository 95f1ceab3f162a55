package base

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotBeginResetsState(t *testing.T) {
	slot := NewSlot(32, false, 8)
	slot.Begin(InfoLevel, 1000, 7, "db", "worker")
	require.NoError(t, slot.Payload.AppendString("first"))
	slot.Truncated = true

	slot.Begin(ErrorLevel, 2000, 8, "web", "req")
	assert.Equal(t, ErrorLevel, slot.Level)
	assert.Equal(t, int64(2000), slot.TimestampMillis)
	assert.Equal(t, int32(8), slot.LoggerID)
	assert.Equal(t, "web", slot.LoggerName)
	assert.False(t, slot.Truncated)
	assert.Equal(t, 0, slot.PayloadLen())
	assert.Equal(t, "req", string(slot.Origin()))
}

func TestSlotOriginTruncated(t *testing.T) {
	slot := NewSlot(32, false, 8)
	slot.Begin(InfoLevel, 0, 0, "x", strings.Repeat("o", 20))
	assert.Equal(t, strings.Repeat("o", 8), string(slot.Origin()))
}

func TestSlotModes(t *testing.T) {
	byteSlot := NewSlot(16, false, 8)
	assert.NotNil(t, byteSlot.Bytes)
	assert.Nil(t, byteSlot.Chars)
	require.NoError(t, byteSlot.Payload.AppendInt(42))
	assert.Equal(t, "42", byteSlot.Bytes.String())

	charSlot := NewSlot(16, true, 8)
	assert.Nil(t, charSlot.Bytes)
	assert.NotNil(t, charSlot.Chars)
	require.NoError(t, charSlot.Payload.AppendString("日本"))
	assert.Equal(t, 2, charSlot.PayloadLen())
}
