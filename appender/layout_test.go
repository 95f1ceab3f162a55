package appender

import (
	"testing"
	"time"

	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutHeader(t *testing.T) {
	slot := base.NewSlot(64, false, 32)
	slot.Begin(base.InfoLevel, 1600000000000, 1, "db", "worker-1") // 2020-09-13T12:26:40Z
	require.NoError(t, slot.Bytes.AppendString("hello"))

	out := format.NewByteBuffer(256)
	layout := NewDefaultLayout(time.UTC)
	require.NoError(t, layout.Render(slot, out))

	assert.Equal(t, "2020-09-13 12:26:40.000 INFO  db (worker-1) hello\n", out.String())
}

func TestDefaultLayoutMillisAndZone(t *testing.T) {
	zone := time.FixedZone("EEST", 3*3600)

	slot := base.NewSlot(64, false, 32)
	slot.Begin(base.ErrorLevel, 1600000000123, 2, "web", "req")
	require.NoError(t, slot.Bytes.AppendString("x"))

	out := format.NewByteBuffer(256)
	require.NoError(t, NewDefaultLayout(zone).Render(slot, out))

	assert.Equal(t, "2020-09-13 15:26:40.123 ERROR web (req) x\n", out.String())
}

func TestDefaultLayoutMultibytePayload(t *testing.T) {
	slot := base.NewSlot(64, true, 32)
	slot.Begin(base.WarnLevel, 1600000000000, 3, "jp", "main")
	require.NoError(t, slot.Chars.AppendString("日本語"))

	out := format.NewByteBuffer(256)
	require.NoError(t, NewDefaultLayout(time.UTC).Render(slot, out))

	assert.Equal(t, "2020-09-13 12:26:40.000 WARN  jp (main) 日本語\n", out.String())
}

func TestRawLayout(t *testing.T) {
	slot := base.NewSlot(64, false, 32)
	slot.Begin(base.InfoLevel, 0, 0, "any", "any")
	require.NoError(t, slot.Bytes.AppendString("payload only"))

	out := format.NewByteBuffer(64)
	require.NoError(t, RawLayout{}.Render(slot, out))
	assert.Equal(t, "payload only\n", out.String())
}

func TestDefaultLayoutOverflow(t *testing.T) {
	slot := base.NewSlot(64, false, 32)
	slot.Begin(base.InfoLevel, 1600000000000, 1, "db", "w")
	require.NoError(t, slot.Bytes.AppendString("payload"))

	out := format.NewByteBuffer(10)
	assert.ErrorIs(t, NewDefaultLayout(time.UTC).Render(slot, out), format.ErrBufferOverflow)
}
