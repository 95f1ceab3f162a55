package format

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integerSamples expands a few crucial seeds by every offset in one byte,
// covering all the two's-complement boundaries
func integerSamples() []int64 {
	seeds := []int64{
		math.MinInt64,
		math.MinInt32,
		math.MinInt16,
		math.MinInt8,
		-1,
		0,
		1,
		math.MaxInt8,
		math.MaxInt16,
		math.MaxInt32,
		math.MaxInt64,
	}
	samples := make([]int64, 0, len(seeds)*257)
	for _, seed := range seeds {
		samples = append(samples, seed)
		for i := int64(math.MinInt8); i <= math.MaxInt8; i++ {
			samples = append(samples, seed+i) // wrap-around near the extremes is fine, still a valid sample
		}
	}
	return samples
}

func TestAppendInt64RoundTrip(t *testing.T) {
	buf := NewByteBuffer(24)
	cbuf := NewCharBuffer(24)
	for _, v := range integerSamples() {
		buf.Reset()
		require.NoError(t, buf.AppendInt64(v))
		parsed, err := strconv.ParseInt(buf.String(), 10, 64)
		require.NoError(t, err, "value %d formatted as %q", v, buf.String())
		assert.Equal(t, v, parsed)

		cbuf.Reset()
		require.NoError(t, cbuf.AppendInt64(v))
		assert.Equal(t, buf.String(), cbuf.String())
	}
}

func TestAppendInt32RoundTrip(t *testing.T) {
	buf := NewByteBuffer(16)
	for _, v := range integerSamples() {
		v32 := int32(v)
		buf.Reset()
		require.NoError(t, buf.AppendInt32(v32))
		parsed, err := strconv.ParseInt(buf.String(), 10, 32)
		require.NoError(t, err)
		assert.Equal(t, v32, int32(parsed))
	}
}

func TestNumberOfDigitsAgreesWithFormat(t *testing.T) {
	for _, v := range integerSamples() {
		assert.Equal(t, len(strconv.FormatInt(v, 10)), NumberOfDigits(v), "value %d", v)
		v32 := int32(v)
		assert.Equal(t, len(strconv.FormatInt(int64(v32), 10)), NumberOfDigits(int64(v32)), "value %d", v32)
	}
}

func TestAppendInt8RoundTrip(t *testing.T) {
	buf := NewByteBuffer(8)
	for i := math.MinInt8; i <= math.MaxInt8; i++ {
		buf.Reset()
		require.NoError(t, buf.AppendInt8(int8(i)))
		parsed, err := strconv.ParseInt(buf.String(), 10, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(i), parsed)
	}
}

func TestAppendRuneASCII(t *testing.T) {
	buf := NewByteBuffer(4)
	for c := rune(0); c <= 127; c++ {
		buf.Reset()
		require.NoError(t, buf.AppendRune(c))
		assert.Equal(t, []byte{byte(c)}, []byte(buf.Written()))
	}
}

func TestAppendRuneMultibyte(t *testing.T) {
	buf := NewCharBuffer(4)
	require.NoError(t, buf.AppendRune('日'))
	require.NoError(t, buf.AppendRune('x'))
	assert.Equal(t, "日x", buf.String())
}

func TestAppendBool(t *testing.T) {
	buf := NewByteBuffer(16)
	require.NoError(t, buf.AppendBool(true))
	require.NoError(t, buf.AppendRune(' '))
	require.NoError(t, buf.AppendBool(false))
	assert.Equal(t, "true false", buf.String())
}

func TestAppendOverflowKeepsPosition(t *testing.T) {
	buf := NewByteBuffer(4)
	require.NoError(t, buf.AppendString("ab"))

	assert.ErrorIs(t, buf.AppendInt64(12345), ErrBufferOverflow)
	assert.Equal(t, 2, buf.Len())
	assert.ErrorIs(t, buf.AppendString("xyz"), ErrBufferOverflow)
	assert.Equal(t, 2, buf.Len())
	assert.ErrorIs(t, buf.AppendFloat64(1.5), ErrBufferOverflow)
	assert.Equal(t, "ab", buf.String())

	require.NoError(t, buf.AppendInt64(99))
	assert.Equal(t, "ab99", buf.String())
}

func TestAppendRuneUTF8(t *testing.T) {
	buf := NewByteBuffer(8)
	require.NoError(t, AppendRuneUTF8(buf, 'a'))
	require.NoError(t, AppendRuneUTF8(buf, 'ä'))
	require.NoError(t, AppendRuneUTF8(buf, '日'))
	assert.Equal(t, "aä日", buf.String())
	assert.ErrorIs(t, AppendRuneUTF8(buf, '日'), ErrBufferOverflow)
}

func TestBufferMarkRewind(t *testing.T) {
	buf := NewByteBuffer(16)
	require.NoError(t, buf.AppendString("abc"))
	mark := buf.Mark()
	require.NoError(t, buf.AppendString("def"))
	buf.Rewind(mark)
	assert.Equal(t, "abc", buf.String())
	assert.Equal(t, 13, buf.Remaining())
}
