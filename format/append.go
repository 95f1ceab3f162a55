package format

// POW10 holds 10^k for k in [0, 18] as 64-bit integers, shared by digit
// counting and scaled fraction extraction. Immutable after init.
var POW10 = [19]int64{
	1,
	10,
	100,
	1000,
	10000,
	100000,
	1000000,
	10000000,
	100000000,
	1000000000,
	10000000000,
	100000000000,
	1000000000000,
	10000000000000,
	100000000000000,
	1000000000000000,
	10000000000000000,
	100000000000000000,
	1000000000000000000,
}

// NumberOfDigits returns the number of characters AppendInt64 would write for
// v, including the leading '-' for negatives. Agrees with the decimal string
// length for every 32- and 64-bit signed integer.
func NumberOfDigits(v int64) int {
	if v >= 0 {
		return decimalDigits(uint64(v))
	}
	return 1 + decimalDigits(uint64(0)-uint64(v))
}

// decimalDigits counts decimal digits of u; u may exceed POW10[18] (the
// magnitude of the minimum signed 64-bit value does)
func decimalDigits(u uint64) int {
	d := 1
	for d < 19 && u >= uint64(POW10[d]) {
		d++
	}
	return d
}

// AppendInt64 writes the shortest decimal representation of v, with a leading
// '-' for negatives. The minimum signed value is handled via unsigned negation.
func (b *Buffer[U]) AppendInt64(v int64) error {
	n := NumberOfDigits(v)
	if b.pos+n > len(b.data) {
		return ErrBufferOverflow
	}
	u := uint64(v)
	if v < 0 {
		b.data[b.pos] = U('-')
		u = -u
	}
	i := b.pos + n
	for {
		i--
		b.data[i] = U('0' + byte(u%10))
		u /= 10
		if u == 0 {
			break
		}
	}
	b.pos += n
	return nil
}

// AppendInt32 writes the decimal representation of a 32-bit signed integer
func (b *Buffer[U]) AppendInt32(v int32) error {
	return b.AppendInt64(int64(v))
}

// AppendInt writes the decimal representation of a native int
func (b *Buffer[U]) AppendInt(v int) error {
	return b.AppendInt64(int64(v))
}

// AppendInt8 writes the signed decimal of a byte value (-128..127)
func (b *Buffer[U]) AppendInt8(v int8) error {
	return b.AppendInt64(int64(v))
}

// AppendBool writes "true" or "false"
func (b *Buffer[U]) AppendBool(v bool) error {
	if v {
		return b.AppendString("true")
	}
	return b.AppendString("false")
}

// AppendUintPad writes u zero-padded to the given width; u must fit in width
// digits
func (b *Buffer[U]) AppendUintPad(u uint64, width int) error {
	if b.pos+width > len(b.data) {
		return ErrBufferOverflow
	}
	for i := b.pos + width - 1; i >= b.pos; i-- {
		b.data[i] = U('0' + byte(u%10))
		u /= 10
	}
	b.pos += width
	return nil
}

// appendUint writes u without sign or padding
func (b *Buffer[U]) appendUint(u uint64) error {
	return b.AppendUintPad(u, decimalDigits(u))
}
