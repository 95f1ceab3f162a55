package appender

import (
	"time"

	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/format"
)

// defaultLayout renders "2006-01-02 15:04:05.000 LEVEL name (origin) payload\n"
// in a fixed time zone. Allocation-free: the timestamp is decomposed with
// plain integer appends, never time formatting APIs.
type defaultLayout struct {
	location *time.Location
}

// NewDefaultLayout creates the built-in layout rendering timestamps in the
// given time zone
func NewDefaultLayout(location *time.Location) base.Layout {
	if location == nil {
		location = time.Local
	}
	return &defaultLayout{location}
}

func (l *defaultLayout) Render(slot *base.Slot, out *format.ByteBuffer) error {
	if err := l.renderTimestamp(slot.TimestampMillis, out); err != nil {
		return err
	}
	if err := out.AppendRune(' '); err != nil {
		return err
	}
	if err := out.AppendBytes(slot.Level.Mark()); err != nil {
		return err
	}
	if err := out.AppendRune(' '); err != nil {
		return err
	}
	if err := out.AppendString(slot.LoggerName); err != nil {
		return err
	}
	if err := out.AppendString(" ("); err != nil {
		return err
	}
	if err := out.AppendBytes(slot.Origin()); err != nil {
		return err
	}
	if err := out.AppendString(") "); err != nil {
		return err
	}
	if err := copyPayload(slot, out); err != nil {
		return err
	}
	return out.AppendRune('\n')
}

func (l *defaultLayout) renderTimestamp(millis int64, out *format.ByteBuffer) error {
	t := time.UnixMilli(millis).In(l.location)
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	if err := out.AppendUintPad(uint64(year), 4); err != nil {
		return err
	}
	if err := out.AppendRune('-'); err != nil {
		return err
	}
	if err := out.AppendUintPad(uint64(month), 2); err != nil {
		return err
	}
	if err := out.AppendRune('-'); err != nil {
		return err
	}
	if err := out.AppendUintPad(uint64(day), 2); err != nil {
		return err
	}
	if err := out.AppendRune(' '); err != nil {
		return err
	}
	if err := out.AppendUintPad(uint64(hour), 2); err != nil {
		return err
	}
	if err := out.AppendRune(':'); err != nil {
		return err
	}
	if err := out.AppendUintPad(uint64(minute), 2); err != nil {
		return err
	}
	if err := out.AppendRune(':'); err != nil {
		return err
	}
	if err := out.AppendUintPad(uint64(second), 2); err != nil {
		return err
	}
	if err := out.AppendRune('.'); err != nil {
		return err
	}
	return out.AppendUintPad(uint64(t.Nanosecond()/1e6), 3)
}

// copyPayload moves slot payload units into the byte-oriented output buffer,
// encoding runes as UTF-8 in multi-byte mode
func copyPayload(slot *base.Slot, out *format.ByteBuffer) error {
	if slot.Bytes != nil {
		return out.AppendBytes(slot.Bytes.Written())
	}
	for _, r := range slot.Chars.Written() {
		if err := format.AppendRuneUTF8(out, r); err != nil {
			return err
		}
	}
	return nil
}

// RawLayout writes the payload and a newline without any header, for
// payload-exact output in tests and piping scenarios
type RawLayout struct{}

func (RawLayout) Render(slot *base.Slot, out *format.ByteBuffer) error {
	if err := copyPayload(slot, out); err != nil {
		return err
	}
	return out.AppendRune('\n')
}
