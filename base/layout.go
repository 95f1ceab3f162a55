package base

import (
	"github.com/relex/ringlog/format"
)

// Layout renders one slot into the appender's output buffer: header bytes
// (timestamp, level, logger, origin) followed by the payload copy
//
// Implementations may not allocate on the steady path
type Layout interface {
	Render(slot *Slot, out *format.ByteBuffer) error
}
