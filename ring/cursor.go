// Package ring implements the lock-free producer/consumer ring that decouples
// logging threads from I/O: sequence claiming and publication, pluggable wait
// strategies, multi-producer arbitration with per-cell availability markers,
// and the dispatcher pumping published slots to a consumer.
package ring

import (
	"errors"
	"sync/atomic"
)

// InitialSequence is the value of all cursors and availability markers before
// the first claim
const InitialSequence int64 = -1

// ErrShutdown is returned by Claim and WaitFor once the ring is halted
var ErrShutdown = errors.New("ring: shutting down")

// ErrWouldBlock is returned by TryClaim when the ring is full
var ErrWouldBlock = errors.New("ring: insufficient capacity")

// Cursor is an atomic sequence counter padded to its own cache line, so the
// claim, publish and consumer cursors never false-share
type Cursor struct {
	_     [7]int64
	value int64
	_     [7]int64
}

// NewCursor creates a cursor at InitialSequence
func NewCursor() *Cursor {
	return &Cursor{value: InitialSequence}
}

// Get loads the cursor value with acquire semantics
func (c *Cursor) Get() int64 {
	return atomic.LoadInt64(&c.value)
}

// Set stores the cursor value with release semantics
func (c *Cursor) Set(value int64) {
	atomic.StoreInt64(&c.value, value)
}

// CompareAndSwap advances the cursor if it still holds old
func (c *Cursor) CompareAndSwap(old int64, new int64) bool {
	return atomic.CompareAndSwapInt64(&c.value, old, new)
}
