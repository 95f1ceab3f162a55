package ring

import (
	"sync/atomic"

	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/util"
)

// MultiProducerSequencer arbitrates claims from any number of producer
// goroutines by CAS-advancing the claim cursor. Publication marks each claimed
// cell in a companion availability array; the consumer advances only across
// the contiguous available frontier, which hides out-of-order publication.
type MultiProducerSequencer struct {
	bufferSize int64
	mask       int64
	strategy   WaitStrategy
	halted     int32

	claim    *Cursor
	consumer *Cursor

	// available[i] holds the last sequence published into cell i, -1 before
	// the first lap
	available []int64
}

// NewMultiProducerSequencer creates a sequencer safe for concurrent producers
func NewMultiProducerSequencer(bufferSize int64, strategy WaitStrategy) *MultiProducerSequencer {
	if !util.IsPowerOfTwo(bufferSize) {
		logger.Panicf("ring buffer size must be a power of two, got %d", bufferSize)
	}
	available := make([]int64, bufferSize)
	for i := range available {
		available[i] = InitialSequence
	}
	return &MultiProducerSequencer{
		bufferSize: bufferSize,
		mask:       bufferSize - 1,
		strategy:   strategy,
		claim:      NewCursor(),
		consumer:   NewCursor(),
		available:  available,
	}
}

// Claim CAS-advances the claim cursor by n, spinning on the wait strategy's
// backoff while the ring is full
func (s *MultiProducerSequencer) Claim(n int64) (int64, error) {
	for iteration := 0; ; {
		if s.Halted() {
			return 0, ErrShutdown
		}
		current := s.claim.Get()
		next := current + n
		if next-s.bufferSize > s.consumer.Get() {
			iteration++
			s.strategy.Backoff(iteration)
			continue
		}
		if s.claim.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// TryClaim attempts one CAS advance or fails with ErrWouldBlock when full
func (s *MultiProducerSequencer) TryClaim(n int64) (int64, error) {
	for {
		if s.Halted() {
			return 0, ErrShutdown
		}
		current := s.claim.Get()
		next := current + n
		if next-s.bufferSize > s.consumer.Get() {
			return 0, ErrWouldBlock
		}
		if s.claim.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// Publish marks each claimed cell available and wakes a parked consumer
func (s *MultiProducerSequencer) Publish(lo int64, hi int64) {
	for seq := lo; seq <= hi; seq++ {
		atomic.StoreInt64(&s.available[seq&s.mask], seq)
	}
	s.strategy.SignalAllWhenBlocking()
}

// PublishedTo scans availability markers in ascending order from lower and
// returns the end of the contiguous published run
func (s *MultiProducerSequencer) PublishedTo(lower int64) int64 {
	claimed := s.claim.Get()
	for seq := lower; seq <= claimed; seq++ {
		marker := atomic.LoadInt64(&s.available[seq&s.mask])
		if marker != seq {
			if marker > seq {
				logger.Panicf("availability marker corrupted: cell %d holds %d while scanning %d",
					seq&s.mask, marker, seq)
			}
			return seq - 1
		}
	}
	return claimed
}

// MarkConsumed releases sequences up to seq back to producers
func (s *MultiProducerSequencer) MarkConsumed(seq int64) {
	s.consumer.Set(seq)
}

// ConsumedTo returns the highest released sequence
func (s *MultiProducerSequencer) ConsumedTo() int64 {
	return s.consumer.Get()
}

// Halt makes subsequent claims fail and wakes the consumer
func (s *MultiProducerSequencer) Halt() {
	atomic.StoreInt32(&s.halted, 1)
	s.strategy.SignalAllWhenBlocking()
}

// Halted reports whether Halt was called
func (s *MultiProducerSequencer) Halted() bool {
	return atomic.LoadInt32(&s.halted) != 0
}

// BufferSize returns the ring capacity in slots
func (s *MultiProducerSequencer) BufferSize() int64 {
	return s.bufferSize
}
