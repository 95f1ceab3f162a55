package ring

import (
	"sync/atomic"

	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/util"
)

// Sequencer coordinates claim/publish of sequences on a power-of-two ring.
//
// Invariants: consumed <= published <= claimed, and claimed-consumed never
// exceeds the buffer size (the backpressure gate).
type Sequencer interface {
	// Claim reserves the next n sequences, blocking per the wait strategy's
	// backoff while the ring is full; fails with ErrShutdown once halted
	Claim(n int64) (int64, error)

	// TryClaim reserves the next n sequences or fails with ErrWouldBlock
	TryClaim(n int64) (int64, error)

	// Publish makes the claimed sequences lo..hi visible to the consumer
	Publish(lo int64, hi int64)

	// PublishedTo returns the highest sequence s >= lower-1 such that every
	// sequence in [lower, s] is published; gaps from unpublished claims in
	// multi-producer mode stop the scan
	PublishedTo(lower int64) int64

	// MarkConsumed releases every sequence up to seq back to producers
	MarkConsumed(seq int64)

	// ConsumedTo returns the highest released sequence
	ConsumedTo() int64

	// Halt makes all subsequent Claim and WaitFor calls fail with ErrShutdown
	// and wakes a parked consumer
	Halt()

	// Halted reports whether Halt was called
	Halted() bool

	// BufferSize returns the ring capacity in slots
	BufferSize() int64
}

// SingleProducerSequencer serves exactly one producer goroutine: claims need
// no arbitration and publication is a single release-store of the publish
// cursor
type SingleProducerSequencer struct {
	bufferSize int64
	strategy   WaitStrategy
	halted     int32

	claim    *Cursor
	publish  *Cursor
	consumer *Cursor

	// producer-local state, no synchronization by contract
	nextValue      int64
	cachedConsumed int64
}

// NewSingleProducerSequencer creates a sequencer for one producer goroutine
func NewSingleProducerSequencer(bufferSize int64, strategy WaitStrategy) *SingleProducerSequencer {
	if !util.IsPowerOfTwo(bufferSize) {
		logger.Panicf("ring buffer size must be a power of two, got %d", bufferSize)
	}
	return &SingleProducerSequencer{
		bufferSize:     bufferSize,
		strategy:       strategy,
		claim:          NewCursor(),
		publish:        NewCursor(),
		consumer:       NewCursor(),
		nextValue:      InitialSequence,
		cachedConsumed: InitialSequence,
	}
}

// Claim reserves the next n sequences for the single producer
func (s *SingleProducerSequencer) Claim(n int64) (int64, error) {
	if s.Halted() {
		return 0, ErrShutdown
	}
	next := s.nextValue + n
	wrap := next - s.bufferSize
	if wrap > s.cachedConsumed {
		for iteration := 0; ; iteration++ {
			if s.Halted() {
				return 0, ErrShutdown
			}
			consumed := s.consumer.Get()
			s.cachedConsumed = consumed
			if wrap <= consumed {
				break
			}
			s.strategy.Backoff(iteration)
		}
	}
	s.nextValue = next
	s.claim.Set(next)
	return next, nil
}

// TryClaim reserves the next n sequences or fails with ErrWouldBlock
func (s *SingleProducerSequencer) TryClaim(n int64) (int64, error) {
	if s.Halted() {
		return 0, ErrShutdown
	}
	next := s.nextValue + n
	if next-s.bufferSize > s.cachedConsumed {
		s.cachedConsumed = s.consumer.Get()
		if next-s.bufferSize > s.cachedConsumed {
			return 0, ErrWouldBlock
		}
	}
	s.nextValue = next
	s.claim.Set(next)
	return next, nil
}

// Publish stores the publish cursor and wakes a parked consumer
func (s *SingleProducerSequencer) Publish(lo int64, hi int64) {
	s.publish.Set(hi)
	s.strategy.SignalAllWhenBlocking()
}

// PublishedTo returns the publish cursor; a single producer leaves no gaps
func (s *SingleProducerSequencer) PublishedTo(lower int64) int64 {
	return s.publish.Get()
}

// MarkConsumed releases sequences up to seq back to the producer
func (s *SingleProducerSequencer) MarkConsumed(seq int64) {
	s.consumer.Set(seq)
}

// ConsumedTo returns the highest released sequence
func (s *SingleProducerSequencer) ConsumedTo() int64 {
	return s.consumer.Get()
}

// Halt makes subsequent claims fail and wakes the consumer
func (s *SingleProducerSequencer) Halt() {
	atomic.StoreInt32(&s.halted, 1)
	s.strategy.SignalAllWhenBlocking()
}

// Halted reports whether Halt was called
func (s *SingleProducerSequencer) Halted() bool {
	return atomic.LoadInt32(&s.halted) != 0
}

// BufferSize returns the ring capacity in slots
func (s *SingleProducerSequencer) BufferSize() int64 {
	return s.bufferSize
}
