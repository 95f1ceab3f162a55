package ring

import (
	"fmt"
	"runtime"
	"time"

	"github.com/relex/ringlog/defs"
)

// WaitStrategy is the blocking discipline by which the consumer awaits the
// next published sequence, and the backoff producers use on a full ring
type WaitStrategy interface {
	// WaitFor blocks until sequence seq is published, returning the highest
	// contiguous published sequence (>= seq, publications may have advanced
	// further); fails with ErrShutdown once the sequencer is halted
	WaitFor(seq int64, sequencer Sequencer) (int64, error)

	// SignalAllWhenBlocking wakes a parked consumer; no-op for spinning strategies
	SignalAllWhenBlocking()

	// Backoff is the producer-side backpressure hook, called with increasing
	// iteration counts while the ring is full
	Backoff(iteration int)
}

// Wait strategy names accepted in configuration
const (
	WaitBusySpin = "busy-spin"
	WaitYielding = "yielding"
	WaitSleeping = "sleeping"
	WaitBlocking = "blocking"
)

// WaitStrategyNames lists the accepted names for validation messages
var WaitStrategyNames = []string{WaitBusySpin, WaitYielding, WaitSleeping, WaitBlocking}

// NewWaitStrategy creates a wait strategy by configured name; awaitTimeout
// bounds how long blocking and sleeping strategies park at a time
func NewWaitStrategy(name string, awaitTimeout time.Duration) (WaitStrategy, error) {
	if awaitTimeout <= 0 {
		awaitTimeout = defs.DefaultAwaitTimeout
	}
	switch name {
	case WaitBusySpin:
		return &busySpinStrategy{}, nil
	case WaitYielding:
		return &yieldingStrategy{}, nil
	case WaitSleeping:
		return &sleepingStrategy{maxInterval: awaitTimeout}, nil
	case WaitBlocking:
		return newBlockingStrategy(awaitTimeout), nil
	default:
		return nil, fmt.Errorf("unknown wait strategy '%s'", name)
	}
}

// busySpinStrategy spins tight on the published frontier; lowest latency on a
// dedicated core
type busySpinStrategy struct{}

func (w *busySpinStrategy) WaitFor(seq int64, sequencer Sequencer) (int64, error) {
	for {
		if available := sequencer.PublishedTo(seq); available >= seq {
			return available, nil
		}
		if sequencer.Halted() {
			return 0, ErrShutdown
		}
	}
}

func (w *busySpinStrategy) SignalAllWhenBlocking() {}

func (w *busySpinStrategy) Backoff(iteration int) {}

// yieldingStrategy spins a bounded number of iterations, then yields the
// scheduler on every further round
type yieldingStrategy struct{}

func (w *yieldingStrategy) WaitFor(seq int64, sequencer Sequencer) (int64, error) {
	for iteration := 0; ; iteration++ {
		if available := sequencer.PublishedTo(seq); available >= seq {
			return available, nil
		}
		if sequencer.Halted() {
			return 0, ErrShutdown
		}
		if iteration >= defs.YieldSpinLimit {
			runtime.Gosched()
		}
	}
}

func (w *yieldingStrategy) SignalAllWhenBlocking() {}

func (w *yieldingStrategy) Backoff(iteration int) {
	if iteration >= defs.ClaimSpinLimit {
		runtime.Gosched()
	}
}

// sleepingStrategy spins, then yields, then sleeps in exponentially increasing
// intervals capped by the await timeout
type sleepingStrategy struct {
	maxInterval time.Duration
}

func (w *sleepingStrategy) WaitFor(seq int64, sequencer Sequencer) (int64, error) {
	interval := defs.MinSleepInterval
	for iteration := 0; ; iteration++ {
		if available := sequencer.PublishedTo(seq); available >= seq {
			return available, nil
		}
		if sequencer.Halted() {
			return 0, ErrShutdown
		}
		switch {
		case iteration < defs.YieldSpinLimit:
			// spin
		case iteration < defs.SleepSpinLimit:
			runtime.Gosched()
		default:
			time.Sleep(interval)
			if interval < w.maxInterval {
				interval *= 2
				if interval > w.maxInterval {
					interval = w.maxInterval
				}
			}
		}
	}
}

func (w *sleepingStrategy) SignalAllWhenBlocking() {}

func (w *sleepingStrategy) Backoff(iteration int) {
	switch {
	case iteration < defs.ClaimSpinLimit:
		// spin
	case iteration < defs.SleepSpinLimit:
		runtime.Gosched()
	default:
		time.Sleep(defs.MinSleepInterval)
	}
}

// blockingStrategy parks the consumer on a notification channel signalled at
// publish; periodic self-wake bounds the park time so the halt flag is
// observed even if a signal is missed
type blockingStrategy struct {
	notify  chan struct{}
	timeout time.Duration
	timer   *time.Timer
}

func newBlockingStrategy(timeout time.Duration) *blockingStrategy {
	timer := time.NewTimer(timeout)
	if !timer.Stop() {
		<-timer.C
	}
	return &blockingStrategy{
		notify:  make(chan struct{}, 1),
		timeout: timeout,
		timer:   timer,
	}
}

func (w *blockingStrategy) WaitFor(seq int64, sequencer Sequencer) (int64, error) {
	for {
		if available := sequencer.PublishedTo(seq); available >= seq {
			return available, nil
		}
		if sequencer.Halted() {
			return 0, ErrShutdown
		}
		w.timer.Reset(w.timeout)
		select {
		case <-w.notify:
			if !w.timer.Stop() {
				<-w.timer.C
			}
		case <-w.timer.C:
		}
	}
}

func (w *blockingStrategy) SignalAllWhenBlocking() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *blockingStrategy) Backoff(iteration int) {
	if iteration >= defs.ClaimSpinLimit {
		runtime.Gosched()
	}
}
