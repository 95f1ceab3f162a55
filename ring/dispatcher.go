package ring

import (
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/defs"
)

// Dispatcher binds a sequencer, a wait strategy and one consumer goroutine:
// it pumps published sequences to the record callback in batches and releases
// consumed slots back to producers.
//
// The dispatcher is slot-agnostic; the owner maps sequence numbers to slots
// in the callbacks.
type Dispatcher struct {
	logger     logger.Logger
	sequencer  Sequencer
	strategy   WaitStrategy
	onRecord   func(seq int64)
	onBatchEnd func()
	stopped    *channels.SignalAwaitable
	next       int64
}

// NewDispatcher creates a dispatcher; onRecord receives each published
// sequence exactly once in frontier order, onBatchEnd runs after every
// drained batch
func NewDispatcher(parentLogger logger.Logger, sequencer Sequencer, strategy WaitStrategy,
	onRecord func(seq int64), onBatchEnd func()) *Dispatcher {

	return &Dispatcher{
		logger:     parentLogger.WithField(defs.LabelComponent, "RingDispatcher"),
		sequencer:  sequencer,
		strategy:   strategy,
		onRecord:   onRecord,
		onBatchEnd: onBatchEnd,
		stopped:    channels.NewSignalAwaitable(),
		next:       InitialSequence + 1,
	}
}

// Start launches the consumer goroutine
func (d *Dispatcher) Start() {
	go d.run()
}

// Stopped returns an Awaitable signalled after the final drain completes
func (d *Dispatcher) Stopped() channels.Awaitable {
	return d.stopped
}

// Halt initiates shutdown: producers start failing with ErrShutdown and the
// consumer performs a final drain of everything already published
func (d *Dispatcher) Halt() {
	d.sequencer.Halt()
}

func (d *Dispatcher) run() {
	defer d.stopped.Signal()
	d.logger.Info("start consumer loop")
	for {
		available, err := d.strategy.WaitFor(d.next, d.sequencer)
		if err != nil {
			break // ErrShutdown
		}
		d.consumeBatch(available)
	}
	// final drain: everything the publish frontier already reports
	d.consumeBatch(d.sequencer.PublishedTo(d.next))
	d.logger.Info("end consumer loop")
}

func (d *Dispatcher) consumeBatch(available int64) {
	for seq := d.next; seq <= available; seq++ {
		d.onRecord(seq)
	}
	d.onBatchEnd()
	if available >= d.next {
		d.sequencer.MarkConsumed(available)
		d.next = available + 1
	}
}
