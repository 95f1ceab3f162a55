// Package appender implements the per-consumer pipeline draining record
// slots: level filtering, layout rendering into a reusable output buffer, and
// batched flushing to a sink. Sinks and layouts are composed by interface; a
// sink failure never halts the consumer.
package appender

import (
	"fmt"

	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/defs"
	"github.com/relex/ringlog/format"
	"github.com/relex/ringlog/util"
)

// Args is the parameters to create an Appender
type Args struct {
	Name                string
	Level               base.Level
	Layout              base.Layout
	Sink                base.Sink
	ImmediateFlush      bool
	BufferedIOThreshold int // buffered records that force a flush
	ErrorHandler        base.ErrorHandler
	Metrics             *base.Metrics
}

// Appender drains slots for one consumer: filter by level, render through the
// layout into the output buffer, flush to the sink under the batching policy
type Appender struct {
	name           string
	level          base.Level
	layout         base.Layout
	sink           base.Sink
	out            *format.ByteBuffer
	immediateFlush bool
	threshold      int
	batched        int
	errorHandler   base.ErrorHandler
	metrics        *base.Metrics
	closeSink      func() error
}

// New creates an Appender; the output buffer is sized to hold a full batch of
// typical records at the flush threshold
func New(args Args) *Appender {
	if args.ErrorHandler == nil {
		args.ErrorHandler = base.NewLogErrorHandler(logger.Root())
	}
	if args.Metrics == nil {
		args.Metrics = base.NewMetrics(args.Name)
	}
	threshold := util.MaxInt(args.BufferedIOThreshold, 1)
	return &Appender{
		name:           args.Name,
		level:          args.Level,
		layout:         args.Layout,
		sink:           args.Sink,
		out:            format.NewByteBuffer(threshold * defs.OutputBufferRecordEstimate),
		immediateFlush: args.ImmediateFlush,
		threshold:      threshold,
		errorHandler:   args.ErrorHandler,
		metrics:        args.Metrics,
		closeSink:      util.NewRunOnceError(args.Sink.Close),
	}
}

// Name returns the configured appender name
func (a *Appender) Name() string {
	return a.name
}

// Process renders one slot; called by the dispatcher for every sequence in a
// batch
func (a *Appender) Process(slot *base.Slot) {
	if !a.level.Enables(slot.Level) {
		return
	}
	mark := a.out.Mark()
	if err := a.layout.Render(slot, a.out); err != nil {
		// free the buffer and retry once; a record larger than the whole
		// output buffer is dropped
		a.out.Rewind(mark)
		a.Flush()
		if err := a.layout.Render(slot, a.out); err != nil {
			a.out.Reset()
			a.errorHandler.HandleError(a.name, fmt.Errorf("record of %d payload units dropped: %w", slot.PayloadLen(), err))
			return
		}
	}
	a.batched++
	if a.immediateFlush || a.batched >= a.threshold {
		a.Flush()
	}
}

// EndBatch flushes pending output after a drained batch
func (a *Appender) EndBatch() {
	a.Flush()
}

// Flush writes the output buffer to the sink and resets it. The buffer is
// reset even on failure so partial content is never re-emitted.
func (a *Appender) Flush() {
	a.batched = 0
	if a.out.Len() == 0 {
		return
	}
	n, err := a.sink.Write(a.out.Written())
	a.out.Reset()
	if err != nil {
		a.metrics.SinkErrors.Inc()
		a.errorHandler.HandleError(a.name, fmt.Errorf("sink write failed: %w", err))
		return
	}
	a.metrics.Flushes.Inc()
	a.metrics.BytesWritten.Add(uint64(n))
	if err := a.sink.Flush(); err != nil {
		a.metrics.SinkErrors.Inc()
		a.errorHandler.HandleError(a.name, fmt.Errorf("sink flush failed: %w", err))
	}
}

// Close flushes pending output and closes the sink exactly once
func (a *Appender) Close() {
	a.Flush()
	if err := a.closeSink(); err != nil {
		a.errorHandler.HandleError(a.name, fmt.Errorf("sink close failed: %w", err))
	}
}
