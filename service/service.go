// Package service assembles the logger service: the slot array bound to a
// sequencer and dispatcher, the appender pipeline consuming it, and the named
// logger registry producers log through.
//
// Everything is allocated once at construction; the logging path itself is
// allocation-free.
package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/appender"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/config"
	"github.com/relex/ringlog/defs"
	"github.com/relex/ringlog/ring"
)

// Options carries the injectable collaborators; zero fields get production
// defaults
type Options struct {
	Clock        base.Clock            // deterministic clocks in tests
	ErrorHandler base.ErrorHandler     // fallback error handler
	Appenders    []*appender.Appender  // overrides config-built appenders when non-empty
}

// Service owns one ring of record slots, one consumer goroutine, and the
// appender pipeline. Producers obtain Loggers and log through them; Stop
// drains published records before releasing the sinks.
type Service struct {
	logger       logger.Logger
	cfg          config.Config
	clock        base.Clock
	errorHandler base.ErrorHandler
	metrics      *base.Metrics

	sequencer  ring.Sequencer
	dispatcher *ring.Dispatcher
	entries    []Entry
	mask       int64

	appenders []*appender.Appender
	overrides []config.CompiledLevelOverride

	loggers      *xsync.MapOf[string, *Logger]
	nextLoggerID int32
	stopping     int32
}

// New builds a stopped service from validated configuration; call Start to
// launch the consumer
func New(parentLogger logger.Logger, cfg config.Config, opts Options) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slogger := parentLogger.WithField(defs.LabelName, cfg.Name)

	clock := opts.Clock
	if clock == nil {
		clock = base.SystemClock
	}
	errorHandler := opts.ErrorHandler
	if errorHandler == nil {
		errorHandler = base.NewLogErrorHandler(slogger)
	}
	metrics := base.NewMetrics(cfg.Name)

	strategy, err := ring.NewWaitStrategy(cfg.WaitStrategy, cfg.AwaitTimeout())
	if err != nil {
		return nil, err
	}
	var sequencer ring.Sequencer
	if cfg.SingleProducer {
		sequencer = ring.NewSingleProducerSequencer(int64(cfg.RingSize), strategy)
	} else {
		sequencer = ring.NewMultiProducerSequencer(int64(cfg.RingSize), strategy)
	}

	appenders := opts.Appenders
	if len(appenders) == 0 {
		appenders, err = buildAppenders(slogger, cfg, errorHandler, metrics)
		if err != nil {
			return nil, err
		}
	}

	svc := &Service{
		logger:       slogger,
		cfg:          cfg,
		clock:        clock,
		errorHandler: errorHandler,
		metrics:      metrics,
		sequencer:    sequencer,
		entries:      make([]Entry, cfg.RingSize),
		mask:         int64(cfg.RingSize) - 1,
		appenders:    appenders,
		overrides:    cfg.CompileLevelOverrides(),
		loggers:      xsync.NewMapOf[*Logger](),
	}
	for i := range svc.entries {
		svc.entries[i].svc = svc
		svc.entries[i].slot = base.NewSlot(int(cfg.BufferSize.Bytes()), cfg.Multibyte, defs.MaxOriginChars)
	}
	svc.dispatcher = ring.NewDispatcher(slogger, sequencer, strategy, svc.consumeRecord, svc.endBatch)
	return svc, nil
}

// Start launches the consumer goroutine
func (svc *Service) Start() {
	svc.dispatcher.Start()
}

// Stop halts producers, waits up to timeout for the final drain of all
// published records, then closes the appender sinks. On expiry the unflushed
// tail is discarded and reported to the fallback error handler.
func (svc *Service) Stop(timeout time.Duration) error {
	if !atomic.CompareAndSwapInt32(&svc.stopping, 0, 1) {
		return nil
	}
	if timeout <= 0 {
		timeout = defs.ServiceStopTimeout
	}
	svc.dispatcher.Halt()
	if !svc.dispatcher.Stopped().Wait(timeout) {
		err := fmt.Errorf("final drain timed out after %s: unflushed tail discarded", timeout)
		svc.errorHandler.HandleError("service", err)
		return err
	}
	for _, app := range svc.appenders {
		app.Close()
	}
	svc.logger.Info("stopped")
	return nil
}

// Logger returns the shared named logger, creating it on first use with the
// level resolved from configuration overrides
func (svc *Service) Logger(name string) *Logger {
	l, _ := svc.loggers.LoadOrCompute(name, func() *Logger {
		return &Logger{
			svc:    svc,
			name:   name,
			id:     atomic.AddInt32(&svc.nextLoggerID, 1) - 1,
			level:  config.ResolveLevel(svc.overrides, svc.cfg.LogLevel, name),
			origin: "main",
		}
	})
	return l
}

// Metrics exposes the service counters, mainly for tests and the benchmark
// command
func (svc *Service) Metrics() *base.Metrics {
	return svc.metrics
}

// PublishedTo reports the current publish frontier, for tests and diagnostics
func (svc *Service) PublishedTo() int64 {
	return svc.sequencer.PublishedTo(svc.sequencer.ConsumedTo() + 1)
}

func (svc *Service) claimEntry(level base.Level, l *Logger) *Entry {
	seq, err := svc.sequencer.Claim(1)
	if err != nil {
		// shutting down: drop silently, never throw into the hot path
		svc.metrics.RecordsDropped.Inc()
		return muted
	}
	entry := &svc.entries[seq&svc.mask]
	entry.begin(seq, level, l)
	return entry
}

func (svc *Service) tryClaimEntry(level base.Level, l *Logger) (*Entry, error) {
	seq, err := svc.sequencer.TryClaim(1)
	if err != nil {
		svc.metrics.RecordsDropped.Inc()
		return muted, err
	}
	entry := &svc.entries[seq&svc.mask]
	entry.begin(seq, level, l)
	return entry, nil
}

func (svc *Service) publishEntry(entry *Entry) {
	svc.sequencer.Publish(entry.seq, entry.seq)
	svc.metrics.RecordsPublished.Inc()
}

// consumeRecord runs on the consumer goroutine for every published sequence
func (svc *Service) consumeRecord(seq int64) {
	slot := svc.entries[seq&svc.mask].slot
	for _, app := range svc.appenders {
		app.Process(slot)
	}
}

// endBatch runs on the consumer goroutine after each drained batch
func (svc *Service) endBatch() {
	for _, app := range svc.appenders {
		app.EndBatch()
	}
}
