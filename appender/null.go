package appender

import (
	"sync/atomic"

	"github.com/relex/ringlog/base"
)

// NullSink discards everything while counting bytes, for benchmarks
type NullSink struct {
	bytes int64
}

// NewNullSink creates a counting discard sink
func NewNullSink() *NullSink {
	return &NullSink{}
}

func (s *NullSink) Write(p []byte) (int, error) {
	atomic.AddInt64(&s.bytes, int64(len(p)))
	return len(p), nil
}

// Flush implements base.Sink
func (s *NullSink) Flush() error {
	return nil
}

// Close implements base.Sink
func (s *NullSink) Close() error {
	return nil
}

// BytesDiscarded returns the total bytes accepted so far
func (s *NullSink) BytesDiscarded() int64 {
	return atomic.LoadInt64(&s.bytes)
}

var _ base.Sink = (*NullSink)(nil)
