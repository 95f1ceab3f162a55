package appender

import (
	"io"
	"os"
	"sync"

	"github.com/relex/ringlog/base"
)

// consoleSink writes rendered records to standard output (or any writer in
// tests). Closing is a no-op: the process owns stdout.
type consoleSink struct {
	mutex  sync.Mutex
	writer io.Writer
}

// NewConsoleSink creates a sink on standard output
func NewConsoleSink() base.Sink {
	return NewWriterSink(os.Stdout)
}

// NewWriterSink creates a console-like sink on any writer, e.g. a buffer in
// tests
func NewWriterSink(writer io.Writer) base.Sink {
	return &consoleSink{writer: writer}
}

func (s *consoleSink) Write(p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.writer.Write(p)
}

func (s *consoleSink) Flush() error {
	return nil
}

func (s *consoleSink) Close() error {
	return nil
}
