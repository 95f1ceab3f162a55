package appender

import (
	"fmt"
	"os"

	"github.com/relex/ringlog/base"
)

// fileSink appends rendered records to a single file; Flush syncs to disk
type fileSink struct {
	file *os.File
}

// NewFileSink opens or creates the file for appending
func NewFileSink(path string) (base.Sink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &fileSink{file}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

func (s *fileSink) Flush() error {
	return s.file.Sync()
}

func (s *fileSink) Close() error {
	return s.file.Close()
}
