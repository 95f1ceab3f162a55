package appender

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/gotils/logger"
	"github.com/relex/ringlog/base"
	"github.com/relex/ringlog/defs"
)

// RotatingFileArgs is the parameters to create a rotating file sink
type RotatingFileArgs struct {
	Path       string
	MaxBytes   int64 // rotation threshold of the active file
	MaxBackups int   // rotated files to keep; 0 keeps one
	Compress   bool  // gzip rotated files
}

// rotatingFileSink appends to the active file and rotates it out when it
// reaches MaxBytes: backups shift to path.1, path.2, ... (".gz" when
// compressing) and the oldest beyond MaxBackups is removed
type rotatingFileSink struct {
	logger  logger.Logger
	args    RotatingFileArgs
	file    *os.File
	written int64
}

// NewRotatingFileSink opens the active file and prepares rotation
func NewRotatingFileSink(parentLogger logger.Logger, args RotatingFileArgs) (base.Sink, error) {
	if args.MaxBackups < 1 {
		args.MaxBackups = 1
	}
	file, size, err := openAppend(args.Path)
	if err != nil {
		return nil, err
	}
	return &rotatingFileSink{
		logger:  parentLogger.WithField(defs.LabelComponent, "RotatingFileSink"),
		args:    args,
		file:    file,
		written: size,
	}, nil
}

func (s *rotatingFileSink) Write(p []byte) (int, error) {
	if s.written > 0 && s.written+int64(len(p)) > s.args.MaxBytes {
		if err := s.rotate(); err != nil {
			// degrade to the active file rather than lose records
			s.logger.Errorf("rotation failed, continuing on active file: %s", err.Error())
		}
	}
	n, err := s.file.Write(p)
	s.written += int64(n)
	return n, err
}

func (s *rotatingFileSink) Flush() error {
	return s.file.Sync()
}

func (s *rotatingFileSink) Close() error {
	return s.file.Close()
}

func (s *rotatingFileSink) rotate() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close active file: %w", err)
	}
	if err := s.shiftBackups(); err != nil {
		return err
	}
	file, _, err := openTruncate(s.args.Path)
	if err != nil {
		return err
	}
	s.file = file
	s.written = 0
	return nil
}

// shiftBackups moves path -> path.1 -> path.2 ... dropping the oldest, then
// optionally compresses the fresh path.1
func (s *rotatingFileSink) shiftBackups() error {
	if err := os.Remove(s.backupPath(s.args.MaxBackups)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to drop oldest backup: %w", err)
	}
	for i := s.args.MaxBackups - 1; i >= 1; i-- {
		from := s.backupPath(i)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, s.backupPath(i+1)); err != nil {
			return fmt.Errorf("failed to shift backup %d: %w", i, err)
		}
	}
	rotated := s.args.Path + ".1"
	if err := os.Rename(s.args.Path, rotated); err != nil {
		return fmt.Errorf("failed to rotate active file: %w", err)
	}
	if s.args.Compress {
		if err := compressFile(rotated, rotated+".gz"); err != nil {
			s.logger.Errorf("failed to compress %s, keeping uncompressed: %s", rotated, err.Error())
		}
	}
	return nil
}

func (s *rotatingFileSink) backupPath(index int) string {
	path := s.args.Path + "." + strconv.Itoa(index)
	if s.args.Compress {
		return path + ".gz"
	}
	return path
}

// compressFile gzips src into dst and removes src on success
func compressFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func openAppend(path string) (*os.File, int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat log file: %w", err)
	}
	return file, info.Size(), nil
}

func openTruncate(path string) (*os.File, int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reopen log file: %w", err)
	}
	return file, 0, nil
}
