package sink

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/lagtap/lagtap/internal/record"
)

// FileHeader is the fixed first row of every capture file.
const FileHeader = "TIMESTAMP, DURATION_HECTONANOSECONDS, REQUEST_METHOD, RESPONSE_STATUS"

// FileTimeLayout formats capture timestamps as ISO-8601 with a seven-digit
// fraction, one digit per 100ns tick of the duration column.
const FileTimeLayout = "2006-01-02T15:04:05.0000000Z07:00"

// ErrClosed is returned by Handle and Close after the sink has been closed.
var ErrClosed = errors.New("capture file sink is closed")

// FileSink appends one CSV row per record to a capture file. The file is
// truncated on open and flushed after every row, so it holds a complete
// header and one full row per handled record even if the process dies.
//
// FileSink is a single-writer type with no internal locking. Wrap it with
// Serialized before sharing it across goroutines.
type FileSink struct {
	f      *os.File
	w      *bufio.Writer
	lock   *flock.Flock
	closed bool
}

// NewFile creates the capture file at path, truncating any existing content,
// and writes the header row. A lock file at path + ".lock" guards the capture
// against two processes writing the same file.
func NewFile(path string) (*FileSink, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock capture file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("capture file %s is in use by another process", path)
	}

	f, err := os.Create(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create capture file: %w", err)
	}

	s := &FileSink{f: f, w: bufio.NewWriter(f), lock: lock}
	if _, err := fmt.Fprintln(s.w, FileHeader); err != nil {
		s.discard()
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		s.discard()
		return nil, fmt.Errorf("flush capture header: %w", err)
	}
	return s, nil
}

// Handle appends one row for rec and flushes it to the file.
func (s *FileSink) Handle(rec record.Record) error {
	if s.closed {
		return ErrClosed
	}
	_, err := fmt.Fprintf(s.w, "%s, %d, %s, %d\n",
		rec.Timestamp.Format(FileTimeLayout), rec.Ticks(), rec.Method, rec.Status)
	if err != nil {
		return fmt.Errorf("write capture row: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush capture row: %w", err)
	}
	return nil
}

// Close flushes the capture file, closes it, and releases the lock. Call it
// once after the final Handle; later calls return ErrClosed.
func (s *FileSink) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	unlockErr := s.lock.Unlock()

	if flushErr != nil {
		return fmt.Errorf("flush capture file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close capture file: %w", closeErr)
	}
	if unlockErr != nil {
		return fmt.Errorf("unlock capture file: %w", unlockErr)
	}
	return nil
}

// Path returns the capture file's path.
func (s *FileSink) Path() string {
	return s.f.Name()
}

// discard abandons a half-built sink during NewFile.
func (s *FileSink) discard() {
	_ = s.f.Close()
	_ = os.Remove(s.f.Name())
	_ = s.lock.Unlock()
}
