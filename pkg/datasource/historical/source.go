package historical

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/exp/mmap"
)

var ErrEof = errors.New("EOF")

// Source memory-maps a file of fixed-size binary records and reads them by
// index. T must be a plain struct with no pointers; records are read straight
// into the caller's value, so the file layout is the in-memory layout.
type Source[T any] struct {
	path      string
	entrySize int64
	reader    *mmap.ReaderAt
}

func NewSource[T any](path string) *Source[T] {
	var entry T
	return &Source[T]{
		path:      path,
		entrySize: int64(unsafe.Sizeof(entry)),
	}
}

func (s *Source[T]) Open() error {
	var err error
	s.reader, err = mmap.Open(s.path)
	if err != nil {
		return fmt.Errorf("unable to open data source %q: %w", s.path, err)
	}
	return nil
}

func (s *Source[T]) Close() {
	_ = s.reader.Close()
}

// Read fills data with the record at index, ErrEof past the last full record.
func (s *Source[T]) Read(index int64, data *T) error {
	buffer := unsafe.Slice((*byte)(unsafe.Pointer(data)), s.entrySize) // #nosec G103

	n, err := s.reader.ReadAt(buffer, index*s.entrySize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read: %w", err)
	}
	if int64(n) < s.entrySize {
		return ErrEof
	}
	return nil
}

func (s *Source[T]) EntryCount() (int64, error) {
	if s.entrySize == 0 {
		return 0, fmt.Errorf("size of T is zero")
	}

	fileInfo, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("unable to get data source %q stats: %w", s.path, err)
	}

	totalSize := fileInfo.Size()
	if totalSize%s.entrySize != 0 {
		return 0, fmt.Errorf("file size is not a multiple of entry size")
	}

	return totalSize / s.entrySize, nil
}
