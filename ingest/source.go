package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Source yields the data rows of a catalog CSV one at a time, in file order.
// Reads happen only inside Next, so the file is consumed exactly as fast as
// the caller asks for rows. A Source is single-use; build a new one to read
// the file again.
type Source struct {
	path string

	// mu serialises Next; fileMu guards file so Abort never waits on a read.
	mu     sync.Mutex
	fileMu sync.Mutex
	file   *os.File
	reader *csv.Reader
	header []string
	index  int
	done   bool

	aborted atomic.Bool
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

// Next returns the next row. It returns io.EOF once the file is drained or the
// source was aborted. Any other error (a *StreamError or the context's error)
// is returned once and ends the sequence.
func (s *Source) Next(ctx context.Context) (RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done || s.aborted.Load() {
		s.finish()
		return RawRow{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		s.finish()
		return RawRow{}, err
	}

	if s.reader == nil {
		if err := s.open(); err != nil {
			s.finish()
			if s.aborted.Load() {
				return RawRow{}, io.EOF
			}
			return RawRow{}, err
		}
	}

	record, err := s.reader.Read()
	if err != nil {
		s.finish()
		if s.aborted.Load() || errors.Is(err, io.EOF) {
			return RawRow{}, io.EOF
		}
		return RawRow{}, streamError(err)
	}

	s.index++
	values := make(map[string]string, len(s.header))
	for i, column := range s.header {
		values[column] = record[i]
	}
	return RawRow{Index: s.index, Values: values}, nil
}

// Abort ends the sequence. It is safe to call from any goroutine, any number
// of times, including after the source has been drained. A read blocked in
// Next is interrupted by closing the underlying file.
func (s *Source) Abort() {
	s.aborted.Store(true)
	s.closeFile()
}

// Aborted reports whether Abort was called.
func (s *Source) Aborted() bool {
	return s.aborted.Load()
}

// Header returns the normalised header row, or nil before the first Next.
func (s *Source) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

func (s *Source) open() error {
	s.fileMu.Lock()
	if s.aborted.Load() {
		s.fileMu.Unlock()
		return io.EOF
	}
	f, err := os.Open(s.path)
	if err != nil {
		s.fileMu.Unlock()
		return &StreamError{Err: fmt.Errorf("opening upload: %w", err)}
	}
	s.file = f
	s.fileMu.Unlock()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &StreamError{Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return streamError(err)
	}

	for i, column := range header {
		if i == 0 {
			column = strings.TrimPrefix(column, "\ufeff")
		}
		header[i] = strings.ToLower(strings.TrimSpace(column))
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return &StreamError{Line: 1, Err: fmt.Errorf("header is missing columns: %s", strings.Join(missing, ", "))}
	}

	s.header = header
	s.reader = reader
	return nil
}

func (s *Source) finish() {
	s.done = true
	s.closeFile()
}

func (s *Source) closeFile() {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[column] = true
	}
	var missing []string
	for _, column := range Columns {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	return missing
}

func streamError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &StreamError{Line: parseErr.Line, Err: parseErr.Err}
	}
	return &StreamError{Err: err}
}

// RemoveFile deletes an uploaded file. A file that is already gone is not an
// error, so it can be called more than once.
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
