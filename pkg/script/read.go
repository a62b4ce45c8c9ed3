package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single physical script line. A longer line without
// a terminator is treated as corrupted input.
const maxLineSize = 64 * 1024

// LineScanner yields physical script lines from a stream. It exists so
// that ReadLine can be called repeatedly against the same stream, e.g. to
// interleave script parsing with other input handling.
type LineScanner struct {
	scanner *bufio.Scanner
}

func NewLineScanner(r io.Reader) *LineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &LineScanner{scanner: sc}
}

// next returns the next physical line without its terminator, io.EOF at
// the end of the stream, or ErrCorruptInput for an over-length
// unterminated line.
func (ls *LineScanner) next() (string, error) {
	if !ls.scanner.Scan() {
		if err := ls.scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return "", fmt.Errorf("%w: line exceeds %d bytes", ErrCorruptInput, maxLineSize)
			}
			return "", err
		}
		return "", io.EOF
	}
	return ls.scanner.Text(), nil
}

// readPhysicalLine fetches one line from the line source override or the
// scanner and normalizes the terminator away.
func (s *Script) readPhysicalLine(ls *LineScanner) (string, error) {
	var line string
	var err error

	if s.lineSource != nil {
		line, err = s.lineSource(s)
	} else {
		line, err = ls.next()
	}
	if err != nil {
		return "", err
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// ReadLine reads the next non-blank, non-comment line from the scanner (or
// the line source override) into the script. Blank lines and lines whose
// first non-blank character is '#' are skipped; every physical line read
// counts towards NLines. Returns io.EOF when nothing is left to read.
//
// An ErrUnsupportedHeader result is usually safe to ignore; see
// ReadStream.
func (s *Script) ReadLine(ls *LineScanner) error {
	for {
		line, err := s.readPhysicalLine(ls)
		if err != nil {
			return err
		}

		s.nlines++

		trimmed := skipBlank(line)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		return s.ReadBuffer(trimmed)
	}
}

// ReadStream reads a whole dump stream into the script. Unsupported
// headers are skipped and reading continues; any other parse error aborts
// the read. NLines reports the failing line for diagnostics.
func (s *Script) ReadStream(r io.Reader) error {
	ls := NewLineScanner(r)
	for {
		err := s.ReadLine(ls)
		if err == nil || errors.Is(err, ErrUnsupportedHeader) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("line %d: %w", s.nlines, err)
	}
}
