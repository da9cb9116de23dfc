// Package streamio adapts ordinary Go io.Reader/io.Writer values to the
// narrow ambient byte-stream interfaces (contracts.ByteSource,
// contracts.ByteSink) the live codecs consume. It is the
// concrete, idiomatic default for callers who just have a file, a pipe,
// or a bytes.Buffer and want something that satisfies those interfaces.
package streamio

import (
	"bufio"
	"io"
)

// Reader adapts an io.Reader into a contracts.ByteSource.
type Reader struct {
	r      *bufio.Reader
	peeked bool
	b      byte
	err    error
}

// NewReader wraps r. If r is already a *bufio.Reader it is used directly.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// Peek returns the next byte without consuming it. It blocks if the
// underlying reader blocks.
func (s *Reader) Peek() (byte, error) {
	if s.peeked {
		return s.b, s.err
	}
	b, err := s.r.ReadByte()
	s.peeked = true
	s.b, s.err = b, err
	if err != nil {
		return 0, err
	}
	return b, nil
}

// Next consumes and returns the next byte.
func (s *Reader) Next() (byte, error) {
	b, err := s.Peek()
	if err != nil {
		return 0, err
	}
	s.peeked = false
	return b, nil
}

// Avail reports how many bytes are immediately available without
// blocking: anything already buffered by bufio, plus one if a byte has
// been peeked but not yet consumed.
func (s *Reader) Avail() int {
	n := s.r.Buffered()
	if s.peeked && s.err == nil {
		n++
	}
	return n
}

// Sync is a no-op: an in-memory or file-backed reader has nothing to
// flush, and never blocks waiting for new bytes.
func (s *Reader) Sync() error { return nil }

// SeekForward discards n bytes without returning them, satisfying
// contracts.Seeker. Reader is not an io.Reader, so it cannot be passed to
// the SMF reader (smf.Read takes an io.Reader), and the SMF reader's
// chunk skipping does not go through this method.
func (s *Reader) SeekForward(n int64) error {
	if s.peeked {
		if s.err != nil {
			return s.err
		}
		s.peeked = false
		n--
	}
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, s.r, n)
	return err
}
