// Package smf implements the Standard MIDI File reader: locating the MThd
// and MTrk chunks, and parsing each track's delta-time/event stream into
// the tick-keyed contracts.Track representation.
package smf

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// chunkCursor reads from a single chunk's payload, bounded to its declared
// size: every read that would cross the chunk boundary fails rather than
// spilling into whatever chunk follows. Built on io.LimitedReader, with
// the fixed-width and VLQ readers a chunk parser needs layered on top.
type chunkCursor struct {
	lr *io.LimitedReader
}

func newChunkCursor(r io.Reader, size int64) *chunkCursor {
	return &chunkCursor{lr: &io.LimitedReader{R: r, N: size}}
}

// remaining reports how many bytes of the chunk are left unread.
func (c *chunkCursor) remaining() int64 { return c.lr.N }

func (c *chunkCursor) read8() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(c.lr, b[:]); err != nil {
		return 0, chunkErr(err)
	}
	return b[0], nil
}

func (c *chunkCursor) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.lr, buf); err != nil {
		return nil, chunkErr(err)
	}
	return buf, nil
}

func (c *chunkCursor) read16() (uint16, error) {
	buf, err := c.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

func (c *chunkCursor) read24() (uint32, error) {
	buf, err := c.read(3)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

func (c *chunkCursor) read32() (uint32, error) {
	buf, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// readVLQ reads a MIDI variable-length quantity: 7 bits per byte, high bit
// set on every byte but the last. A quantity longer than 4 bytes is
// rejected as malformed: no valid SMF delta-time or meta/sysex length
// needs more than 4 encoded bytes (28 bits), so a 5th continuation byte
// indicates a corrupt file rather than a legitimately large value.
func (c *chunkCursor) readVLQ() (uint32, error) {
	var value uint32
	for i := 0; ; i++ {
		if i == 4 {
			return 0, fmt.Errorf("%w: variable-length quantity longer than 4 bytes", contracts.ErrBadChunk)
		}
		b, err := c.read8()
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return value, nil
		}
	}
}

func chunkErr(err error) error {
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return fmt.Errorf("%w: %v", contracts.ErrBadChunk, err)
	}
	return err
}
