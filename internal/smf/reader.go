package smf

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// Read parses a complete Standard MIDI File from r. It locates the MThd
// header by chunk type, scanning chunk-by-chunk rather than assuming MThd
// is first, and skips any non-MThd/MTrk chunk a writer may have inserted.
func Read(r io.Reader, logger contracts.Logger) (contracts.File, error) {
	headerSize, err := findChunk(r, "MThd", logger)
	if err != nil {
		return contracts.File{}, err
	}
	header := newChunkCursor(r, int64(headerSize))

	format, err := header.read16()
	if err != nil {
		return contracts.File{}, err
	}
	numTracks, err := header.read16()
	if err != nil {
		return contracts.File{}, err
	}
	division, err := header.read16()
	if err != nil {
		return contracts.File{}, err
	}
	if format == 0 && numTracks != 1 {
		return contracts.File{}, fmt.Errorf("%w: format 0 file must have exactly one track, has %d", contracts.ErrBadChunk, numTracks)
	}
	if format > 2 {
		return contracts.File{}, fmt.Errorf("%w: unsupported SMF format %d", contracts.ErrBadChunk, format)
	}
	if err := skipChunkTail(header); err != nil {
		return contracts.File{}, err
	}

	out := contracts.File{
		AsynchronousTracks: format == 2,
		TimeDivision:       decodeTimeDivision(division),
		Tracks:             make([]contracts.Track, numTracks),
	}

	for i := range out.Tracks {
		trackSize, err := findChunk(r, "MTrk", logger)
		if err != nil {
			return contracts.File{}, fmt.Errorf("track %d: %w", i, err)
		}
		track, err := readTrack(newChunkCursor(r, int64(trackSize)), logger)
		if err != nil {
			return contracts.File{}, fmt.Errorf("track %d: %w", i, err)
		}
		out.Tracks[i] = track
	}
	return out, nil
}

// decodeTimeDivision splits the MThd division field, reversing the on-disk
// two's-complement frames-per-second encoding back into a positive count
// (grounded on yalue-midi's TimeDivision.SMPTETimeCode).
func decodeTimeDivision(division uint16) contracts.TimeDivision {
	if division&0x8000 == 0 {
		return contracts.TimeDivision{TicksPerQuarter: division & 0x7fff}
	}
	hi := int8(division >> 8)
	lo := byte(division & 0xff)
	return contracts.TimeDivision{
		SMPTE:           true,
		FramesPerSecond: uint8(-hi),
		ClocksPerFrame:  lo,
	}
}

// findChunk scans chunk headers (4-byte type, big-endian uint32 size),
// skipping any chunk that doesn't match want, and returns the matching
// chunk's declared size with r positioned at its first payload byte.
func findChunk(r io.Reader, want string, logger contracts.Logger) (uint32, error) {
	var typeBuf [4]byte
	for {
		if _, err := io.ReadFull(r, typeBuf[:]); err != nil {
			return 0, fmt.Errorf("%w: looking for %q chunk: %v", contracts.ErrBadChunk, want, err)
		}
		var size uint32
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return 0, fmt.Errorf("%w: reading %q chunk size: %v", contracts.ErrBadChunk, string(typeBuf[:]), err)
		}
		if string(typeBuf[:]) == want {
			return size, nil
		}
		logger.Warn("skipping unrecognized chunk",
			logger.Field().String("type", string(typeBuf[:])),
			logger.Field().Int64("size", int64(size)))
		if seeker, ok := r.(contracts.Seeker); ok {
			if err := seeker.SeekForward(int64(size)); err != nil {
				return 0, fmt.Errorf("%w: skipping %q chunk: %v", contracts.ErrBadChunk, string(typeBuf[:]), err)
			}
		} else if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
			return 0, fmt.Errorf("%w: skipping %q chunk: %v", contracts.ErrBadChunk, string(typeBuf[:]), err)
		}
	}
}

// skipChunkTail discards any bytes left in a chunk beyond what was parsed,
// tolerating a larger-than-6 MThd chunk size from a writer that appended
// extra header fields.
func skipChunkTail(c *chunkCursor) error {
	if c.remaining() == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, c.lr, c.remaining())
	return err
}
