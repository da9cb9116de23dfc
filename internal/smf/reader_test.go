package smf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/leandrodaf/midiengine/internal/logger"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

func nopLogger() contracts.Logger { return logger.NewNopLogger() }

// chunk builds a 4-byte tag, big-endian uint32 size, then payload.
func chunk(tag string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(tag)
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func mthd(format, numTracks, division uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, format)
	binary.Write(&buf, binary.BigEndian, numTracks)
	binary.Write(&buf, binary.BigEndian, division)
	return chunk("MThd", buf.Bytes())
}

func vlq(n uint32) []byte {
	if n == 0 {
		return []byte{0}
	}
	var rev []byte
	for n > 0 {
		rev = append(rev, byte(n&0x7f))
		n >>= 7
	}
	out := make([]byte, len(rev))
	for i, j := 0, len(rev)-1; j >= 0; i, j = i+1, j-1 {
		b := rev[j]
		if i != len(rev)-1 {
			b |= 0x80
		}
		out[i] = b
	}
	return out
}

func TestReadHeaderTicksPerQuarter(t *testing.T) {
	var data []byte
	data = append(data, mthd(1, 1, 480)...)
	var track bytes.Buffer
	track.Write(vlq(0))
	track.Write([]byte{0xFF, 0x2F, 0x00}) // end of track
	data = append(data, chunk("MTrk", track.Bytes())...)

	f, err := Read(bytes.NewReader(data), nopLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.AsynchronousTracks {
		t.Fatal("format 1 file reported as asynchronous")
	}
	if f.TimeDivision.SMPTE {
		t.Fatal("expected ticks-per-quarter division")
	}
	if f.TimeDivision.TicksPerQuarter != 480 {
		t.Fatalf("got %d ticks per quarter, want 480", f.TimeDivision.TicksPerQuarter)
	}
	if len(f.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(f.Tracks))
	}
}

func TestReadHeaderSMPTEDivision(t *testing.T) {
	// -25 fps (0xE7) combined with 40 ticks/frame: the on-disk two's-
	// complement encoding the reader negates back to a positive fps.
	division := uint16(0xE7)<<8 | 40
	var data []byte
	data = append(data, mthd(1, 1, division)...)
	var track bytes.Buffer
	track.Write(vlq(0))
	track.Write([]byte{0xFF, 0x2F, 0x00})
	data = append(data, chunk("MTrk", track.Bytes())...)

	f, err := Read(bytes.NewReader(data), nopLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !f.TimeDivision.SMPTE {
		t.Fatal("expected SMPTE division")
	}
	if f.TimeDivision.FramesPerSecond != 25 {
		t.Fatalf("got %d fps, want 25", f.TimeDivision.FramesPerSecond)
	}
	if f.TimeDivision.ClocksPerFrame != 40 {
		t.Fatalf("got %d clocks per frame, want 40", f.TimeDivision.ClocksPerFrame)
	}
}

func TestReadSkipsUnknownChunks(t *testing.T) {
	var data []byte
	data = append(data, chunk("JUNK", []byte{1, 2, 3, 4})...)
	data = append(data, mthd(0, 1, 96)...)
	var track bytes.Buffer
	track.Write(vlq(0))
	track.Write([]byte{0xFF, 0x2F, 0x00})
	data = append(data, chunk("MTrk", track.Bytes())...)

	f, err := Read(bytes.NewReader(data), nopLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(f.Tracks))
	}
}

func TestReadTempoAndNoteEvents(t *testing.T) {
	var data []byte
	data = append(data, mthd(0, 1, 96)...)

	var track bytes.Buffer
	track.Write(vlq(0))
	track.Write([]byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}) // tempo = 500000 us/qn

	track.Write(vlq(10))
	track.Write([]byte{0x90, 0x3C, 0x40}) // note on

	track.Write(vlq(5))
	track.Write([]byte{0x3C, 0x00}) // running status note-off-as-velocity-0

	track.Write(vlq(0))
	track.Write([]byte{0xFF, 0x2F, 0x00})

	data = append(data, chunk("MTrk", track.Bytes())...)

	f, err := Read(bytes.NewReader(data), nopLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	trk := f.Tracks[0]
	if len(trk) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(trk), trk)
	}

	if trk[0].Tick != 0 || trk[0].Messages[0].Meta != contracts.TempoChangeKind {
		t.Fatalf("entry 0 = %+v, want tempo at tick 0", trk[0])
	}
	if trk[0].Messages[0].TempoMicros != 500000 {
		t.Fatalf("got tempo %d, want 500000", trk[0].Messages[0].TempoMicros)
	}

	if trk[1].Tick != 10 {
		t.Fatalf("entry 1 tick = %d, want 10", trk[1].Tick)
	}
	on := trk[1].Messages[0]
	if on.ChannelKind != contracts.NoteEventKind || !on.On || on.Note != 0x3C || on.Velocity != 0x40 {
		t.Fatalf("entry 1 = %+v, want note-on 0x3C/0x40", on)
	}

	if trk[2].Tick != 15 {
		t.Fatalf("entry 2 tick = %d, want 15", trk[2].Tick)
	}
	off := trk[2].Messages[0]
	if off.ChannelKind != contracts.NoteEventKind || off.On {
		t.Fatalf("entry 2 = %+v, want note-off", off)
	}
	if off.Note != 0x3C || off.Velocity != 0x40 {
		t.Fatalf("entry 2 note/velocity = %d/%d, want 0x3C/0x40 (velocity-0 -> note-off transform)", off.Note, off.Velocity)
	}
}

func TestReadSysexEvent(t *testing.T) {
	var data []byte
	data = append(data, mthd(0, 1, 96)...)

	var track bytes.Buffer
	track.Write(vlq(0))
	payload := []byte{0x7E, 0x7F, 0x06, 0x01, 0xF7}
	track.Write([]byte{0xF0})
	track.Write(vlq(uint32(len(payload))))
	track.Write(payload)

	track.Write(vlq(0))
	track.Write([]byte{0xFF, 0x2F, 0x00})
	data = append(data, chunk("MTrk", track.Bytes())...)

	f, err := Read(bytes.NewReader(data), nopLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	trk := f.Tracks[0]
	if len(trk) != 1 {
		t.Fatalf("got %d entries, want 1", len(trk))
	}
	msg := trk[0].Messages[0]
	if msg.Kind != contracts.KindSysex {
		t.Fatalf("got kind %v, want sysex", msg.Kind)
	}
	want := append([]byte{0xF0}, payload...)
	if !bytes.Equal(msg.Sysex, want) {
		t.Fatalf("got %x want %x", msg.Sysex, want)
	}
}

func TestReadRejectsBadFormat0TrackCount(t *testing.T) {
	data := mthd(0, 2, 96)
	_, err := Read(bytes.NewReader(data), nopLogger())
	if err == nil {
		t.Fatal("expected error for format 0 with 2 tracks")
	}
}
