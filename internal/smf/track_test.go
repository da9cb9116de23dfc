package smf

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/leandrodaf/midiengine/internal/logger"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

func TestParseEscapeChannelMessageUnderRunningStatus(t *testing.T) {
	lastStatus := byte(0x90)
	inSysex := false

	// No status byte: continues running status from before the escape.
	data := []byte{0x3C, 0x40}
	msgs, err := parseEscape(data, &inSysex, &lastStatus)
	if err != nil {
		t.Fatalf("parseEscape: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	want := contracts.NewNoteEvent(0, 0x3C, 0x40, true)
	if !reflect.DeepEqual(msgs[0], want) {
		t.Fatalf("got %+v want %+v", msgs[0], want)
	}
}

func TestParseEscapeEmbeddedSysexThenChannelMessage(t *testing.T) {
	lastStatus := byte(0)
	inSysex := false

	data := []byte{0xF0, 0x7E, 0x01, 0xF7, 0x91, 0x40, 0x50}
	msgs, err := parseEscape(data, &inSysex, &lastStatus)
	if err != nil {
		t.Fatalf("parseEscape: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2: %+v", len(msgs), msgs)
	}
	if msgs[0].Kind != contracts.KindSysex {
		t.Fatalf("message 0 = %+v, want sysex", msgs[0])
	}
	wantSysex := []byte{0xF0, 0x7E, 0x01, 0xF7}
	if string(msgs[0].Sysex) != string(wantSysex) {
		t.Fatalf("got sysex %x want %x", msgs[0].Sysex, wantSysex)
	}
	wantNote := contracts.NewNoteEvent(1, 0x40, 0x50, true)
	if !reflect.DeepEqual(msgs[1], wantNote) {
		t.Fatalf("got %+v want %+v", msgs[1], wantNote)
	}
	if lastStatus != 0x91 {
		t.Fatalf("last status after escape = 0x%02X, want 0x91", lastStatus)
	}
}

func TestParseEscapeTrailingFragmentWithoutTerminator(t *testing.T) {
	lastStatus := byte(0)
	inSysex := false

	data := []byte{0xF0, 0x01, 0x02, 0x03}
	msgs, err := parseEscape(data, &inSysex, &lastStatus)
	if err != nil {
		t.Fatalf("parseEscape: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if !inSysex {
		t.Fatal("expected in_sysex to remain true: no 0xF7 terminator seen")
	}
	if string(msgs[0].Sysex) != string(data) {
		t.Fatalf("got %x want %x", msgs[0].Sysex, data)
	}
}

func TestParseEscapeNoStatusFails(t *testing.T) {
	lastStatus := byte(0)
	inSysex := false
	_, err := parseEscape([]byte{0x40, 0x50}, &inSysex, &lastStatus)
	if err == nil {
		t.Fatal("expected error when escape payload has no status to fall back on")
	}
}

func TestReadTrackChannelPrefixAppliesToSubsequentMeta(t *testing.T) {
	var track []byte
	track = append(track, vlq(0)...)
	track = append(track, 0xFF, 0x20, 0x01, 0x05) // channel prefix 5
	track = append(track, vlq(0)...)
	track = append(track, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20) // tempo, still under prefix 5
	track = append(track, vlq(0)...)
	track = append(track, 0xFF, 0x2F, 0x00)

	entries, err := readTrack(newChunkCursor(bytes.NewReader(track), int64(len(track))), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("readTrack: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (tempo grouped at tick 0)", len(entries))
	}
	tempo := entries[0].Messages[0]
	if tempo.MetaChannel == nil || *tempo.MetaChannel != 5 {
		t.Fatalf("tempo MetaChannel = %v, want 5", tempo.MetaChannel)
	}
}

func TestReadTrackChannelMessageClearsMetaChannel(t *testing.T) {
	var track []byte
	track = append(track, vlq(0)...)
	track = append(track, 0xFF, 0x20, 0x01, 0x05)
	track = append(track, vlq(1)...)
	track = append(track, 0x90, 0x3C, 0x40) // channel message resets meta_channel
	track = append(track, vlq(1)...)
	track = append(track, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20) // tempo, no longer prefixed
	track = append(track, vlq(0)...)
	track = append(track, 0xFF, 0x2F, 0x00)

	entries, err := readTrack(newChunkCursor(bytes.NewReader(track), int64(len(track))), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("readTrack: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	tempo := entries[1].Messages[0]
	if tempo.MetaChannel != nil {
		t.Fatalf("tempo MetaChannel = %v, want nil after intervening channel message", tempo.MetaChannel)
	}
}
