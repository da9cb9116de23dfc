package codec

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/leandrodaf/midiengine/sdk/contracts"
	"github.com/leandrodaf/midiengine/streamio"
)

// incrementingClock hands out strictly increasing timestamps so ordering
// assertions (e.g. "the realtime byte's timestamp is later than the
// enclosing message's") are checkable without relying on wall time.
type incrementingClock struct {
	t time.Time
}

func (c *incrementingClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newReceiver(data []byte) (*Receiver, *incrementingClock) {
	clock := &incrementingClock{}
	r := NewReceiver(streamio.NewReader(bytes.NewReader(data)), true, clock, noopLogger{})
	return r, clock
}

type noopLogger struct{}

func (noopLogger) Info(string, ...contracts.Field)                     {}
func (noopLogger) Error(string, ...contracts.Field)                    {}
func (noopLogger) Debug(string, ...contracts.Field)                    {}
func (noopLogger) Warn(string, ...contracts.Field)                     {}
func (noopLogger) Fatal(string, ...contracts.Field)                    {}
func (noopLogger) Field() contracts.Field                              { return noopField{} }
func (noopLogger) SetLevel(contracts.LogLevel)                         {}
func (noopLogger) SetDestination(contracts.LogDestination, ...string)  {}

// noopField implements contracts.Field by ignoring every value and
// returning itself, so chained builder calls never need a nil check.
type noopField struct{}

func (noopField) Bool(string, bool) contracts.Field         { return noopField{} }
func (noopField) Int(string, int) contracts.Field           { return noopField{} }
func (noopField) Float64(string, float64) contracts.Field   { return noopField{} }
func (noopField) String(string, string) contracts.Field     { return noopField{} }
func (noopField) Time(string, time.Time) contracts.Field    { return noopField{} }
func (noopField) Int64(string, int64) contracts.Field       { return noopField{} }
func (noopField) Error(string, error) contracts.Field       { return noopField{} }
func (noopField) Uint64(string, uint64) contracts.Field     { return noopField{} }
func (noopField) Uint8(string, uint8) contracts.Field       { return noopField{} }

func TestReceiverRunningStatus(t *testing.T) {
	r, _ := newReceiver([]byte{0x90, 0x3C, 0x40, 0x3E, 0x40})

	msg1, err := r.Extract()
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	want1 := contracts.NewNoteEvent(0, 0x3C, 0x40, true)
	if !reflect.DeepEqual(msg1.UntimedMessage, want1) {
		t.Fatalf("got %+v want %+v", msg1.UntimedMessage, want1)
	}

	msg2, err := r.Extract()
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	want2 := contracts.NewNoteEvent(0, 0x3E, 0x40, true)
	if !reflect.DeepEqual(msg2.UntimedMessage, want2) {
		t.Fatalf("got %+v want %+v", msg2.UntimedMessage, want2)
	}
}

func TestReceiverInterleavedRealtime(t *testing.T) {
	r, _ := newReceiver([]byte{0x90, 0x3C, 0xF8, 0x40})

	rt, err := r.Extract()
	if err != nil {
		t.Fatalf("realtime extract: %v", err)
	}
	if rt.Kind != contracts.KindRealtime || rt.Realtime != contracts.TimingClock {
		t.Fatalf("expected timing clock, got %+v", rt.UntimedMessage)
	}

	note, err := r.Extract()
	if err != nil {
		t.Fatalf("note extract: %v", err)
	}
	want := contracts.NewNoteEvent(0, 0x3C, 0x40, true)
	if !reflect.DeepEqual(note.UntimedMessage, want) {
		t.Fatalf("got %+v want %+v", note.UntimedMessage, want)
	}
	if !note.Timestamp.Before(rt.Timestamp) {
		t.Fatalf("note timestamp %v should precede realtime timestamp %v (first-byte rule)", note.Timestamp, rt.Timestamp)
	}
}

func TestReceiverNoteOffVelocityZeroRoundTrip(t *testing.T) {
	r, _ := newReceiver([]byte{0x90, 0x3C, 0x00})

	msg, err := r.Extract()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := contracts.NewNoteEvent(0, 0x3C, 0x40, false)
	if !reflect.DeepEqual(msg.UntimedMessage, want) {
		t.Fatalf("got %+v want %+v", msg.UntimedMessage, want)
	}
}

func TestReceiverInvalidStatus(t *testing.T) {
	for _, status := range []byte{0xF4, 0xF5, 0xF9, 0xFD} {
		r, _ := newReceiver([]byte{status})
		_, err := r.Extract()
		if !errors.Is(err, contracts.ErrInvalidStatus) {
			t.Fatalf("status 0x%02X: got err %v, want ErrInvalidStatus", status, err)
		}
	}
}

func TestReceiverUnexpectedStatusResumes(t *testing.T) {
	// A note-on status followed by a new status byte before the note-on's
	// two data bytes arrive: the receiver should report unexpected-status
	// and then successfully parse the new message on the next call.
	r, _ := newReceiver([]byte{0x90, 0x3C, 0x80, 0x40, 0x40})

	_, err := r.Extract()
	if !errors.Is(err, contracts.ErrUnexpectedStatus) {
		t.Fatalf("got %v, want ErrUnexpectedStatus", err)
	}

	msg, err := r.Extract()
	if err != nil {
		t.Fatalf("resumed extract: %v", err)
	}
	want := contracts.NewNoteEvent(0, 0x40, 0x40, false)
	if !reflect.DeepEqual(msg.UntimedMessage, want) {
		t.Fatalf("got %+v want %+v", msg.UntimedMessage, want)
	}
}

func TestReceiverSysex(t *testing.T) {
	data := []byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7}
	r, _ := newReceiver(data)

	msg, err := r.Extract()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if msg.Kind != contracts.KindSysex {
		t.Fatalf("expected sysex, got %+v", msg.UntimedMessage)
	}
	if !bytes.Equal(msg.Sysex, data) {
		t.Fatalf("got %x want %x", msg.Sysex, data)
	}
}

func TestTryExtractEmptyWithoutBlocking(t *testing.T) {
	r, _ := newReceiver(nil)

	msg, err := r.TryExtract()
	if err != nil {
		t.Fatalf("try extract: %v", err)
	}
	if !reflect.DeepEqual(msg, contracts.Message{}) {
		t.Fatalf("expected empty message, got %+v", msg)
	}
}

func TestExtractEOF(t *testing.T) {
	r, _ := newReceiver(nil)

	_, err := r.Extract()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got err %v, want io.EOF", err)
	}
}
