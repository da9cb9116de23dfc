package codec

import (
	"bytes"

	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// Transmitter serializes MIDI messages onto a contracts.ByteSink, applying
// running-status compression and the note-off optimization. It owns the
// per-sink transmission state for its lifetime.
type Transmitter struct {
	sink            contracts.ByteSink
	logger          contracts.Logger
	optimizeNoteOff bool
	state           txState
}

// NewTransmitter constructs a Transmitter bound to sink. Realtime-sink
// capability is probed once, lazily, on the first realtime Emit call; the sink
// must not be swapped out afterwards.
func NewTransmitter(sink contracts.ByteSink, locking bool, optimizeNoteOff bool, logger contracts.Logger) *Transmitter {
	return &Transmitter{
		sink:            sink,
		logger:          logger,
		optimizeNoteOff: optimizeNoteOff,
		state:           txState{mu: newLocker(locking)},
	}
}

// Emit writes msg to the sink. Meta messages and invalid messages are
// dropped with a nil error (a warning is logged): meta messages are
// produced only by the SMF reader and must never reach a live transmitter.
func (t *Transmitter) Emit(msg contracts.UntimedMessage) error {
	if msg.IsMetaMessage() {
		t.logger.Warn("transmitter dropped a meta message", t.logger.Field().Int("kind", int(msg.Meta)))
		return nil
	}
	if !msg.Valid() {
		t.logger.Warn("transmitter dropped an invalid message", t.logger.Field().Int("kind", int(msg.Kind)))
		return nil
	}

	if msg.IsRealtimeMessage() {
		return t.emitRealtime(byte(msg.Realtime))
	}

	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	switch msg.Kind {
	case contracts.KindChannel:
		return t.emitChannel(msg)
	case contracts.KindSystem:
		return t.emitSystem(msg)
	case contracts.KindSysex:
		return t.emitSysex(msg.Sysex)
	default:
		return nil
	}
}

// emitRealtime writes a single realtime byte without touching the
// transmit mutex or last_status, so a realtime byte can always be
// interleaved between the bytes of a longer message being written
// concurrently on another goroutine.
func (t *Transmitter) emitRealtime(status byte) error {
	rw, supportsRealtime := t.sink.(contracts.RealtimeWriter)
	if !t.state.realtimeChecked {
		t.state.realtimeSupported = supportsRealtime
		t.state.realtimeChecked = true
	}
	if t.state.realtimeSupported {
		return rw.WriteRealtime(status)
	}
	return t.sink.WriteByte(status)
}

func (t *Transmitter) emitChannel(msg contracts.UntimedMessage) error {
	status, data := channelBytes(msg, t.state.lastStatus, t.optimizeNoteOff)
	running := status == t.state.lastStatus
	t.state.lastStatus = status

	if running {
		return writeAll(t.sink, data)
	}
	buf := make([]byte, 0, 1+len(data))
	buf = append(buf, status)
	buf = append(buf, data...)
	return writeAll(t.sink, buf)
}

// channelBytes computes the status byte and data bytes for a channel
// message, applying the note-off -> note-on-velocity-0 optimization.
func channelBytes(msg contracts.UntimedMessage, lastStatus byte, optimize bool) (status byte, data []byte) {
	ch := msg.Channel & 0x0F
	switch msg.ChannelKind {
	case contracts.NoteEventKind:
		on := 0x90 | ch
		off := 0x80 | ch
		if !msg.On && lastStatus == on && (optimize || msg.Velocity == 0x40) {
			return on, []byte{msg.Note, 0x00}
		}
		if msg.On {
			return on, []byte{msg.Note, msg.Velocity}
		}
		return off, []byte{msg.Note, msg.Velocity}
	case contracts.KeyPressureKind:
		return 0xA0 | ch, []byte{msg.Note, msg.Value}
	case contracts.ControlChangeKind:
		return 0xB0 | ch, []byte{msg.Control, msg.Value}
	case contracts.ProgramChangeKind:
		return 0xC0 | ch, []byte{msg.Value}
	case contracts.ChannelPressureKind:
		return 0xD0 | ch, []byte{msg.Value}
	case contracts.PitchChangeKind:
		return 0xE0 | ch, []byte{msg.PitchLo, msg.PitchHi}
	}
	return 0, nil
}

func (t *Transmitter) emitSystem(msg contracts.UntimedMessage) error {
	var buf []byte
	switch msg.System {
	case contracts.MTCQuarterFrameKind:
		buf = []byte{0xF1, msg.MTCData}
	case contracts.SongPositionKind:
		buf = []byte{0xF2, msg.SongLo, msg.SongHi}
	case contracts.SongSelectKind:
		buf = []byte{0xF3, msg.SongSelN}
	case contracts.TuneRequestKind:
		buf = []byte{0xF6}
	default:
		return nil
	}
	if err := writeAll(t.sink, buf); err != nil {
		return err
	}
	// System-common messages break running status.
	t.state.lastStatus = 0
	return nil
}

// emitSysex writes the sysex payload verbatim, then scans it to maintain
// last_status exactly as if each embedded status byte had been
// transmitted on its own: channel statuses update the latch, non-realtime
// system statuses clear it, realtime statuses are ignored, and a 0xF0
// suspends scanning until the matching 0xF7. This lets callers pass
// multi-segment sysex blobs or escape-style payloads without corrupting
// running-status tracking for whatever follows.
func (t *Transmitter) emitSysex(data []byte) error {
	inSysex := false
	i := 0
	for {
		if !inSysex {
			for ; i < len(data); i++ {
				b := data[i]
				if !IsStatus(b) {
					continue
				}
				if IsRealtime(b) {
					continue
				}
				if b == 0xF0 {
					break
				}
				if IsSystem(b) {
					t.state.lastStatus = 0
				} else {
					t.state.lastStatus = b
				}
			}
		} else {
			j := bytes.IndexByte(data[i:], 0xF7)
			if j < 0 {
				i = len(data)
			} else {
				i += j
			}
		}
		if i == len(data) {
			break
		}
		inSysex = !inSysex
	}
	return writeAll(t.sink, data)
}

func writeAll(sink contracts.ByteSink, data []byte) error {
	_, err := sink.Write(data)
	return err
}
