// Package codec implements the stateful live MIDI stream codecs: a
// running-status-aware transmitter and receiver. The SMF reader
// (internal/smf) shares the status-byte classification and
// channel-message-size helpers defined here.
package codec

import "github.com/leandrodaf/midiengine/sdk/contracts"

// IsStatus reports whether b is a status byte (high bit set).
func IsStatus(b byte) bool { return b&0x80 != 0 }

// IsRealtime reports whether b is a realtime status (>= 0xF8).
func IsRealtime(b byte) bool { return b >= 0xF8 }

// IsSystem reports whether b is a system status (>= 0xF0).
func IsSystem(b byte) bool { return b >= 0xF0 }

// MessageSize returns the number of data bytes that follow status, or -1
// if status starts an unbounded sysex (terminated by 0xF7 instead of a
// fixed length). It returns 0 for realtime statuses and for the invalid
// set, so callers must check validity via InvalidStatus first.
func MessageSize(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 2
	case 0xC0, 0xD0:
		return 1
	case 0xF0:
		switch status {
		case 0xF0:
			return -1
		case 0xF1:
			return 1
		case 0xF2:
			return 2
		case 0xF3:
			return 1
		case 0xF6:
			return 0
		default:
			// realtime statuses (0xF8 and above) and the invalid set
			// (0xF4, 0xF5, 0xF7, 0xF9, 0xFD) are not handled here.
			return 0
		}
	default:
		return 0
	}
}

// InvalidStatus reports whether status can never legally begin or
// continue a message (outside of sysex framing, where 0xF7 is the
// terminator rather than a status byte in its own right).
func InvalidStatus(status byte) bool {
	switch status {
	case 0xF4, 0xF5, 0xF7, 0xF9, 0xFD:
		return true
	}
	return false
}

// RealtimeMessage builds the realtime message for a given status byte. The
// caller must have already verified status is one of the six realtime
// kinds via IsRealtime and InvalidStatus.
func RealtimeMessage(status byte) contracts.UntimedMessage {
	return contracts.NewRealtime(contracts.RealtimeKind(status))
}

// ChannelOrSystemMessage decodes a channel or system-common message body
// from its status byte and following data bytes (data must have exactly
// MessageSize(status) valid entries). The note-on-velocity-0 -> note-off
// transform is applied here, shared verbatim by the receiver and the SMF
// per-track parser.
func ChannelOrSystemMessage(status byte, data []byte) contracts.UntimedMessage {
	ch := status & 0x0F
	switch status & 0xF0 {
	case 0x80, 0x90:
		vel := data[1]
		on := status&0x10 != 0
		if on && vel == 0 {
			on = false
			vel = 0x40
		}
		return contracts.NewNoteEvent(ch, data[0], vel, on)
	case 0xA0:
		return contracts.NewKeyPressure(ch, data[0], data[1])
	case 0xB0:
		return contracts.NewControlChange(ch, data[0], data[1])
	case 0xC0:
		return contracts.NewProgramChange(ch, data[0])
	case 0xD0:
		return contracts.NewChannelPressure(ch, data[0])
	case 0xE0:
		return contracts.NewPitchChange(ch, data[0], data[1])
	case 0xF0:
		switch status {
		case 0xF1:
			return contracts.NewMTCQuarterFrame(data[0])
		case 0xF2:
			return contracts.NewSongPosition(data[0], data[1])
		case 0xF3:
			return contracts.NewSongSelect(data[0])
		case 0xF6:
			return contracts.NewTuneRequest()
		}
	}
	return RealtimeMessage(status)
}
