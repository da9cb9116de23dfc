package smf

import (
	"fmt"

	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// readMeta parses one 0xFF meta event body (the type byte and length have
// not yet been read). emit reports whether a message was produced: a
// channel-prefix event (0x20) only updates channel and emits nothing, and
// end reports the 0xFF 0x2F end-of-track marker, the only way readTrack's
// loop terminates short of running out of chunk bytes.
//
// channel is the track's current channel-prefix value, read and possibly
// updated here; it is a pointer to the caller's local so a 0x20 event can
// change what subsequent meta events report as their MetaChannel, until
// readTrack clears it on the next 0xF7 escape, 0xF0 sysex, or
// channel/system event.
func readMeta(c *chunkCursor, channel **uint8, logger contracts.Logger) (msg contracts.UntimedMessage, emit, end bool, err error) {
	metaType, err := c.read8()
	if err != nil {
		return contracts.UntimedMessage{}, false, false, err
	}
	size, err := c.readVLQ()
	if err != nil {
		return contracts.UntimedMessage{}, false, false, err
	}

	sizeMismatch := func(label string, want uint32) error {
		logger.Warn("meta event has unexpected size",
			logger.Field().String("event", label),
			logger.Field().Int64("size", int64(size)),
			logger.Field().Int64("want", int64(want)))
		return fmt.Errorf("%w: %s has size %d, want %d", contracts.ErrMessageSize, label, size, want)
	}

	switch metaType {
	case 0x00:
		if size != 2 {
			return contracts.UntimedMessage{}, false, false, sizeMismatch("sequence number", 2)
		}
		n, err := c.read16()
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewSequenceNumber(*channel, n), true, false, nil

	case 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		text, err := c.read(int(size))
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewTextMessage(*channel, textType(metaType), text), true, false, nil

	case 0x20:
		if size != 1 {
			return contracts.UntimedMessage{}, false, false, sizeMismatch("channel prefix", 1)
		}
		ch, err := c.read8()
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		if ch > 15 {
			return contracts.UntimedMessage{}, false, false, fmt.Errorf("%w: channel prefix %d out of range", contracts.ErrBadChunk, ch)
		}
		*channel = &ch
		return contracts.UntimedMessage{}, false, false, nil

	case 0x2F:
		return contracts.UntimedMessage{}, false, true, nil

	case 0x51:
		if size != 3 {
			return contracts.UntimedMessage{}, false, false, sizeMismatch("tempo change", 3)
		}
		micros, err := c.read24()
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewTempoChange(*channel, micros), true, false, nil

	case 0x54:
		if size != 5 {
			return contracts.UntimedMessage{}, false, false, sizeMismatch("SMPTE offset", 5)
		}
		v, err := c.read(5)
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewSMPTEOffset(*channel, v[0], v[1], v[2], v[3], v[4]), true, false, nil

	case 0x58:
		if size != 4 {
			return contracts.UntimedMessage{}, false, false, sizeMismatch("time signature", 4)
		}
		v, err := c.read(4)
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewTimeSignature(*channel, v[0], v[1], v[2], v[3]), true, false, nil

	case 0x59:
		if size != 2 {
			return contracts.UntimedMessage{}, false, false, sizeMismatch("key signature", 2)
		}
		v, err := c.read(2)
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewKeySignature(*channel, int8(v[0]), v[1] != 0), true, false, nil

	default:
		data, err := c.read(int(size))
		if err != nil {
			return contracts.UntimedMessage{}, false, false, err
		}
		return contracts.NewUnknownMeta(*channel, metaType, data), true, false, nil
	}
}

func textType(b byte) contracts.TextType {
	switch b {
	case 0x01:
		return contracts.TextAny
	case 0x02:
		return contracts.TextCopyright
	case 0x03:
		return contracts.TextTrackName
	case 0x04:
		return contracts.TextInstrumentName
	case 0x05:
		return contracts.TextLyric
	case 0x06:
		return contracts.TextMarker
	case 0x07:
		return contracts.TextCuePoint
	default:
		return contracts.TextAny
	}
}
