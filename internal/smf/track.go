package smf

import (
	"fmt"

	"github.com/leandrodaf/midiengine/internal/codec"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// readTrack parses one MTrk chunk's delta-time/event stream into a
// contracts.Track. Events sharing a tick (because their delta-time was 0)
// are grouped into the same TrackEntry, preserving source order within
// the group.
func readTrack(c *chunkCursor, logger contracts.Logger) (contracts.Track, error) {
	var track contracts.Track
	var tick uint64
	var lastStatus byte
	var inSysex bool
	var channel *uint8

	appendAt := func(t uint64, msg contracts.UntimedMessage) {
		if n := len(track); n > 0 && track[n-1].Tick == t {
			track[n-1].Messages = append(track[n-1].Messages, msg)
			return
		}
		track = append(track, contracts.TrackEntry{Tick: t, Messages: []contracts.UntimedMessage{msg}})
	}

	for {
		delta, err := c.readVLQ()
		if err != nil {
			return nil, err
		}
		tick += uint64(delta)

		b, err := c.read8()
		if err != nil {
			return nil, err
		}

		switch b {
		case 0xFF:
			lastStatus = 0
			msg, emit, end, err := readMeta(c, &channel, logger)
			if err != nil {
				return nil, err
			}
			if end {
				return track, nil
			}
			if emit {
				appendAt(tick, msg)
			}

		case 0xF7:
			lastStatus = 0
			channel = nil
			size, err := c.readVLQ()
			if err != nil {
				return nil, err
			}
			data, err := c.read(int(size))
			if err != nil {
				return nil, err
			}
			msgs, err := parseEscape(data, &inSysex, &lastStatus)
			if err != nil {
				return nil, err
			}
			for _, msg := range msgs {
				appendAt(tick, msg)
			}

		case 0xF0:
			lastStatus = 0
			channel = nil
			size, err := c.readVLQ()
			if err != nil {
				return nil, err
			}
			payload, err := c.read(int(size))
			if err != nil {
				return nil, err
			}
			data := make([]byte, 0, len(payload)+1)
			data = append(data, 0xF0)
			data = append(data, payload...)
			inSysex = len(data) == 0 || data[len(data)-1] != 0xF7
			appendAt(tick, contracts.NewSysex(data))

		default:
			channel = nil
			inSysex = false
			status := lastStatus
			var buf [2]byte
			n := 0
			if codec.IsStatus(b) {
				status = b
			} else {
				buf[0] = b
				n = 1
			}
			if status == 0x00 || status == 0xF0 || codec.InvalidStatus(status) {
				return nil, fmt.Errorf("%w: invalid status byte 0x%02X in track", contracts.ErrInvalidStatus, status)
			}
			want := codec.MessageSize(status)
			if want > 0 {
				rest, err := c.read(want - n)
				if err != nil {
					return nil, err
				}
				copy(buf[n:], rest)
			}
			if !codec.IsRealtime(status) {
				if codec.IsSystem(status) {
					lastStatus = 0
				} else {
					lastStatus = status
				}
			}
			appendAt(tick, codec.ChannelOrSystemMessage(status, buf[:want]))
		}
	}
}

// parseEscape interprets the body of an 0xF7 escape event as an arbitrary
// byte stream that may hold any mixture of sysex fragments and ordinary
// channel/system/realtime messages under running status. It walks data
// with a single forward index, rather than separate indices for the
// sysex-scanning and message-parsing branches, so a sysex terminator
// immediately followed by a running-status channel message is never
// misparsed.
func parseEscape(data []byte, inSysex *bool, lastStatus *byte) ([]contracts.UntimedMessage, error) {
	var out []contracts.UntimedMessage
	i := 0
	pending := 0 // start offset of bytes not yet emitted as a sysex fragment

	for i < len(data) {
		b := data[i]

		if *inSysex {
			if b == 0xF7 {
				out = append(out, contracts.NewSysex(data[pending:i+1]))
				*inSysex = false
				*lastStatus = 0
				i++
				pending = i
				continue
			}
			i++
			continue
		}

		switch {
		case b == 0xF0:
			*inSysex = true
			i++
		case b == 0xF7:
			out = append(out, contracts.NewSysex(data[pending:i+1]))
			*lastStatus = 0
			i++
			pending = i
		default:
			status := *lastStatus
			consumedStatus := 0
			if codec.IsStatus(b) {
				status = b
				consumedStatus = 1
			}
			if status == 0 {
				return nil, fmt.Errorf("%w: no status byte in escape payload", contracts.ErrInvalidStatus)
			}
			if codec.InvalidStatus(status) {
				return nil, fmt.Errorf("%w: invalid status byte 0x%02X in escape payload", contracts.ErrInvalidStatus, status)
			}
			want := codec.MessageSize(status)
			end := i + consumedStatus + want
			if end > len(data) {
				return nil, fmt.Errorf("%w: message extends past end of escape", contracts.ErrBadChunk)
			}
			var msgData []byte
			if consumedStatus == 1 {
				msgData = data[i+1 : end]
			} else {
				msgData = data[i:end]
			}
			if !codec.IsRealtime(status) {
				if codec.IsSystem(status) {
					*lastStatus = 0
				} else {
					*lastStatus = status
				}
			}
			out = append(out, codec.ChannelOrSystemMessage(status, msgData))
			i = end
			pending = i
		}
	}

	if pending < len(data) {
		out = append(out, contracts.NewSysex(data[pending:]))
	}
	return out, nil
}
