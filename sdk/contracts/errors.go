package contracts

import "errors"

// Sentinel errors surfaced by the codec and transport layers. Callers should
// compare with errors.Is, since the concrete error returned is usually
// wrapped with additional context via fmt.Errorf("%w: ...").
var (
	// ErrInvalidStatus is returned when a status byte is not a recognized
	// MIDI status (0xF4, 0xF5, 0xF9, 0xFD, or 0xF7 outside of a sysex).
	ErrInvalidStatus = errors.New("invalid status byte")

	// ErrUnexpectedStatus is returned when a new, non-realtime status byte
	// interrupts a message that was already partially received. The new
	// status byte becomes the start of the next message.
	ErrUnexpectedStatus = errors.New("unexpected status byte")

	// ErrMessageSize is returned by the SMF reader when a fixed-size meta
	// event does not carry the size its type mandates.
	ErrMessageSize = errors.New("incorrect message size")

	// ErrBadChunk is returned when an SMF chunk cannot be located, is
	// malformed, or a read runs past the bounds of a chunk.
	ErrBadChunk = errors.New("malformed SMF chunk")

	// ErrUnsupportedOS is returned when no hardware transport is registered
	// for the running operating system.
	ErrUnsupportedOS = errors.New("unsupported operating system")

	// ErrNoMIDIDevices is returned by a transport when no device sources
	// are present on the system.
	ErrNoMIDIDevices = errors.New("no MIDI devices found")

	// ErrInvalidMIDIDevice is returned when a device ID is out of range.
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")

	// ErrPlatformUnavailable is returned by dummy transports on platforms
	// where the real driver was not compiled in.
	ErrPlatformUnavailable = errors.New("MIDI functionality is not available on this platform")
)
