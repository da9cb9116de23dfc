package midi

import (
	"github.com/leandrodaf/midiengine/internal/codec"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// Receiver reconstructs MIDI messages from a byte stream: running-status
// compression, interleaved realtime bytes, and resynchronization after
// garbage, per the live-stream reception algorithm.
type Receiver = codec.Receiver

// NewReceiver constructs a Receiver over source, applying opts over the
// same defaults NewEngine uses.
func NewReceiver(source contracts.ByteSource, opts ...contracts.Option) *Receiver {
	options := applyDefaultOptions(opts...)
	return codec.NewReceiver(source, options.Locking, options.Clock, options.Logger)
}
