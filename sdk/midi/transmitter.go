package midi

import (
	"github.com/leandrodaf/midiengine/internal/codec"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// Transmitter serializes MIDI messages onto a byte sink, applying
// running-status compression and the note-off optimization.
type Transmitter = codec.Transmitter

// NewTransmitter constructs a Transmitter over sink, applying opts over
// the same defaults NewEngine uses.
func NewTransmitter(sink contracts.ByteSink, opts ...contracts.Option) *Transmitter {
	options := applyDefaultOptions(opts...)
	return codec.NewTransmitter(sink, options.Locking, options.OptimizeNoteOff, options.Logger)
}
