package midi

import (
	"io"

	"github.com/leandrodaf/midiengine/internal/smf"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// ReadFile parses a complete Standard MIDI File from r, applying opts
// over the same defaults NewEngine uses (notably the logger used to
// report skipped chunks and malformed meta events).
func ReadFile(r io.Reader, opts ...contracts.Option) (contracts.File, error) {
	options := applyDefaultOptions(opts...)
	return smf.Read(r, options.Logger)
}
