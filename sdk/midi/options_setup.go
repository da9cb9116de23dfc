package midi

import (
	"time"

	"github.com/leandrodaf/midiengine/internal/logger"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// wallClock reports the current time, the default contracts.Clock used
// when an application doesn't supply its own (e.g. for deterministic
// tests).
type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// applyDefaultOptions fills in Options left unset by the caller.
func applyDefaultOptions(opts ...contracts.Option) contracts.Options {
	options := &contracts.Options{Locking: true}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.Clock == nil {
		options.Clock = wallClock{}
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "midiengine"}
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options
}
