package contracts

// CoreMIDIConfig holds configuration for the CoreMIDI-backed transport.
type CoreMIDIConfig struct {
	ClientName string
}

// Options holds the finalized configuration shared by the codec and
// transport layers, built up by applying a list of Option functions over
// a zero value.
type Options struct {
	Logger   Logger
	LogLevel LogLevel
	Clock    Clock

	// Locking selects whether Receiver/Transmitter take a per-stream
	// mutex around each call. Disable only when the application already
	// guarantees no concurrent access to a given stream.
	Locking bool

	// OptimizeNoteOff enables note-off -> note-on-velocity-0 compression
	// for any note-off velocity, whenever the running status is already
	// that channel's note-on. Without it, the optimization triggers only
	// when, in addition, the note-off velocity is 0x40.
	OptimizeNoteOff bool

	CoreMIDIConfig *CoreMIDIConfig
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithLogger sets the logger used by the codec or transport.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithLogLevel sets the minimum logging level.
func WithLogLevel(level LogLevel) Option {
	return func(o *Options) { o.LogLevel = level }
}

// WithClock sets the clock used to timestamp received messages.
func WithClock(c Clock) Option {
	return func(o *Options) { o.Clock = c }
}

// WithLocking enables or disables the per-stream mutex.
func WithLocking(enabled bool) Option {
	return func(o *Options) { o.Locking = enabled }
}

// WithNoteOffOptimization enables note-off compression for any note-off
// velocity (see Options.OptimizeNoteOff).
func WithNoteOffOptimization(enabled bool) Option {
	return func(o *Options) { o.OptimizeNoteOff = enabled }
}

// WithCoreMIDIConfig sets the CoreMIDI client configuration.
func WithCoreMIDIConfig(cfg CoreMIDIConfig) Option {
	return func(o *Options) { o.CoreMIDIConfig = &cfg }
}
