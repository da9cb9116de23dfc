package contracts

import (
	"io"
	"time"
)

// ByteSource is the ambient byte-stream abstraction the receiver
// consumes (the SMF reader takes a plain io.Reader). It deliberately mirrors a C++ streambuf's narrow
// surface (sgetc/sbumpc/in_avail/pubsync/pubseekoff) rather than Go's
// io.Reader, because the receiver needs to peek a byte without consuming
// it and to distinguish "nothing buffered right now" from EOF.
type ByteSource interface {
	// Peek returns the next byte without consuming it. It may block
	// waiting for a byte to arrive. It returns io.EOF once the stream is
	// exhausted.
	Peek() (byte, error)

	// Next consumes and returns the next byte. It may block.
	Next() (byte, error)

	// Avail reports how many bytes are immediately available without
	// blocking. A non-blocking caller uses this to decide whether calling
	// Peek/Next would block.
	Avail() int

	// Sync requests the source flush any internally buffered input. It
	// must not block waiting for new bytes to arrive.
	Sync() error
}

// Seeker is implemented by byte sources that can skip forward, such as the
// SMF reader's chunk-skipping scan for an unrecognized chunk tag.
type Seeker interface {
	// SeekForward advances the stream by n bytes without returning them.
	SeekForward(n int64) error
}

// ByteSink is the ambient byte-stream abstraction the transmitter writes
// to. It is satisfied by anything offering both io.Writer and
// io.ByteWriter, which includes *bufio.Writer and this module's own
// streamio.Writer.
type ByteSink interface {
	io.Writer
	io.ByteWriter
}

// RealtimeWriter is an optional capability of a ByteSink: a low-latency
// path for realtime bytes that bypasses whatever buffering or locking the
// sink does for ordinary writes. Detected once via a type assertion on
// first use against a given sink (see internal/codec); the sink must not
// be swapped out afterwards.
type RealtimeWriter interface {
	WriteRealtime(b byte) error
}

// Locker is satisfied by *sync.Mutex and allows substituting a no-op
// implementation when the application guarantees no concurrent access to
// a stream.
type Locker interface {
	Lock()
	Unlock()
}

// Clock supplies the instant recorded on received messages. The default
// implementation reports the wall-clock time; tests inject a fake one.
type Clock interface {
	Now() time.Time
}

// InputStream is a ByteSource bound to an open hardware MIDI input port.
type InputStream interface {
	ByteSource
	io.Closer
}

// OutputStream is a ByteSink bound to an open hardware MIDI output port.
// RealtimeWriter is embedded rather than merely optional because every
// hardware output backend can send a single status byte immediately.
type OutputStream interface {
	ByteSink
	RealtimeWriter
	io.Closer
}

// Transport is a hardware MIDI input and output backend. Concrete
// implementations live under internal/transport, one per supported OS,
// selected at runtime by runtime.GOOS.
type Transport interface {
	ListDevices() ([]DeviceInfo, error)
	Open(deviceID int) (InputStream, error)

	ListOutputDevices() ([]DeviceInfo, error)
	OpenOutput(deviceID int) (OutputStream, error)
}
