package midi

import (
	"io"

	"github.com/leandrodaf/midiengine/internal/codec"
	"github.com/leandrodaf/midiengine/internal/transport"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// Engine lists and opens hardware MIDI input and output devices for the
// current operating system, handing back a Receiver or Transmitter over a
// live byte stream rather than a pre-decoded event channel.
type Engine struct {
	transport contracts.Transport
	options   contracts.Options
}

// NewEngine initializes an Engine bound to the current OS's hardware
// transport (CoreMIDI on macOS, MMSYSTEM/winmm on Windows; any other OS
// reports contracts.ErrUnsupportedOS).
func NewEngine(opts ...contracts.Option) (*Engine, error) {
	options := applyDefaultOptions(opts...)
	t, err := transport.New(&options)
	if err != nil {
		return nil, err
	}
	return &Engine{transport: t, options: options}, nil
}

// ListDevices returns every hardware MIDI input source currently visible
// to the system.
func (e *Engine) ListDevices() ([]contracts.DeviceInfo, error) {
	return e.transport.ListDevices()
}

// ListOutputDevices returns every hardware MIDI output destination
// currently visible to the system.
func (e *Engine) ListOutputDevices() ([]contracts.DeviceInfo, error) {
	return e.transport.ListOutputDevices()
}

// OpenReceiver connects to the device at deviceID and returns a Receiver
// bound to its live byte stream, plus the stream's io.Closer. Callers
// must close the stream when done capturing.
func (e *Engine) OpenReceiver(deviceID int) (*Receiver, io.Closer, error) {
	stream, err := e.transport.Open(deviceID)
	if err != nil {
		return nil, nil, err
	}
	rx := codec.NewReceiver(stream, e.options.Locking, e.options.Clock, e.options.Logger)
	return rx, stream, nil
}

// OpenTransmitter connects to the output device at deviceID and returns a
// Transmitter bound to its live byte sink, plus the sink's io.Closer.
// Callers must close the sink when done sending.
func (e *Engine) OpenTransmitter(deviceID int) (*Transmitter, io.Closer, error) {
	sink, err := e.transport.OpenOutput(deviceID)
	if err != nil {
		return nil, nil, err
	}
	tx := codec.NewTransmitter(sink, e.options.Locking, e.options.OptimizeNoteOff, e.options.Logger)
	return tx, sink, nil
}
