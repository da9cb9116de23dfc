//go:build darwin
// +build darwin

package darwintransport

import (
	"fmt"

	"github.com/leandrodaf/midiengine/internal/codec"
	"github.com/leandrodaf/midiengine/internal/transport/bytequeue"
	"github.com/leandrodaf/midiengine/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// internalPortConnection is the Disconnect-only surface
// coremidi.InputPort.Connect's return value offers.
type internalPortConnection interface {
	Disconnect()
}

// Transport manages CoreMIDI input and output on macOS.
type Transport struct {
	logger     contracts.Logger
	client     coremidi.Client
	outputPort coremidi.OutputPort
}

// New initializes a CoreMIDI-backed Transport.
func New(opts *contracts.Options) (contracts.Transport, error) {
	name := "midiengine"
	if opts.CoreMIDIConfig != nil && opts.CoreMIDIConfig.ClientName != "" {
		name = opts.CoreMIDIConfig.ClientName
	}
	client, err := coremidi.NewClient(name)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("CoreMIDI client created", opts.Logger.Field().String("name", name))

	outputPort, err := coremidi.NewOutputPort(client, "midiengine output")
	if err != nil {
		return nil, fmt.Errorf("creating output port: %w", err)
	}
	return &Transport{logger: opts.Logger, client: client, outputPort: outputPort}, nil
}

// ListDevices returns every CoreMIDI source currently visible to the
// system.
func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, contracts.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// Open connects an input port to the given source index and returns an
// InputStream that delivers its raw bytes.
func (t *Transport) Open(deviceID int) (contracts.InputStream, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		return nil, contracts.ErrInvalidMIDIDevice
	}
	source := sources[deviceID]

	stream := &inputStream{Queue: bytequeue.New(), logger: t.logger}
	inputPort, err := coremidi.NewInputPort(t.client, "midiengine input", stream.handlePacket)
	if err != nil {
		return nil, fmt.Errorf("creating input port: %w", err)
	}
	conn, err := inputPort.Connect(source)
	if err != nil {
		return nil, fmt.Errorf("connecting to MIDI source: %w", err)
	}
	stream.conn = conn
	t.logger.Info("MIDI device connected", t.logger.Field().Int("deviceID", deviceID), t.logger.Field().String("deviceName", source.Name()))
	return stream, nil
}

// ListOutputDevices returns every CoreMIDI destination currently visible
// to the system.
func (t *Transport) ListOutputDevices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI destinations: %w", err)
	}
	if len(destinations) == 0 {
		return nil, contracts.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, dest := range destinations {
		entity := dest.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         dest.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// OpenOutput binds the shared output port to the destination at
// deviceID and returns an OutputStream that sends packets to it.
func (t *Transport) OpenOutput(deviceID int) (contracts.OutputStream, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("retrieving MIDI destinations: %w", err)
	}
	if deviceID < 0 || deviceID >= len(destinations) {
		return nil, contracts.ErrInvalidMIDIDevice
	}
	dest := destinations[deviceID]
	t.logger.Info("MIDI output device opened", t.logger.Field().Int("deviceID", deviceID), t.logger.Field().String("deviceName", dest.Name()))
	return &outputStream{port: t.outputPort, dest: dest, logger: t.logger}, nil
}

// inputStream adapts one connected CoreMIDI input port to
// contracts.InputStream.
type inputStream struct {
	*bytequeue.Queue
	logger contracts.Logger
	conn   internalPortConnection
}

func (s *inputStream) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	s.Push(packet.Data)
}

// Close disconnects the port and unblocks any pending read with io.EOF.
func (s *inputStream) Close() error {
	if s.conn != nil {
		s.conn.Disconnect()
	}
	return s.Queue.Close()
}

// outputStream adapts one CoreMIDI destination to contracts.ByteSink and
// contracts.RealtimeWriter. CoreMIDI sends whole packets rather than a
// byte stream, so each Write/WriteByte/WriteRealtime call is reassembled
// into one complete wire message before it is handed to the output port:
// a call beginning with a status byte starts a new message and updates
// lastStatus, and a call that doesn't (running-status data bytes written
// by the transmitter) is prefixed with the latched status byte from the
// previous call.
type outputStream struct {
	port       coremidi.OutputPort
	dest       coremidi.Destination
	logger     contracts.Logger
	lastStatus byte
}

func (s *outputStream) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if err := s.send(s.completeMessage(data)); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (s *outputStream) WriteByte(b byte) error {
	return s.send(s.completeMessage([]byte{b}))
}

func (s *outputStream) WriteRealtime(b byte) error {
	return s.send([]byte{b})
}

// completeMessage reconstructs a full wire message from one Write call's
// worth of bytes, latching or borrowing the status byte as needed.
func (s *outputStream) completeMessage(data []byte) []byte {
	if codec.IsStatus(data[0]) {
		s.lastStatus = data[0]
		return data
	}
	full := make([]byte, 0, len(data)+1)
	full = append(full, s.lastStatus)
	return append(full, data...)
}

func (s *outputStream) send(msg []byte) error {
	if err := s.port.Send(s.dest, coremidi.Packet{Data: msg, Length: len(msg)}); err != nil {
		return fmt.Errorf("sending MIDI packet: %w", err)
	}
	return nil
}

// Close is a no-op: the output port and destination are owned by the
// Transport and shared across every OpenOutput call.
func (s *outputStream) Close() error {
	return nil
}
