//go:build windows
// +build windows

package windowstransport

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/leandrodaf/midiengine/internal/codec"
	"github.com/leandrodaf/midiengine/internal/transport/bytequeue"
	"github.com/leandrodaf/midiengine/sdk/contracts"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// hMIDIIn is the native MMSYSTEM input device handle.
type hMIDIIn windows.Handle

const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
	mimData          = 0x3C3
)

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// hMIDIOut is the native MMSYSTEM output device handle.
type hMIDIOut windows.Handle

type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs  = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps  = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen        = winmm.NewProc("midiInOpen")
	procMidiInStart       = winmm.NewProc("midiInStart")
	procMidiInStop        = winmm.NewProc("midiInStop")
	procMidiInClose       = winmm.NewProc("midiInClose")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

const callbackNull = 0x00000000

// streamRegistry maps a small integer handle, passed through winmm as the
// dwInstance opaque value, back to the Go *inputStream it belongs to. The
// callback runs with no Go-visible call stack linking it back to Open, so
// this registry is the only way to recover the stream; a counter is used
// rather than a pointer cast through uintptr to avoid relying on object
// addresses staying stable across the syscall boundary.
var (
	registryMu  sync.Mutex
	registry    = map[uint64]*inputStream{}
	nextHandle  uint64
)

func allocHandle(s *inputStream) uint64 {
	id := atomic.AddUint64(&nextHandle, 1)
	registryMu.Lock()
	registry[id] = s
	registryMu.Unlock()
	return id
}

func freeHandle(id uint64) {
	registryMu.Lock()
	delete(registry, id)
	registryMu.Unlock()
}

// Transport manages MMSYSTEM MIDI input and output on Windows.
type Transport struct {
	logger contracts.Logger
}

// New initializes a winmm-backed Transport.
func New(opts *contracts.Options) (contracts.Transport, error) {
	opts.Logger.Info("winmm MIDI transport created")
	return &Transport{logger: opts.Logger}, nil
}

// ListDevices returns every MMSYSTEM input device currently visible.
func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		return nil, contracts.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			t.logger.Warn("failed to query MIDI device capabilities", t.logger.Field().Int("deviceID", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// Open opens the given MMSYSTEM input device and returns an InputStream
// that delivers its raw bytes.
func (t *Transport) Open(deviceID int) (contracts.InputStream, error) {
	stream := &inputStream{Queue: bytequeue.New(), logger: t.logger}
	handle := allocHandle(stream)
	stream.registryHandle = handle

	callback := windows.NewCallback(midiInCallback)
	fdwOpen := uintptr(callbackFunction | midiIOStatus)

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&stream.handle)),
		uintptr(deviceID),
		callback,
		uintptr(handle),
		fdwOpen,
	)
	if r1 != 0 {
		freeHandle(handle)
		return nil, fmt.Errorf("opening MIDI device %d: %v", deviceID, err)
	}

	if r1, _, err := procMidiInStart.Call(uintptr(stream.handle)); r1 != 0 {
		freeHandle(handle)
		return nil, fmt.Errorf("starting MIDI capture: %v", err)
	}

	t.logger.Info("MIDI device connected", t.logger.Field().Int("deviceID", deviceID))
	return stream, nil
}

// ListOutputDevices returns every MMSYSTEM output device currently
// visible.
func (t *Transport) ListOutputDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		return nil, contracts.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			t.logger.Warn("failed to query MIDI output device capabilities", t.logger.Field().Int("deviceID", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// OpenOutput opens the given MMSYSTEM output device and returns an
// OutputStream that packs written bytes into midiOutShortMsg calls.
func (t *Transport) OpenOutput(deviceID int) (contracts.OutputStream, error) {
	stream := &outputStream{logger: t.logger}

	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&stream.handle)),
		uintptr(deviceID),
		0,
		0,
		uintptr(callbackNull),
	)
	if r1 != 0 {
		return nil, fmt.Errorf("opening MIDI output device %d: %v", deviceID, err)
	}

	t.logger.Info("MIDI output device opened", t.logger.Field().Int("deviceID", deviceID))
	return stream, nil
}

// outputStream adapts one opened winmm output handle to
// contracts.ByteSink and contracts.RealtimeWriter. midiOutShortMsg only
// accepts a complete status+data message packed into a DWORD, so each
// Write/WriteByte call is reassembled into one complete message before
// being sent: a call beginning with a status byte starts a new message
// and updates lastStatus, and a call that doesn't (running-status data
// bytes written by the transmitter) is prefixed with the latched status
// byte from the previous call.
type outputStream struct {
	logger     contracts.Logger
	handle     hMIDIOut
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

func (s *outputStream) completeMessage(data []byte) []byte {
	if codec.IsStatus(data[0]) {
		s.lastStatus = data[0]
		return data
	}
	full := make([]byte, 0, len(data)+1)
	full = append(full, s.lastStatus)
	return append(full, data...)
}

// send packs msg (1 to 3 bytes: status plus up to two data bytes) into
// the DWORD midiOutShortMsg expects and sends it. Sysex output isn't
// representable as a short message; callers writing a sysex payload get
// an error rather than a silently truncated packet.
func (s *outputStream) send(msg []byte) error {
	if len(msg) == 0 || len(msg) > 3 {
		return fmt.Errorf("midiOutShortMsg cannot send a %d-byte message", len(msg))
	}
	var packed uint32
	for i, b := range msg {
		packed |= uint32(b) << (8 * i)
	}
	if r1, _, err := procMidiOutShortMsg.Call(uintptr(s.handle), uintptr(packed)); r1 != 0 {
		return fmt.Errorf("sending MIDI message: %v", err)
	}
	return nil
}

// Close closes the device handle.
func (s *outputStream) Close() error {
	if s.handle == 0 {
		return nil
	}
	if r1, _, err := procMidiOutClose.Call(uintptr(s.handle)); r1 != 0 {
		return fmt.Errorf("closing MIDI output device handle: %v", err)
	}
	return nil
}

type inputStream struct {
	*bytequeue.Queue
	logger         contracts.Logger
	handle         hMIDIIn
	registryHandle uint64
}

// Close stops and closes the device handle, unregisters the stream, and
// unblocks any pending read with io.EOF. Stopping and closing the handle
// are separate syscalls that can each independently fail; both errors,
// plus whatever the queue's own close reports, are combined rather than
// the first one discarding the rest.
func (s *inputStream) Close() error {
	var errs error
	if s.handle != 0 {
		if r1, _, err := procMidiInStop.Call(uintptr(s.handle)); r1 != 0 {
			errs = multierr.Append(errs, fmt.Errorf("stopping MIDI capture: %v", err))
		}
		if r1, _, err := procMidiInClose.Call(uintptr(s.handle)); r1 != 0 {
			errs = multierr.Append(errs, fmt.Errorf("closing MIDI device handle: %v", err))
		}
	}
	freeHandle(s.registryHandle)
	return multierr.Append(errs, s.Queue.Close())
}

// midiInCallback receives winmm's MIM_DATA notifications: a packed short
// message (status in the low byte of dwParam1, up to two data bytes in
// the next two bytes), and expands it back into the raw wire bytes the
// stream's Queue delivers to the receiver.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	if wMsg != mimData {
		return 0
	}
	registryMu.Lock()
	stream := registry[uint64(dwInstance)]
	registryMu.Unlock()
	if stream == nil {
		return 0
	}

	status := byte(dwParam1 & 0xFF)
	data1 := byte((dwParam1 >> 8) & 0xFF)
	data2 := byte((dwParam1 >> 16) & 0xFF)

	if codec.IsRealtime(status) {
		stream.Push([]byte{status})
		return 0
	}

	want := codec.MessageSize(status)
	msg := []byte{status}
	if want >= 1 {
		msg = append(msg, data1)
	}
	if want >= 2 {
		msg = append(msg, data2)
	}
	stream.Push(msg)
	return 0
}
