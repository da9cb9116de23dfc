//go:build !windows
// +build !windows

package windowstransport

import "github.com/leandrodaf/midiengine/sdk/contracts"

// Transport is a stand-in used on non-Windows platforms so the factory's
// OS-dispatch map always has something to register, mirroring the
// teacher's DummyMIDIClient.
type Transport struct{}

// New returns a Transport whose methods all report
// contracts.ErrPlatformUnavailable.
func New(opts *contracts.Options) (contracts.Transport, error) {
	opts.Logger.Warn("winmm transport requested on a non-Windows platform")
	return &Transport{}, nil
}

func (t *Transport) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, contracts.ErrPlatformUnavailable
}

func (t *Transport) Open(deviceID int) (contracts.InputStream, error) {
	return nil, contracts.ErrPlatformUnavailable
}

func (t *Transport) ListOutputDevices() ([]contracts.DeviceInfo, error) {
	return nil, contracts.ErrPlatformUnavailable
}

func (t *Transport) OpenOutput(deviceID int) (contracts.OutputStream, error) {
	return nil, contracts.ErrPlatformUnavailable
}
