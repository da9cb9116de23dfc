package transport

import (
	"fmt"
	"runtime"

	darwintransport "github.com/leandrodaf/midiengine/internal/transport/darwin"
	windowstransport "github.com/leandrodaf/midiengine/internal/transport/windows"
	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// initializers maps OS names to their Transport constructors.
var initializers = map[string]func(*contracts.Options) (contracts.Transport, error){
	"darwin":  darwintransport.New,
	"windows": windowstransport.New,
}

// New initializes a hardware Transport for the current operating system.
func New(opts *contracts.Options) (contracts.Transport, error) {
	if initializer, ok := initializers[runtime.GOOS]; ok {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrUnsupportedOS, runtime.GOOS)
}
