package codec

import (
	"sync"
	"time"

	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// NoopLocker satisfies contracts.Locker without taking any lock, for
// applications that guarantee single-threaded access to a given stream.
type NoopLocker struct{}

func (NoopLocker) Lock()   {}
func (NoopLocker) Unlock() {}

// newLocker returns a *sync.Mutex when locking is enabled, or a NoopLocker
// otherwise. *sync.Mutex already satisfies contracts.Locker without any
// adapter.
func newLocker(enabled bool) contracts.Locker {
	if !enabled {
		return NoopLocker{}
	}
	return &sync.Mutex{}
}

// rxState is the per-stream reception state. It is owned by the Receiver
// constructed against a given source, rather than attached to the
// source's own storage, since Go has no iostream-style extensible
// per-object side channel to hang it off of.
type rxState struct {
	mu          contracts.Locker
	pending     []byte
	pendingTime time.Time
	lastStatus  byte
}

// txState is the per-stream transmission state.
type txState struct {
	mu                contracts.Locker
	lastStatus        byte
	realtimeChecked   bool
	realtimeSupported bool
}
