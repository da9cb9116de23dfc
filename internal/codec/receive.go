package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/leandrodaf/midiengine/sdk/contracts"
)

// Receiver reconstructs messages from a contracts.ByteSource: running
// status, interleaved realtime bytes, resynchronization and sysex
// accumulation. It owns the per-source reception state for its lifetime.
type Receiver struct {
	source contracts.ByteSource
	clock  contracts.Clock
	logger contracts.Logger
	state  rxState
}

// NewReceiver constructs a Receiver bound to source.
func NewReceiver(source contracts.ByteSource, locking bool, clock contracts.Clock, logger contracts.Logger) *Receiver {
	return &Receiver{
		source: source,
		clock:  clock,
		logger: logger,
		state:  rxState{mu: newLocker(locking)},
	}
}

// Extract returns the next completed message, blocking as needed for
// bytes to arrive. It returns io.EOF once the source is exhausted, or an
// error wrapping contracts.ErrInvalidStatus / contracts.ErrUnexpectedStatus
// on a protocol violation; in both cases the receiver remains usable for
// a subsequent call (see doc comment on doExtract).
func (r *Receiver) Extract() (contracts.Message, error) {
	return r.doExtract(false)
}

// TryExtract returns the next completed message without blocking for new
// bytes to arrive. If none are immediately available (after requesting
// the source flush any pending sync), it returns a zero Message and a nil
// error.
func (r *Receiver) TryExtract() (contracts.Message, error) {
	return r.doExtract(true)
}

// doExtract implements message reconstruction, parameterized on whether
// the call may block waiting for new bytes.
// Every exit path other than a successfully constructed message leaves
// rx in a state where the next call resumes correctly: pending bytes and
// last_status survive a "would block" or EOF exit untouched, and an
// unexpected-status error repositions pending onto the new status byte.
func (r *Receiver) doExtract(dontBlock bool) (contracts.Message, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	rx := &r.state

	peek := func() (b byte, available bool, err error) {
		if dontBlock {
			if r.source.Avail() == 0 {
				if err := r.source.Sync(); err != nil {
					return 0, false, err
				}
				if r.source.Avail() == 0 {
					return 0, false, nil
				}
			}
		}
		b, err = r.source.Peek()
		if err != nil {
			r.logStreamErr(err)
			return 0, false, err
		}
		return b, true, nil
	}

	get := func() (b byte, available bool, err error) {
		b, available, err = peek()
		if err != nil || !available {
			return 0, available, err
		}
		if _, err := r.source.Next(); err != nil {
			r.logStreamErr(err)
			return 0, false, err
		}
		if !IsRealtime(b) {
			rx.pending = append(rx.pending, b)
		}
		return b, true, nil
	}

	// Step 1: resynchronize after garbage if nothing is pending and there
	// is no running status to fall back on. 0xF7 is never accepted as
	// the start of a message here (it belongs only inside sysex).
	if len(rx.pending) == 0 && rx.lastStatus == 0 {
		discarded := 0
		for {
			b, available, err := peek()
			if err != nil {
				return contracts.Message{}, err
			}
			if !available {
				return contracts.Message{}, nil
			}
			if IsStatus(b) && b != 0xF7 {
				break
			}
			if _, err := r.source.Next(); err != nil {
				return contracts.Message{}, err
			}
			discarded++
		}
		if discarded > 0 {
			r.logger.Warn("receiver resynchronized, discarding non-status bytes",
				r.logger.Field().Int("discarded", discarded))
		}
	}

	// Step 2: first byte of a message.
	if len(rx.pending) == 0 {
		b, available, err := get()
		if err != nil {
			return contracts.Message{}, err
		}
		if !available {
			return contracts.Message{}, nil
		}
		rx.pendingTime = r.clock.Now()
		if InvalidStatus(b) {
			rx.pending = nil
			rx.lastStatus = 0
			r.logger.Warn("receiver dropped invalid status byte",
				r.logger.Field().Uint8("status", b))
			return contracts.Message{}, fmt.Errorf("%w: 0x%02X", contracts.ErrInvalidStatus, b)
		}
		if IsRealtime(b) {
			return contracts.Message{UntimedMessage: RealtimeMessage(b), Timestamp: rx.pendingTime}, nil
		}
	}

	// Step 3: determine the effective status.
	status := rx.lastStatus
	newStatus := false
	if IsStatus(rx.pending[0]) {
		status = rx.pending[0]
		newStatus = true
	}

	if InvalidStatus(status) {
		rx.pending = nil
		rx.lastStatus = 0
		r.logger.Warn("receiver dropped invalid status byte",
			r.logger.Field().Uint8("status", status))
		return contracts.Message{}, fmt.Errorf("%w: 0x%02X", contracts.ErrInvalidStatus, status)
	}

	isSysex := status == 0xF0
	want := MessageSize(status)
	if newStatus {
		want++
	}

	// Step 4/5: accumulate the remaining bytes of the message.
	for isSysex || len(rx.pending) < want {
		b, available, err := get()
		if err != nil {
			return contracts.Message{}, err
		}
		if !available {
			return contracts.Message{}, nil
		}
		if isSysex && b == 0xF7 {
			break
		}
		if InvalidStatus(b) {
			rx.pending = nil
			rx.lastStatus = 0
			r.logger.Warn("receiver dropped invalid status byte",
				r.logger.Field().Uint8("status", b))
			return contracts.Message{}, fmt.Errorf("%w: 0x%02X", contracts.ErrInvalidStatus, b)
		}
		if IsRealtime(b) {
			return contracts.Message{UntimedMessage: RealtimeMessage(b), Timestamp: r.clock.Now()}, nil
		}
		if IsStatus(b) {
			r.logger.Warn("receiver recovered from unexpected status byte mid-message",
				r.logger.Field().Uint8("expectedStatus", status),
				r.logger.Field().Uint8("gotStatus", b))
			rx.pending = []byte{b}
			rx.pendingTime = r.clock.Now()
			return contracts.Message{}, fmt.Errorf("%w: 0x%02X", contracts.ErrUnexpectedStatus, b)
		}
	}

	// Step 6: latch update.
	if IsSystem(status) {
		rx.lastStatus = 0
	} else {
		rx.lastStatus = status
	}

	// Step 7: construct and return.
	var out contracts.UntimedMessage
	if isSysex {
		out = contracts.NewSysex(rx.pending)
	} else {
		data := rx.pending
		if newStatus {
			data = data[1:]
		}
		out = ChannelOrSystemMessage(status, data)
	}
	ts := rx.pendingTime
	rx.pending = nil
	return contracts.Message{UntimedMessage: out, Timestamp: ts}, nil
}

// logStreamErr reports a source-level read failure: io.EOF is the
// ordinary end-of-stream transition and logged at Debug, anything else is
// logged at Warn.
func (r *Receiver) logStreamErr(err error) {
	if errors.Is(err, io.EOF) {
		r.logger.Debug("receiver's source reached EOF")
		return
	}
	r.logger.Warn("receiver's source returned an error", r.logger.Field().Error("error", err))
}
