package detect

import (
	"sync"
)

// RequestState is the lifecycle state of the single detection slot.
type RequestState int

const (
	StateIdle RequestState = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Idle"
	}
}

// RequestSlot gates detection so at most one request is in flight.
// Transitions are strictly Idle→Pending→{Succeeded,Failed}→Idle; trigger
// attempts while Pending are rejected, not queued.
type RequestSlot struct {
	mu    sync.Mutex
	state RequestState
}

// NewRequestSlot returns an idle slot.
func NewRequestSlot() *RequestSlot {
	return &RequestSlot{}
}

// State returns the current slot state.
func (r *RequestSlot) State() RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Begin moves the slot to Pending. Returns false, without changing state,
// if a request is already in flight.
func (r *RequestSlot) Begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StatePending {
		return false
	}
	r.state = StatePending
	return true
}

// Finish records the outcome of the in-flight request. A no-op if the slot
// is not pending.
func (r *RequestSlot) Finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePending {
		return
	}
	if err != nil {
		r.state = StateFailed
	} else {
		r.state = StateSucceeded
	}
}

// Reset returns a finished slot to Idle so the next trigger can begin.
// A no-op while a request is still pending.
func (r *RequestSlot) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StatePending {
		return
	}
	r.state = StateIdle
}
