package progress

import (
	"sync"
	"time"
)

// Phase represents the current phase of a run
type Phase string

const (
	PhaseWalking   Phase = "walking"
	PhaseSizing    Phase = "sizing"
	PhaseHashing   Phase = "hashing"
	PhaseVerifying Phase = "verifying"
	PhaseComplete  Phase = "complete"
)

// Update is a point-in-time progress snapshot
type Update struct {
	Phase       Phase
	CurrentPath string
	Processed   int // files whose pipeline fate is decided
	Total       int
	GroupsFound int
	WastedSize  int64
	StartTime   time.Time
}

// Reporter provides thread-safe progress reporting with subscriber
// channels. Updates are delivered best-effort; a slow listener drops
// updates rather than stalling the workers.
type Reporter struct {
	mu        sync.RWMutex
	latest    *Update
	listeners []chan Update
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// Subscribe returns a channel that receives progress updates
func (r *Reporter) Subscribe() <-chan Update {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Update, 16)
	r.listeners = append(r.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (r *Reporter) Unsubscribe(ch <-chan Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Publish records the update and notifies listeners without blocking
func (r *Reporter) Publish(update Update) {
	r.mu.Lock()
	r.latest = &update
	listeners := make([]chan Update, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// Latest returns the most recent update, or nil before the first one
func (r *Reporter) Latest() *Update {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Close closes all listener channels
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, listener := range r.listeners {
		close(listener)
	}
	r.listeners = nil
}
