// internal/notify/notify.go
//
// Per-lobby wait/notify used for long-polling. Each lobby owns one Handle;
// an update request parks on Await until either another operation signals
// the lobby or the timeout elapses.
package notify

import (
	"context"
	"sync"
	"time"
)

// Handle pairs a lobby's mutation guard with its broadcast primitive.
//
// Lock/Unlock serialize mutating operations on the lobby the handle belongs
// to, closing the read-modify-write window that per-table locking alone
// leaves open. Await never takes that guard, so held long-polls cannot
// block mutations.
//
// Signalling follows the channel-generation idiom: every Signal closes the
// current generation channel (waking all waiters parked on it) and installs
// a fresh one. A waiter that arrives after a signal parks on the new
// generation and only observes the next signal — there is no missed-signal
// buffering.
type Handle struct {
	mu sync.Mutex // lobby mutation guard

	gen sync.Mutex // guards ch swap only
	ch  chan struct{}
}

// NewHandle returns a ready-to-use handle.
func NewHandle() *Handle {
	return &Handle{ch: make(chan struct{})}
}

// Lock acquires the lobby mutation guard.
func (h *Handle) Lock() { h.mu.Lock() }

// Unlock releases the lobby mutation guard.
func (h *Handle) Unlock() { h.mu.Unlock() }

// Signal wakes every waiter currently parked in Await. It is safe to call
// while holding the mutation guard.
func (h *Handle) Signal() {
	h.gen.Lock()
	close(h.ch)
	h.ch = make(chan struct{})
	h.gen.Unlock()
}

// Await blocks until the lobby is signalled, the timeout elapses, or ctx is
// done. It reports whether a signal was observed. No data locks are held
// while parked.
func (h *Handle) Await(ctx context.Context, timeout time.Duration) bool {
	h.gen.Lock()
	ch := h.ch
	h.gen.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Clone implements store.Cloner. Handles are shared, not copied: the handle
// itself is the synchronization point for its lobby.
func (h *Handle) Clone() *Handle { return h }
