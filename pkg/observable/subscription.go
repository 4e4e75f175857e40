package observable

import (
	"sync"
	"sync/atomic"
)

// Subscription represents an active subscription to a change stream.
// Cancel stops delivery; it is safe to call from any goroutine and is
// idempotent.
type Subscription struct {
	canceled atomic.Bool
	remove   func()
}

// Cancel detaches the subscription from its stream. Events already being
// delivered may still complete; no further deliveries begin after Cancel
// returns.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		if s.remove != nil {
			s.remove()
		}
	}
}

// IsCanceled reports whether Cancel has been called.
func (s *Subscription) IsCanceled() bool {
	return s.canceled.Load()
}

// registry tracks the handlers subscribed to one change stream. Delivery
// order follows subscription order. The zero value is ready to use.
type registry[E any] struct {
	mu      sync.Mutex
	entries []*regEntry[E]
}

type regEntry[E any] struct {
	fn  func(E)
	sub *Subscription
}

// add registers fn and returns its subscription handle.
func (r *registry[E]) add(fn func(E)) *Subscription {
	entry := &regEntry[E]{fn: fn}
	entry.sub = &Subscription{remove: func() { r.drop(entry) }}
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return entry.sub
}

func (r *registry[E]) drop(entry *regEntry[E]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e == entry {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// emit delivers e to every live handler in subscription order. The caller
// is responsible for serializing emits; the registry only guards its own
// entry list.
func (r *registry[E]) emit(e E) {
	r.mu.Lock()
	entries := make([]*regEntry[E], len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()
	for _, entry := range entries {
		if !entry.sub.IsCanceled() {
			entry.fn(e)
		}
	}
}

// active reports whether at least one live handler is registered.
func (r *registry[E]) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if !entry.sub.IsCanceled() {
			return true
		}
	}
	return false
}
