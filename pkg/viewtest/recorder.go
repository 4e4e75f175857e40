// Package viewtest provides helpers for asserting on view list
// announcements in tests.
package viewtest

import (
	"sync"

	"github.com/go-drift/syncview/pkg/observable"
	"github.com/go-drift/syncview/pkg/viewlist"
)

// Recorder captures a notifying list's announcements in arrival order. It
// is safe for use with queued dispatchers delivering on another goroutine.
type Recorder[V any] struct {
	mu     sync.Mutex
	notes  []viewlist.Notification[V]
	counts []int
}

// NewRecorder returns an empty recorder.
func NewRecorder[V any]() *Recorder[V] {
	return &Recorder[V]{}
}

// Observe registers the recorder on list and returns a function detaching
// it again.
func (r *Recorder[V]) Observe(list *viewlist.NotifyingViewList[V]) func() {
	removeChange := list.AddChangeListener(func(n viewlist.Notification[V]) {
		r.mu.Lock()
		r.notes = append(r.notes, n)
		r.mu.Unlock()
	})
	removeCount := list.AddCountListener(func(c int) {
		r.mu.Lock()
		r.counts = append(r.counts, c)
		r.mu.Unlock()
	})
	return func() {
		removeChange()
		removeCount()
	}
}

// Notifications returns a copy of the captured notifications.
func (r *Recorder[V]) Notifications() []viewlist.Notification[V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]viewlist.Notification[V](nil), r.notes...)
}

// Actions returns just the action of each captured notification, in order.
func (r *Recorder[V]) Actions() []observable.ViewAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]observable.ViewAction, len(r.notes))
	for i, n := range r.notes {
		actions[i] = n.Action
	}
	return actions
}

// Counts returns a copy of the captured count signals, in order.
func (r *Recorder[V]) Counts() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counts...)
}

// Len returns the number of captured notifications.
func (r *Recorder[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

// Reset discards everything captured so far.
func (r *Recorder[V]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = nil
	r.counts = nil
}
