package viewlist

import (
	"sync"

	"github.com/go-drift/syncview/pkg/errors"
	"github.com/go-drift/syncview/pkg/observable"
)

// Notification is one canonical change announcement for binding layers.
// Indices are always resolved: an unknown-position upstream change is
// reported at the position the mirror actually used.
//
// Action is one of ActionAdd, ActionRemove, ActionReplace, ActionMove, or
// ActionReset. Filter recomputations are absorbed by the mirror and never
// announced.
type Notification[V any] struct {
	Action   observable.ViewAction
	NewItem  V
	OldItem  V
	NewIndex int
	OldIndex int
}

// NotifyingViewList is a ViewList that additionally announces every applied
// change to registered listeners through a Dispatcher. It presents a
// read-only list: the mutating half of the facade always fails with a
// not-supported error, directing writes to the source collection.
//
// Change listeners receive one Notification per applied change, in
// application order. Count listeners fire only when membership changes
// (add, remove, reset), receiving the new length. Announcements are posted
// after the mirror lock is released, so handlers may read the list.
//
// Dispose stops event intake only. Listeners stay registered, and an
// announcement already posted to the dispatcher is still delivered when
// the dispatcher gets to it.
type NotifyingViewList[V any] struct {
	*ViewList[V]

	dispatcher Dispatcher

	lmu             sync.Mutex
	changeListeners map[int]func(Notification[V])
	countListeners  map[int]func(int)
	nextListenerID  int
}

// NewNotifying returns a notifying mirror of view posting announcements
// through dispatcher. A nil dispatcher announces inline on the mutating
// goroutine.
func NewNotifying[V any](view observable.View[V], dispatcher Dispatcher) *NotifyingViewList[V] {
	return NewNotifyingWithEquality(view, dispatcher, nil)
}

// NewNotifyingWithEquality is NewNotifying with a custom equality function
// for the underlying mirror. A nil equals falls back to deep equality.
func NewNotifyingWithEquality[V any](view observable.View[V], dispatcher Dispatcher, equals func(a, b V) bool) *NotifyingViewList[V] {
	if dispatcher == nil {
		dispatcher = InlineDispatcher{}
	}
	n := &NotifyingViewList[V]{
		dispatcher:      dispatcher,
		changeListeners: make(map[int]func(Notification[V])),
		countListeners:  make(map[int]func(int)),
	}
	n.ViewList = newViewList(view, equals, n.afterApply)
	return n
}

// AddChangeListener registers fn for every announced change and returns a
// function that removes it.
func (n *NotifyingViewList[V]) AddChangeListener(fn func(Notification[V])) func() {
	n.lmu.Lock()
	defer n.lmu.Unlock()
	id := n.nextListenerID
	n.nextListenerID++
	n.changeListeners[id] = fn
	return func() {
		n.lmu.Lock()
		defer n.lmu.Unlock()
		delete(n.changeListeners, id)
	}
}

// AddCountListener registers fn to receive the new length after every
// membership change and returns a function that removes it.
func (n *NotifyingViewList[V]) AddCountListener(fn func(count int)) func() {
	n.lmu.Lock()
	defer n.lmu.Unlock()
	id := n.nextListenerID
	n.nextListenerID++
	n.countListeners[id] = fn
	return func() {
		n.lmu.Lock()
		defer n.lmu.Unlock()
		delete(n.countListeners, id)
	}
}

// afterApply translates one applied change into its announcement. Runs
// under the mirror lock; the returned follow-up posts to the dispatcher
// once the lock is released, preserving application order because upstream
// serializes change delivery.
func (n *NotifyingViewList[V]) afterApply(a applied[V]) func() {
	if a.action == observable.ActionFilterReset {
		// Filter recomputations resynchronize the mirror silently.
		return nil
	}
	countChanged := a.action == observable.ActionAdd ||
		a.action == observable.ActionRemove ||
		a.action == observable.ActionReset

	n.lmu.Lock()
	announce := len(n.changeListeners) > 0
	announceCount := countChanged && len(n.countListeners) > 0
	n.lmu.Unlock()
	if !announce && !announceCount {
		return nil
	}

	note := Notification[V]{
		Action:   a.action,
		NewItem:  a.newItem,
		OldItem:  a.oldItem,
		NewIndex: a.newIndex,
		OldIndex: a.oldIndex,
	}
	count := a.length
	return func() {
		n.dispatcher.Post(func() {
			n.announce(note, count, countChanged)
		})
	}
}

// announce runs on the dispatcher's delivery context.
func (n *NotifyingViewList[V]) announce(note Notification[V], count int, countChanged bool) {
	n.lmu.Lock()
	change := make([]func(Notification[V]), 0, len(n.changeListeners))
	for _, fn := range n.changeListeners {
		change = append(change, fn)
	}
	var counts []func(int)
	if countChanged {
		counts = make([]func(int), 0, len(n.countListeners))
		for _, fn := range n.countListeners {
			counts = append(counts, fn)
		}
	}
	n.lmu.Unlock()

	for _, fn := range change {
		fn(note)
	}
	for _, fn := range counts {
		fn(count)
	}
}

// Append always fails: the list mirrors its upstream view and cannot be
// mutated directly. Mutate the source collection instead.
func (n *NotifyingViewList[V]) Append(item V) error {
	return errors.NotSupported("viewlist.append", n.id)
}

// Insert always fails; see Append.
func (n *NotifyingViewList[V]) Insert(index int, item V) error {
	return errors.NotSupported("viewlist.insert", n.id)
}

// Set always fails; see Append.
func (n *NotifyingViewList[V]) Set(index int, item V) error {
	return errors.NotSupported("viewlist.set", n.id)
}

// RemoveAt always fails; see Append.
func (n *NotifyingViewList[V]) RemoveAt(index int) error {
	return errors.NotSupported("viewlist.removeAt", n.id)
}

// Remove always fails; see Append.
func (n *NotifyingViewList[V]) Remove(item V) error {
	return errors.NotSupported("viewlist.remove", n.id)
}

// Clear always fails; see Append.
func (n *NotifyingViewList[V]) Clear() error {
	return errors.NotSupported("viewlist.clear", n.id)
}
