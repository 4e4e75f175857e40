package viewlist

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/syncview/pkg/errors"
	"github.com/go-drift/syncview/pkg/observable"
)

// ViewList is a thread-safe mirror of an upstream view. It attaches to the
// view at construction, seeds itself from the attach snapshot, and applies
// every subsequent change to a local copy, so reads never touch the
// upstream collection or its locks.
//
// One lock guards the mirror. Every read and every change application
// acquires it, so reads are linearizable against the change stream: a read
// sees the mirror exactly as some prefix of applied changes left it.
//
// A ViewList never mutates on its own; it only follows upstream. Dispose
// detaches it, freezing the final contents.
type ViewList[V any] struct {
	mu     sync.Mutex
	items  []V
	equals func(a, b V) bool
	sub    *observable.Subscription
	id     string
	// after observes each applied change while the lock is held and may
	// return a follow-up to run once the lock is released. Set only at
	// construction.
	after    func(applied[V]) func()
	disposed bool
}

// applied describes one change after the mirror resolved its indices: an
// unknown add position becomes the append position, an unknown remove or
// replace position becomes the index the equality scan found.
type applied[V any] struct {
	action   observable.ViewAction
	newItem  V
	oldItem  V
	newIndex int
	oldIndex int
	// length is the mirror size after the change took effect.
	length int
}

// New returns a mirror of view. Equality-based operations (Contains,
// IndexOf, unknown-index changes) use deep equality; use NewWithEquality to
// override.
func New[V any](view observable.View[V]) *ViewList[V] {
	return newViewList(view, nil, nil)
}

// NewWithEquality returns a mirror of view using equals for equality-based
// operations. A nil equals falls back to deep equality.
func NewWithEquality[V any](view observable.View[V], equals func(a, b V) bool) *ViewList[V] {
	return newViewList(view, equals, nil)
}

func newViewList[V any](view observable.View[V], equals func(a, b V) bool, after func(applied[V]) func()) *ViewList[V] {
	if equals == nil {
		equals = func(a, b V) bool { return reflect.DeepEqual(a, b) }
	}
	l := &ViewList[V]{equals: equals, after: after, id: uuid.NewString()}
	// Holding our lock across Attach closes the seeding gap: a change
	// delivered while the snapshot is being installed blocks until the
	// mirror is ready, and no change between snapshot and subscription can
	// exist because Attach is atomic.
	l.mu.Lock()
	defer l.mu.Unlock()
	items, sub := view.Attach(l.onUpstream)
	l.items = items
	l.sub = sub
	return l
}

// ID returns the mirror's unique instance identifier, as carried on its
// errors.
func (l *ViewList[V]) ID() string {
	return l.id
}

// At returns the item at index.
func (l *ViewList[V]) At(index int) (V, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		var zero V
		return zero, errors.OutOfRange("viewlist.at", l.id, index, len(l.items))
	}
	return l.items[index], nil
}

// Len returns the number of mirrored items.
func (l *ViewList[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Items returns a copy of the mirrored contents.
func (l *ViewList[V]) Items() []V {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]V, len(l.items))
	copy(items, l.items)
	return items
}

// Contains reports whether an item equal to item is mirrored.
func (l *ViewList[V]) Contains(item V) bool {
	return l.IndexOf(item) >= 0
}

// IndexOf returns the index of the first item equal to item, or -1.
func (l *ViewList[V]) IndexOf(item V) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.equals(l.items[i], item) {
			return i
		}
	}
	return -1
}

// Each calls fn for every item in order. It iterates a point-in-time copy,
// so fn may freely call back into the list; changes applied during the
// iteration do not affect it.
func (l *ViewList[V]) Each(fn func(index int, item V)) {
	for i, item := range l.Items() {
		fn(i, item)
	}
}

// SyncRoot returns the mirror's lock so callers can fence a multi-step
// sequence against concurrent change application. List methods acquire the
// same lock; do not call them while holding it.
func (l *ViewList[V]) SyncRoot() sync.Locker {
	return &l.mu
}

// Dispose detaches the mirror from its upstream view. The final contents
// stay readable; changes still in flight when Dispose returns are not
// applied. Dispose is idempotent.
func (l *ViewList[V]) Dispose() {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return
	}
	l.disposed = true
	sub := l.sub
	l.mu.Unlock()
	sub.Cancel()
}

// onUpstream applies one upstream change. Runs on the mutating goroutine,
// inside the upstream view's emission; the view serializes these calls, so
// the mirror sees changes in emission order.
func (l *ViewList[V]) onUpstream(e observable.ViewChange[V]) {
	if post := l.applyEvent(e); post != nil {
		post()
	}
}

// applyEvent applies e under the lock and returns the follow-up to run once
// the lock is released, if any. The deferred unlock also covers the panic
// path, so a contract violation propagates to the upstream mutator without
// wedging the mirror.
func (l *ViewList[V]) applyEvent(e observable.ViewChange[V]) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return nil
	}
	a, ok := l.applyLocked(e)
	if !ok || l.after == nil {
		return nil
	}
	return l.after(a)
}

// applyLocked applies one change to the mirror and resolves its indices.
// It reports false when the change is defined to leave the mirror alone,
// which suppresses the hook. Changes that cannot be applied coherently mean
// the upstream contract was broken; those panic with a contract-violation
// error.
func (l *ViewList[V]) applyLocked(e observable.ViewChange[V]) (applied[V], bool) {
	const op = "viewlist.apply"
	a := applied[V]{
		action:   e.Action,
		newIndex: observable.IndexUnknown,
		oldIndex: observable.IndexUnknown,
	}
	switch e.Action {
	case observable.ActionAdd:
		index := e.NewIndex
		if index == observable.IndexUnknown {
			index = len(l.items)
		} else if index < 0 || index > len(l.items) {
			panic(errors.Contract(op, l.id,
				fmt.Sprintf("add at %d outside length %d", index, len(l.items))))
		}
		l.items = append(l.items, e.NewItem)
		copy(l.items[index+1:], l.items[index:])
		l.items[index] = e.NewItem
		a.newItem = e.NewItem
		a.newIndex = index

	case observable.ActionRemove:
		index := e.OldIndex
		if index == observable.IndexUnknown {
			index = l.indexOfLocked(e.OldItem)
			if index < 0 {
				panic(errors.Contract(op, l.id, "remove: no item equal to the carried item"))
			}
		} else if index < 0 || index >= len(l.items) {
			panic(errors.Contract(op, l.id,
				fmt.Sprintf("remove at %d outside length %d", index, len(l.items))))
		}
		a.oldItem = l.items[index]
		a.oldIndex = index
		l.items = append(l.items[:index], l.items[index+1:]...)

	case observable.ActionReplace:
		index := e.NewIndex
		if index == observable.IndexUnknown {
			index = l.indexOfLocked(e.OldItem)
			if index < 0 {
				panic(errors.Contract(op, l.id, "replace: no item equal to the carried item"))
			}
		} else if index < 0 || index >= len(l.items) {
			panic(errors.Contract(op, l.id,
				fmt.Sprintf("replace at %d outside length %d", index, len(l.items))))
		}
		a.oldItem = l.items[index]
		l.items[index] = e.NewItem
		a.newItem = e.NewItem
		a.newIndex = index
		a.oldIndex = index

	case observable.ActionMove:
		// A move without a destination cannot be applied positionally;
		// the mirror stays as it is.
		if e.NewIndex == observable.IndexUnknown {
			return a, false
		}
		if e.OldIndex < 0 || e.OldIndex >= len(l.items) {
			panic(errors.Contract(op, l.id,
				fmt.Sprintf("move from %d outside length %d", e.OldIndex, len(l.items))))
		}
		if e.NewIndex < 0 || e.NewIndex >= len(l.items) {
			panic(errors.Contract(op, l.id,
				fmt.Sprintf("move to %d outside length %d", e.NewIndex, len(l.items))))
		}
		item := l.items[e.OldIndex]
		l.items = append(l.items[:e.OldIndex], l.items[e.OldIndex+1:]...)
		l.items = append(l.items, item)
		copy(l.items[e.NewIndex+1:], l.items[e.NewIndex:len(l.items)-1])
		l.items[e.NewIndex] = item
		a.newItem = item
		a.newIndex = e.NewIndex
		a.oldIndex = e.OldIndex

	case observable.ActionReset:
		l.items = l.items[:0]

	case observable.ActionFilterReset:
		l.items = append(l.items[:0], e.Contents...)

	default:
		panic(errors.Contract(op, l.id,
			fmt.Sprintf("unknown change action %d", int(e.Action))))
	}
	a.length = len(l.items)
	return a, true
}

func (l *ViewList[V]) indexOfLocked(item V) int {
	for i := range l.items {
		if l.equals(l.items[i], item) {
			return i
		}
	}
	return -1
}
