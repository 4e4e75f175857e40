package observable

import (
	"reflect"
	"sync"
)

// Source is an observable collection a view can be created from. Its change
// stream describes raw items; CreateView transforms it into a stream of
// view items.
type Source[T any] interface {
	attach(fn func(sourceEvent[T])) ([]T, *Subscription)
}

// View is an ordered projection of a source collection. Implementations
// must deliver changes one at a time, in the order they took effect, with
// no change lost between a consumer's Attach snapshot and its first
// delivery.
type View[V any] interface {
	// Attach returns the current view contents and subscribes fn to every
	// subsequent change, atomically: the first change fn observes is the
	// first change after the returned snapshot.
	Attach(fn func(ViewChange[V])) ([]V, *Subscription)

	// Snapshot returns a copy of the current view contents in view order.
	Snapshot() []V

	// Len returns the number of view items.
	Len() int
}

// viewPair binds one source item to its transformed view item. Pairs stay
// in source order; dead pairs are retained so filter changes can revive
// them without consulting the source.
type viewPair[T, V any] struct {
	source T
	view   V
	live   bool
}

// SynchronizedView projects a Source through a transform function and an
// optional filter, maintaining source order. Only items passing the filter
// are visible; indices in emitted changes are positions among visible items.
//
// The view applies source changes synchronously under its own lock, so its
// change stream is totally ordered. Handlers run while that lock is held
// and must not call back into the view or its source.
type SynchronizedView[T, V any] struct {
	mu        sync.Mutex
	pairs     []viewPair[T, V]
	liveCount int
	transform func(T) V
	filter    func(T, V) bool
	reg       registry[ViewChange[V]]
	srcSub    *Subscription
	disposed  bool
}

// CreateView projects src through transform with no filter. Every source
// item is visible. The view tracks src until Dispose is called.
func CreateView[T, V any](src Source[T], transform func(T) V) *SynchronizedView[T, V] {
	return CreateViewFiltered(src, transform, nil)
}

// CreateViewFiltered projects src through transform, showing only items for
// which filter returns true. A nil filter shows everything.
func CreateViewFiltered[T, V any](src Source[T], transform func(T) V, filter func(T, V) bool) *SynchronizedView[T, V] {
	v := &SynchronizedView[T, V]{transform: transform, filter: filter}
	v.mu.Lock()
	defer v.mu.Unlock()
	// Registration happens under the source's lock, and building the pair
	// table happens under ours, which we already hold: a source change
	// delivered concurrently blocks until the table exists.
	items, sub := src.attach(v.onSource)
	v.srcSub = sub
	v.pairs = make([]viewPair[T, V], 0, len(items))
	for _, item := range items {
		view := transform(item)
		live := v.passes(item, view)
		v.pairs = append(v.pairs, viewPair[T, V]{source: item, view: view, live: live})
		if live {
			v.liveCount++
		}
	}
	return v
}

// Attach implements View.
func (v *SynchronizedView[T, V]) Attach(fn func(ViewChange[V])) ([]V, *Subscription) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked(), v.reg.add(fn)
}

// Snapshot implements View.
func (v *SynchronizedView[T, V]) Snapshot() []V {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked()
}

// Len implements View.
func (v *SynchronizedView[T, V]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.liveCount
}

// SyncRoot returns the view's lock. Holding it freezes the view and every
// consumer fed from it; do not call view methods while it is held.
func (v *SynchronizedView[T, V]) SyncRoot() sync.Locker {
	return &v.mu
}

// AttachFilter installs or replaces the filter and recomputes visibility.
// Consumers observe a single filter-reset change carrying the new contents.
func (v *SynchronizedView[T, V]) AttachFilter(filter func(T, V) bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.filter = filter
	v.refilterLocked()
}

// ResetFilter removes the filter, making every source item visible again.
// Consumers observe a single filter-reset change carrying the new contents.
func (v *SynchronizedView[T, V]) ResetFilter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.filter = nil
	v.refilterLocked()
}

func (v *SynchronizedView[T, V]) refilterLocked() {
	v.liveCount = 0
	for i := range v.pairs {
		v.pairs[i].live = v.passes(v.pairs[i].source, v.pairs[i].view)
		if v.pairs[i].live {
			v.liveCount++
		}
	}
	// Skip the contents snapshot when nobody is attached.
	if !v.reg.active() {
		return
	}
	v.reg.emit(ViewChange[V]{
		Action:   ActionFilterReset,
		NewIndex: IndexUnknown,
		OldIndex: IndexUnknown,
		Contents: v.visibleLocked(),
	})
}

// Dispose detaches the view from its source. Further source changes are
// ignored; attached consumers receive nothing more. Dispose is idempotent.
func (v *SynchronizedView[T, V]) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	sub := v.srcSub
	v.mu.Unlock()
	sub.Cancel()
}

func (v *SynchronizedView[T, V]) passes(source T, view V) bool {
	return v.filter == nil || v.filter(source, view)
}

func (v *SynchronizedView[T, V]) visibleLocked() []V {
	out := make([]V, 0, v.liveCount)
	for _, p := range v.pairs {
		if p.live {
			out = append(out, p.view)
		}
	}
	return out
}

// liveBefore returns the number of visible pairs ahead of position. This is
// the view index of the pair at position when that pair is visible.
func (v *SynchronizedView[T, V]) liveBefore(position int) int {
	n := 0
	for i := 0; i < position; i++ {
		if v.pairs[i].live {
			n++
		}
	}
	return n
}

// onSource applies one source change to the pair table and emits the
// translated view change, if any. Runs under the source's lock; takes the
// view's lock for the duration so reads and emissions stay ordered.
func (v *SynchronizedView[T, V]) onSource(e sourceEvent[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	switch e.action {
	case ActionAdd:
		v.applyAdd(e)
	case ActionRemove:
		v.applyRemove(e)
	case ActionReplace:
		v.applyReplace(e)
	case ActionMove:
		v.applyMove(e)
	case ActionReset:
		v.pairs = v.pairs[:0]
		v.liveCount = 0
		v.reg.emit(ViewChange[V]{
			Action:   ActionReset,
			NewIndex: IndexUnknown,
			OldIndex: IndexUnknown,
		})
	}
}

func (v *SynchronizedView[T, V]) applyAdd(e sourceEvent[T]) {
	position := e.newIndex
	if position == IndexUnknown {
		position = len(v.pairs)
	}
	view := v.transform(e.newItem)
	pair := viewPair[T, V]{source: e.newItem, view: view, live: v.passes(e.newItem, view)}
	v.pairs = append(v.pairs, viewPair[T, V]{})
	copy(v.pairs[position+1:], v.pairs[position:])
	v.pairs[position] = pair
	if !pair.live {
		return
	}
	v.liveCount++
	viewIndex := IndexUnknown
	if e.newIndex != IndexUnknown {
		viewIndex = v.liveBefore(position)
	}
	v.reg.emit(ViewChange[V]{
		Action:   ActionAdd,
		NewItem:  view,
		NewIndex: viewIndex,
		OldIndex: IndexUnknown,
	})
}

func (v *SynchronizedView[T, V]) applyRemove(e sourceEvent[T]) {
	position := e.oldIndex
	if position == IndexUnknown {
		position = v.findSource(e.oldItem)
		if position < 0 {
			return
		}
	}
	pair := v.pairs[position]
	viewIndex := IndexUnknown
	if pair.live && e.oldIndex != IndexUnknown {
		viewIndex = v.liveBefore(position)
	}
	v.pairs = append(v.pairs[:position], v.pairs[position+1:]...)
	if !pair.live {
		return
	}
	v.liveCount--
	v.reg.emit(ViewChange[V]{
		Action:   ActionRemove,
		OldItem:  pair.view,
		NewIndex: IndexUnknown,
		OldIndex: viewIndex,
	})
}

func (v *SynchronizedView[T, V]) applyReplace(e sourceEvent[T]) {
	position := e.newIndex
	old := v.pairs[position]
	view := v.transform(e.newItem)
	pair := viewPair[T, V]{source: e.newItem, view: view, live: v.passes(e.newItem, view)}
	v.pairs[position] = pair
	viewIndex := v.liveBefore(position)
	switch {
	case old.live && pair.live:
		v.reg.emit(ViewChange[V]{
			Action:   ActionReplace,
			NewItem:  view,
			OldItem:  old.view,
			NewIndex: viewIndex,
			OldIndex: viewIndex,
		})
	case old.live && !pair.live:
		// The replacement fell out of the filter: visible item vanishes.
		v.liveCount--
		v.reg.emit(ViewChange[V]{
			Action:   ActionRemove,
			OldItem:  old.view,
			NewIndex: IndexUnknown,
			OldIndex: viewIndex,
		})
	case !old.live && pair.live:
		// The replacement entered the filter: new visible item appears.
		v.liveCount++
		v.reg.emit(ViewChange[V]{
			Action:   ActionAdd,
			NewItem:  view,
			NewIndex: viewIndex,
			OldIndex: IndexUnknown,
		})
	}
}

func (v *SynchronizedView[T, V]) applyMove(e sourceEvent[T]) {
	pair := v.pairs[e.oldIndex]
	oldViewIndex := v.liveBefore(e.oldIndex)
	v.pairs = append(v.pairs[:e.oldIndex], v.pairs[e.oldIndex+1:]...)
	v.pairs = append(v.pairs, viewPair[T, V]{})
	copy(v.pairs[e.newIndex+1:], v.pairs[e.newIndex:len(v.pairs)-1])
	v.pairs[e.newIndex] = pair
	if !pair.live {
		return
	}
	v.reg.emit(ViewChange[V]{
		Action:   ActionMove,
		NewItem:  pair.view,
		NewIndex: v.liveBefore(e.newIndex),
		OldIndex: oldViewIndex,
	})
}

// findSource locates the first pair whose source item deep-equals item.
func (v *SynchronizedView[T, V]) findSource(item T) int {
	for i := range v.pairs {
		if reflect.DeepEqual(v.pairs[i].source, item) {
			return i
		}
	}
	return -1
}
