package observable

import (
	"reflect"
	"sync"

	"github.com/go-drift/syncview/pkg/errors"
)

// ObservableList is an ordered, in-memory collection that reports every
// mutation to attached views as it happens. All operations are safe for
// concurrent use.
//
// Change handlers run synchronously while the list's lock is held, so the
// stream a view observes is totally ordered and matches the order mutations
// took effect. Handlers must not call back into the list.
type ObservableList[T any] struct {
	mu     sync.Mutex
	items  []T
	equals func(a, b T) bool
	reg    registry[sourceEvent[T]]
}

// NewObservableList returns a list seeded with items. Remove locates items
// by deep equality; use NewObservableListWithEquality to override.
func NewObservableList[T any](items ...T) *ObservableList[T] {
	return NewObservableListWithEquality[T](nil, items...)
}

// NewObservableListWithEquality returns a list seeded with items that uses
// equals to locate items in Remove. A nil equals falls back to deep
// equality.
func NewObservableListWithEquality[T any](equals func(a, b T) bool, items ...T) *ObservableList[T] {
	if equals == nil {
		equals = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	l := &ObservableList[T]{equals: equals}
	l.items = append(l.items, items...)
	return l
}

// Add appends items to the end of the list, reporting one change per item.
func (l *ObservableList[T]) Add(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range items {
		l.items = append(l.items, item)
		l.reg.emit(sourceEvent[T]{
			action:   ActionAdd,
			newItem:  item,
			newIndex: len(l.items) - 1,
			oldIndex: IndexUnknown,
		})
	}
}

// Insert places item at index, shifting later items right. Index may equal
// Len, which appends.
func (l *ObservableList[T]) Insert(index int, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index > len(l.items) {
		return errors.OutOfRange("list.insert", "", index, len(l.items))
	}
	l.items = append(l.items, item)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = item
	l.reg.emit(sourceEvent[T]{
		action:   ActionAdd,
		newItem:  item,
		newIndex: index,
		oldIndex: IndexUnknown,
	})
	return nil
}

// Set overwrites the item at index.
func (l *ObservableList[T]) Set(index int, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return errors.OutOfRange("list.set", "", index, len(l.items))
	}
	old := l.items[index]
	l.items[index] = item
	l.reg.emit(sourceEvent[T]{
		action:   ActionReplace,
		newItem:  item,
		oldItem:  old,
		newIndex: index,
		oldIndex: index,
	})
	return nil
}

// Get returns the item at index.
func (l *ObservableList[T]) Get(index int) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, errors.OutOfRange("list.get", "", index, len(l.items))
	}
	return l.items[index], nil
}

// RemoveAt deletes the item at index.
func (l *ObservableList[T]) RemoveAt(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return errors.OutOfRange("list.removeAt", "", index, len(l.items))
	}
	l.removeAtLocked(index)
	return nil
}

// Remove deletes the first item equal to item and reports whether one was
// found.
func (l *ObservableList[T]) Remove(item T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.items {
		if l.equals(existing, item) {
			l.removeAtLocked(i)
			return true
		}
	}
	return false
}

func (l *ObservableList[T]) removeAtLocked(index int) {
	old := l.items[index]
	l.items = append(l.items[:index], l.items[index+1:]...)
	l.reg.emit(sourceEvent[T]{
		action:   ActionRemove,
		oldItem:  old,
		newIndex: IndexUnknown,
		oldIndex: index,
	})
}

// Move relocates the item at oldIndex to newIndex.
func (l *ObservableList[T]) Move(oldIndex, newIndex int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if oldIndex < 0 || oldIndex >= len(l.items) {
		return errors.OutOfRange("list.move", "", oldIndex, len(l.items))
	}
	if newIndex < 0 || newIndex >= len(l.items) {
		return errors.OutOfRange("list.move", "", newIndex, len(l.items))
	}
	if oldIndex == newIndex {
		return nil
	}
	item := l.items[oldIndex]
	l.items = append(l.items[:oldIndex], l.items[oldIndex+1:]...)
	l.items = append(l.items, item)
	copy(l.items[newIndex+1:], l.items[newIndex:len(l.items)-1])
	l.items[newIndex] = item
	l.reg.emit(sourceEvent[T]{
		action:   ActionMove,
		newItem:  item,
		newIndex: newIndex,
		oldIndex: oldIndex,
	})
	return nil
}

// Clear discards all items in one change.
func (l *ObservableList[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.reg.emit(sourceEvent[T]{
		action:   ActionReset,
		newIndex: IndexUnknown,
		oldIndex: IndexUnknown,
	})
}

// Len returns the number of items.
func (l *ObservableList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Items returns a copy of the current contents.
func (l *ObservableList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items
}

// SyncRoot returns the list's lock. Holding it blocks every mutation and
// downstream change delivery; do not call list methods while it is held.
func (l *ObservableList[T]) SyncRoot() sync.Locker {
	return &l.mu
}

// attach snapshots the current contents and subscribes fn in one atomic
// step, so no change is lost or duplicated between the two.
func (l *ObservableList[T]) attach(fn func(sourceEvent[T])) ([]T, *Subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items, l.reg.add(fn)
}
