package observable

import "sync"

// ObservableSet is an unordered collection of unique items that reports
// every mutation to attached views. Because the set has no positions, its
// changes carry IndexUnknown and downstream consumers fall back to
// append-on-add and scan-on-remove. All operations are safe for concurrent
// use.
//
// Change handlers run synchronously while the set's lock is held and must
// not call back into the set.
type ObservableSet[T comparable] struct {
	mu    sync.Mutex
	items map[T]struct{}
	reg   registry[sourceEvent[T]]
}

// NewObservableSet returns a set seeded with items; duplicates collapse.
func NewObservableSet[T comparable](items ...T) *ObservableSet[T] {
	s := &ObservableSet[T]{items: make(map[T]struct{}, len(items))}
	for _, item := range items {
		s.items[item] = struct{}{}
	}
	return s
}

// Add inserts item and reports whether it was absent.
func (s *ObservableSet[T]) Add(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item]; ok {
		return false
	}
	s.items[item] = struct{}{}
	s.reg.emit(sourceEvent[T]{
		action:   ActionAdd,
		newItem:  item,
		newIndex: IndexUnknown,
		oldIndex: IndexUnknown,
	})
	return true
}

// Remove deletes item and reports whether it was present.
func (s *ObservableSet[T]) Remove(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item]; !ok {
		return false
	}
	delete(s.items, item)
	s.reg.emit(sourceEvent[T]{
		action:   ActionRemove,
		oldItem:  item,
		newIndex: IndexUnknown,
		oldIndex: IndexUnknown,
	})
	return true
}

// Contains reports whether item is present.
func (s *ObservableSet[T]) Contains(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[item]
	return ok
}

// Clear discards all items in one change.
func (s *ObservableSet[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[T]struct{})
	s.reg.emit(sourceEvent[T]{
		action:   ActionReset,
		newIndex: IndexUnknown,
		oldIndex: IndexUnknown,
	})
}

// Len returns the number of items.
func (s *ObservableSet[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of the current contents in unspecified order.
func (s *ObservableSet[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, 0, len(s.items))
	for item := range s.items {
		items = append(items, item)
	}
	return items
}

// SyncRoot returns the set's lock. Holding it blocks every mutation and
// downstream change delivery; do not call set methods while it is held.
func (s *ObservableSet[T]) SyncRoot() sync.Locker {
	return &s.mu
}

// attach snapshots the current contents and subscribes fn in one atomic
// step. The snapshot order is unspecified; views preserve it as the
// initial arrival order.
func (s *ObservableSet[T]) attach(fn func(sourceEvent[T])) ([]T, *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, 0, len(s.items))
	for item := range s.items {
		items = append(items, item)
	}
	return items, s.reg.add(fn)
}
