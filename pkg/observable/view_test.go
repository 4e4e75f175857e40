package observable

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
)

func upper(s string) string { return strings.ToUpper(s) }

func recordView[V any](v View[V]) ([]V, *[]ViewChange[V], *Subscription) {
	changes := &[]ViewChange[V]{}
	snap, sub := v.Attach(func(c ViewChange[V]) { *changes = append(*changes, c) })
	return snap, changes, sub
}

func TestViewTransformsSeed(t *testing.T) {
	l := NewObservableList("a", "b")
	v := CreateView(l, upper)
	defer v.Dispose()

	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Snapshot() = %v, want [A B]", got)
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
}

func TestViewFollowsListMutations(t *testing.T) {
	l := NewObservableList[string]()
	v := CreateView(l, upper)
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	l.Add("a")
	l.Insert(0, "b")
	l.Set(1, "c")
	l.Move(0, 1)
	l.RemoveAt(0)

	want := []ViewChange[string]{
		{Action: ActionAdd, NewItem: "A", NewIndex: 0, OldIndex: IndexUnknown},
		{Action: ActionAdd, NewItem: "B", NewIndex: 0, OldIndex: IndexUnknown},
		{Action: ActionReplace, NewItem: "C", OldItem: "A", NewIndex: 1, OldIndex: 1},
		{Action: ActionMove, NewItem: "B", NewIndex: 1, OldIndex: 0},
		{Action: ActionRemove, OldItem: "C", NewIndex: IndexUnknown, OldIndex: 0},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v\nwant      %+v", *changes, want)
	}
	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("Snapshot() = %v, want [B]", got)
	}
}

func TestViewFilterHidesItems(t *testing.T) {
	l := NewObservableList(1, 2, 3, 4)
	v := CreateViewFiltered(l, strconv.Itoa, func(n int, _ string) bool { return n%2 == 0 })
	defer v.Dispose()

	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"2", "4"}) {
		t.Fatalf("Snapshot() = %v, want [2 4]", got)
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
}

func TestViewFilterTranslatesAddIndex(t *testing.T) {
	l := NewObservableList(1, 2, 3, 4)
	v := CreateViewFiltered(l, strconv.Itoa, func(n int, _ string) bool { return n%2 == 0 })
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	// Hidden items emit nothing.
	l.Insert(0, 7)
	if len(*changes) != 0 {
		t.Fatalf("hidden insert produced %+v", *changes)
	}

	// Source index 3 sits after one visible item (2), so view index is 1.
	l.Insert(3, 6)
	if len(*changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(*changes))
	}
	c := (*changes)[0]
	if c.Action != ActionAdd || c.NewItem != "6" || c.NewIndex != 1 {
		t.Errorf("change = %+v, want add 6 at view index 1", c)
	}
	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"2", "6", "4"}) {
		t.Errorf("Snapshot() = %v, want [2 6 4]", got)
	}
}

func TestViewReplaceCrossesFilter(t *testing.T) {
	l := NewObservableList(1, 2, 3)
	v := CreateViewFiltered(l, strconv.Itoa, func(n int, _ string) bool { return n%2 == 0 })
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	// Visible -> hidden reports a remove.
	l.Set(1, 5)
	// Hidden -> visible reports an add.
	l.Set(0, 8)
	// Hidden -> hidden reports nothing.
	l.Set(2, 9)
	// Visible -> visible reports a replace at the same view index.
	l.Set(0, 6)

	want := []ViewChange[string]{
		{Action: ActionRemove, OldItem: "2", NewIndex: IndexUnknown, OldIndex: 0},
		{Action: ActionAdd, NewItem: "8", NewIndex: 0, OldIndex: IndexUnknown},
		{Action: ActionReplace, NewItem: "6", OldItem: "8", NewIndex: 0, OldIndex: 0},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v\nwant      %+v", *changes, want)
	}
}

func TestViewMoveTranslatesIndices(t *testing.T) {
	l := NewObservableList(1, 2, 3, 4, 5, 6)
	v := CreateViewFiltered(l, strconv.Itoa, func(n int, _ string) bool { return n%2 == 0 })
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	// Source: [1 2 3 4 5 6], visible [2 4 6]. Move source 1 (the 2) to the
	// end: visible becomes [4 6 2], a move from view 0 to view 2.
	l.Move(1, 5)

	if len(*changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(*changes))
	}
	c := (*changes)[0]
	if c.Action != ActionMove || c.NewItem != "2" || c.OldIndex != 0 || c.NewIndex != 2 {
		t.Errorf("change = %+v, want move 2 from 0 to 2", c)
	}
	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"4", "6", "2"}) {
		t.Errorf("Snapshot() = %v, want [4 6 2]", got)
	}
}

func TestViewHiddenMoveEmitsNothing(t *testing.T) {
	l := NewObservableList(1, 2, 3)
	v := CreateViewFiltered(l, strconv.Itoa, func(n int, _ string) bool { return n%2 == 0 })
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	l.Move(0, 2)

	if len(*changes) != 0 {
		t.Errorf("hidden move produced %+v", *changes)
	}
}

func TestViewResetOnClear(t *testing.T) {
	l := NewObservableList(1, 2)
	v := CreateView(l, strconv.Itoa)
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	l.Clear()

	if len(*changes) != 1 || (*changes)[0].Action != ActionReset {
		t.Fatalf("changes = %+v, want single reset", *changes)
	}
	if v.Len() != 0 {
		t.Errorf("Len() = %d after reset, want 0", v.Len())
	}
}

func TestViewOverSetPropagatesUnknownIndex(t *testing.T) {
	s := NewObservableSet[string]()
	v := CreateView[string, string](s, upper)
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	s.Add("a")
	s.Add("b")
	s.Remove("a")

	want := []ViewChange[string]{
		{Action: ActionAdd, NewItem: "A", NewIndex: IndexUnknown, OldIndex: IndexUnknown},
		{Action: ActionAdd, NewItem: "B", NewIndex: IndexUnknown, OldIndex: IndexUnknown},
		{Action: ActionRemove, OldItem: "A", NewIndex: IndexUnknown, OldIndex: IndexUnknown},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v\nwant      %+v", *changes, want)
	}
	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("Snapshot() = %v, want [B]", got)
	}
}

func TestViewAttachFilterEmitsFilterReset(t *testing.T) {
	l := NewObservableList(1, 2, 3, 4)
	v := CreateView(l, strconv.Itoa)
	defer v.Dispose()
	_, changes, _ := recordView[string](v)

	v.AttachFilter(func(n int, _ string) bool { return n > 2 })

	if len(*changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(*changes))
	}
	c := (*changes)[0]
	if c.Action != ActionFilterReset {
		t.Fatalf("action = %v, want filter-reset", c.Action)
	}
	if !reflect.DeepEqual(c.Contents, []string{"3", "4"}) {
		t.Errorf("Contents = %v, want [3 4]", c.Contents)
	}

	v.ResetFilter()
	c = (*changes)[1]
	if c.Action != ActionFilterReset || !reflect.DeepEqual(c.Contents, []string{"1", "2", "3", "4"}) {
		t.Errorf("reset change = %+v, want full contents", c)
	}
}

func TestViewRefilterWithoutConsumers(t *testing.T) {
	l := NewObservableList(1, 2, 3, 4)
	v := CreateView(l, strconv.Itoa)
	defer v.Dispose()

	_, _, sub := recordView[string](v)
	sub.Cancel()

	// Visibility is recomputed even with nobody attached.
	v.AttachFilter(func(n int, _ string) bool { return n%2 == 0 })
	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"2", "4"}) {
		t.Fatalf("Snapshot() = %v, want [2 4]", got)
	}

	// A consumer attaching afterwards sees the filtered contents and the
	// next filter change.
	snap, changes, _ := recordView[string](v)
	if !reflect.DeepEqual(snap, []string{"2", "4"}) {
		t.Errorf("Attach snapshot = %v, want [2 4]", snap)
	}
	v.ResetFilter()
	if len(*changes) != 1 || (*changes)[0].Action != ActionFilterReset {
		t.Fatalf("changes = %+v, want single filter-reset", *changes)
	}
	if got := (*changes)[0].Contents; !reflect.DeepEqual(got, []string{"1", "2", "3", "4"}) {
		t.Errorf("Contents = %v, want [1 2 3 4]", got)
	}
}

func TestViewAttachIsAtomic(t *testing.T) {
	l := NewObservableList("a")
	v := CreateView(l, upper)
	defer v.Dispose()

	snap, changes, _ := recordView[string](v)
	if !reflect.DeepEqual(snap, []string{"A"}) {
		t.Fatalf("snapshot = %v, want [A]", snap)
	}

	l.Add("b")
	if len(*changes) != 1 || (*changes)[0].NewItem != "B" {
		t.Errorf("changes = %+v, want single add of B", *changes)
	}
}

func TestViewSubscriptionCancelStopsDelivery(t *testing.T) {
	l := NewObservableList[string]()
	v := CreateView(l, upper)
	defer v.Dispose()
	_, changes, sub := recordView[string](v)

	sub.Cancel()
	l.Add("a")

	if len(*changes) != 0 {
		t.Errorf("changes after Cancel = %+v, want none", *changes)
	}
	if !sub.IsCanceled() {
		t.Error("IsCanceled() = false after Cancel")
	}
}

func TestViewDisposeDetachesFromSource(t *testing.T) {
	l := NewObservableList("a")
	v := CreateView(l, upper)
	_, changes, _ := recordView[string](v)

	v.Dispose()
	v.Dispose() // idempotent

	l.Add("b")
	if len(*changes) != 0 {
		t.Errorf("changes after Dispose = %+v, want none", *changes)
	}
	// The view keeps its last contents; it just stops tracking.
	if got := v.Snapshot(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Snapshot() = %v, want [A]", got)
	}
}

func TestViewConcurrentSourceMutations(t *testing.T) {
	l := NewObservableList[int]()
	v := CreateView(l, func(n int) int { return n })
	defer v.Dispose()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Add(i)
			}
		}()
	}
	wg.Wait()

	if v.Len() != 400 {
		t.Errorf("Len() = %d, want 400", v.Len())
	}
	if got := len(v.Snapshot()); got != 400 {
		t.Errorf("len(Snapshot()) = %d, want 400", got)
	}
}
