// Package viewlist mirrors an observable view into a thread-safe list and
// announces its changes to binding layers.
//
// # Mirroring
//
// A ViewList attaches to a view at construction and from then on applies
// every change the view emits to a private copy. Reads are served from that
// copy under a single lock, so they never contend with the source
// collection and always reflect a change-stream prefix:
//
//	list := viewlist.New[Row](rows)
//	defer list.Dispose()
//
//	row, err := list.At(0)
//
// Changes carrying an unknown position are resolved on application: adds
// append, removes and replaces locate the first equal item, and a move
// without a destination leaves the mirror alone, since it cannot be applied
// positionally. A change that cannot be applied coherently (an out-of-range
// exact index, an equality scan with no match, a move from an unknown
// position) panics with a contract-violation error, surfacing the broken
// producer at its own mutation call.
//
// # Announcing
//
// NotifyingViewList extends the mirror with listener registration and a
// pluggable Dispatcher deciding where announcements run. InlineDispatcher
// announces on the mutating goroutine; QueuedDispatcher buffers deliveries
// for a pump loop, which is the usual choice when handlers must run on a UI
// loop:
//
//	dispatcher := viewlist.NewQueuedDispatcher(0)
//	go dispatcher.Pump(ctx)
//
//	list := viewlist.NewNotifying[Row](rows, dispatcher)
//	remove := list.AddChangeListener(func(n viewlist.Notification[Row]) {
//		// runs on the pump goroutine
//	})
//	defer remove()
//
// Each applied change produces at most one Notification, in application
// order. Membership changes additionally fire count listeners. Filter
// recomputations update the mirror but announce nothing.
//
// # Read-only facade
//
// NotifyingViewList also carries the mutating half of a list interface for
// binding layers that expect one. Those methods never mutate: each returns
// a not-supported error, because the list's contents are owned by the
// upstream source. Mutations belong on the source collection, which then
// flow back through the view.
package viewlist
