// Package observable provides in-memory collections that broadcast their
// mutations as a totally ordered change stream, and views that project those
// collections through transform and filter functions.
//
// # Sources
//
// ObservableList and ObservableSet are thread-safe collections. Every
// mutation is reported synchronously, under the collection's lock, to the
// views created from it, so observers see changes in exactly the order they
// took effect:
//
//	feed := observable.NewObservableList[Message]()
//	feed.Add(Message{Author: "ada", Body: "hello"})
//
// Ordered sources report exact positions. Unordered sources report
// IndexUnknown, and consumers fall back to appending on add and scanning by
// equality on remove.
//
// # Views
//
// CreateView binds a transform function over a source; CreateViewFiltered
// additionally hides items failing a predicate. The resulting
// SynchronizedView keeps source order, translates source positions into
// positions among visible items, and re-emits each source change as a
// ViewChange:
//
//	rows := observable.CreateView(feed, func(m Message) Row {
//		return Row{Text: m.Author + ": " + m.Body}
//	})
//	defer rows.Dispose()
//
// Replacing an item can move it across the filter boundary; the view then
// reports an add or remove rather than a replace, so consumers never see
// invisible items. Installing or clearing a filter recomputes visibility
// wholesale and reports a single filter-reset change carrying the new
// contents.
//
// # Attachment
//
// View.Attach returns the current contents and a Subscription in one atomic
// step: the first change a handler observes is the first change after the
// snapshot it was handed. Handlers run synchronously under the locks of the
// source and the view, so they must be quick and must not call back into
// either.
package observable
