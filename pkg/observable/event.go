package observable

// ViewAction identifies the kind of mutation a view change describes.
type ViewAction int

const (
	// ActionAdd inserts one view item.
	ActionAdd ViewAction = iota
	// ActionRemove removes one view item.
	ActionRemove
	// ActionReplace overwrites one view item in place.
	ActionReplace
	// ActionMove relocates one view item to a new position.
	ActionMove
	// ActionReset discards the entire view contents.
	ActionReset
	// ActionFilterReset recomputes the view membership wholesale after a
	// filter change. Consumers rebuild from the Contents carried on the
	// change rather than applying a positional edit.
	ActionFilterReset
)

// String returns a short lowercase name for the action.
func (a ViewAction) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionReplace:
		return "replace"
	case ActionMove:
		return "move"
	case ActionReset:
		return "reset"
	case ActionFilterReset:
		return "filter-reset"
	default:
		return "unknown"
	}
}

// IndexUnknown marks an index the producer could not determine, such as an
// insertion into an unordered source. It is legal on add, remove, and
// replace changes; a move needs an exact destination to be applicable.
const IndexUnknown = -1

// ViewChange describes exactly one mutation of a view. Values are immutable
// once emitted; consumers must not modify Contents.
//
// Which fields are meaningful depends on Action:
//
//	ActionAdd          NewItem, NewIndex (may be IndexUnknown)
//	ActionRemove       OldItem, OldIndex (may be IndexUnknown)
//	ActionReplace      NewItem, OldItem, NewIndex, OldIndex (equal, may be IndexUnknown)
//	ActionMove         NewItem, NewIndex, OldIndex (always exact)
//	ActionReset        no fields
//	ActionFilterReset  Contents
//
// Unused index fields are set to IndexUnknown and unused item fields are the
// zero value of V.
type ViewChange[V any] struct {
	// Action is the kind of mutation.
	Action ViewAction

	// NewItem is the inserted, replacing, or moved view item.
	NewItem V

	// OldItem is the removed or replaced view item.
	OldItem V

	// NewIndex is the post-change position of NewItem.
	NewIndex int

	// OldIndex is the pre-change position of OldItem.
	OldIndex int

	// Contents is the complete post-change view, in view order. It is set
	// only on ActionFilterReset, where positional deltas cannot describe
	// the recomputation.
	Contents []V
}

// sourceEvent describes one mutation of an observable source collection,
// before transformation into view items.
type sourceEvent[T any] struct {
	action   ViewAction
	newItem  T
	oldItem  T
	newIndex int
	oldIndex int
}
