// Package errors provides structured error handling for syncview.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindNotSupported indicates a structural mutation of a read-only list.
	KindNotSupported
	// KindOutOfRange indicates an indexed access outside current bounds.
	KindOutOfRange
	// KindContract indicates an upstream event inconsistent with the
	// mirror's current state. This is a producer bug, not a caller error.
	KindContract
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindNotSupported:
		return "not supported"
	case KindOutOfRange:
		return "out of range"
	case KindContract:
		return "contract violation"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error represents a structured error in syncview.
type Error struct {
	// Op is the operation that failed (e.g., "viewlist.At").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// View is the identity of the owning view or view list, if applicable.
	View string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.View != "" {
		return fmt.Sprintf("%s [%s] view=%s: %v", e.Op, e.Kind, e.View, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotSupported returns an Error rejecting a structural mutation of a
// read-only list.
func NotSupported(op, view string) *Error {
	return &Error{
		Op:   op,
		Kind: KindNotSupported,
		View: view,
		Err:  fmt.Errorf("list is read-only"),
	}
}

// OutOfRange returns an Error for an index outside [0, length).
func OutOfRange(op, view string, index, length int) *Error {
	return &Error{
		Op:   op,
		Kind: KindOutOfRange,
		View: view,
		Err:  fmt.Errorf("index %d out of range with length %d", index, length),
	}
}

// Contract returns an Error for an upstream event whose indices are
// inconsistent with the mirror's current bounds.
func Contract(op, view, detail string) *Error {
	return &Error{
		Op:   op,
		Kind: KindContract,
		View: view,
		Err:  fmt.Errorf("%s", detail),
	}
}

// KindOf extracts the Kind from an error chain.
// Returns KindUnknown when err is not a syncview error.
func KindOf(err error) Kind {
	for err != nil {
		if se, ok := err.(*Error); ok {
			return se.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "viewlist.QueuedDispatcher").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Handler receives errors reported by syncview.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
