package viewlist

import (
	"context"

	"github.com/go-drift/syncview/pkg/errors"
)

// Dispatcher routes notification delivery to its destination context, such
// as a UI loop. Post hands over a self-contained delivery unit; the
// dispatcher decides where and when it runs. Implementations must preserve
// posting order for deliveries they run.
type Dispatcher interface {
	Post(fn func())
}

// InlineDispatcher runs each delivery synchronously on the posting goroutine.
// It is the default when no dispatcher is supplied. Handlers invoked through
// it run inside the upstream mutation call, so they must be quick and must
// not mutate the source collection.
type InlineDispatcher struct{}

// Post implements Dispatcher.
func (InlineDispatcher) Post(fn func()) { fn() }

// QueuedDispatcher buffers deliveries on a channel for a pump loop to run,
// decoupling mutating goroutines from notification handlers. Create one with
// NewQueuedDispatcher, then either run Pump on a dedicated goroutine or call
// Drain wherever deliveries should happen.
type QueuedDispatcher struct {
	queue chan func()
}

// NewQueuedDispatcher returns a dispatcher buffering up to size deliveries.
// A size of zero or less selects a default of 256.
func NewQueuedDispatcher(size int) *QueuedDispatcher {
	if size <= 0 {
		size = 256
	}
	return &QueuedDispatcher{queue: make(chan func(), size)}
}

// Post implements Dispatcher. It blocks while the buffer is full, applying
// backpressure to the mutating goroutine rather than dropping deliveries.
func (d *QueuedDispatcher) Post(fn func()) {
	d.queue <- fn
}

// Pump runs deliveries until ctx is done. A panicking handler is reported
// through the errors package and the pump keeps going.
func (d *QueuedDispatcher) Pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.queue:
			d.deliver(fn)
		}
	}
}

// Drain synchronously runs every delivery queued so far and returns how
// many ran. It does not wait for new posts.
func (d *QueuedDispatcher) Drain() int {
	n := 0
	for {
		select {
		case fn := <-d.queue:
			d.deliver(fn)
			n++
		default:
			return n
		}
	}
}

// Len returns the number of deliveries waiting in the buffer.
func (d *QueuedDispatcher) Len() int {
	return len(d.queue)
}

func (d *QueuedDispatcher) deliver(fn func()) {
	defer errors.Recover("dispatcher.deliver")
	fn()
}
