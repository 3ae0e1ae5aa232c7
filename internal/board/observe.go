package board

import (
	"sync"
	"time"
)

// Observer receives the latest board value after a mutation batch.
type Observer func(*Board)

// DefaultCoalesceWindow bounds how long successive publishes are
// batched before observers run once.
const DefaultCoalesceWindow = 50 * time.Millisecond

// Notifier is a per-board observer registry. Rapid successive
// publishes within the coalesce window collapse into a single
// notification carrying the latest value, bounding the cost of
// expensive re-derivations downstream.
type Notifier struct {
	mu      sync.Mutex
	subs    map[int]Observer
	nextID  int
	window  time.Duration
	pending *Board
	timer   *time.Timer
	closed  bool
}

// NewNotifier creates a Notifier. A window of 0 uses the default.
func NewNotifier(window time.Duration) *Notifier {
	if window <= 0 {
		window = DefaultCoalesceWindow
	}
	return &Notifier{
		subs:   make(map[int]Observer),
		window: window,
	}
}

// Subscribe registers an observer and returns its deregistration
// handle. The handle is idempotent.
func (n *Notifier) Subscribe(fn Observer) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Publish records the latest board value and schedules a single
// coalesced notification. Publishes within the window replace the
// pending value; observers only ever see the newest board.
func (n *Notifier) Publish(b *Board) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	n.pending = b
	if n.timer != nil {
		return // a flush is already scheduled; it will pick up b
	}
	n.timer = time.AfterFunc(n.window, n.flush)
}

// Flush delivers any pending notification immediately. Useful in
// tests and during shutdown.
func (n *Notifier) Flush() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.mu.Unlock()
	n.flush()
}

func (n *Notifier) flush() {
	n.mu.Lock()
	b := n.pending
	n.pending = nil
	n.timer = nil
	if b == nil || n.closed {
		n.mu.Unlock()
		return
	}
	observers := make([]Observer, 0, len(n.subs))
	for _, fn := range n.subs {
		observers = append(observers, fn)
	}
	n.mu.Unlock()

	for _, fn := range observers {
		fn(b)
	}
}

// Close stops delivery. Pending notifications are dropped.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.pending = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
