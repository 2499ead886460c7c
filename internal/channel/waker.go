package channel

import "sync"

// WakerHandle is one waiter's slot in a Waker's fan-out list. A handle is
// good for exactly one Waker and must be closed by its owner when the
// waiting consume call ends, so the list does not grow with churn.
type WakerHandle struct {
	ch chan struct{}

	mu     sync.Mutex
	waker  *Waker
	closed bool
}

// Ch returns the channel a waiter should select on to be woken.
func (h *WakerHandle) Ch() <-chan struct{} {
	return h.ch
}

func (h *WakerHandle) signal() {
	select {
	case h.ch <- struct{}{}:
	default:
		// Already has a pending wake queued; one-shot delivery, not a queue.
	}
}

// Close deregisters the handle from its parent waker. Safe to call more than
// once.
func (h *WakerHandle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	h.waker.remove(h)
}

// Waker is a fan-out wait list. Wake selects exactly one live handle,
// signals it, and rotates it to the tail so repeated wakes distribute
// round-robin across waiters instead of always hitting the same one.
type Waker struct {
	mu      sync.Mutex
	handles []*WakerHandle
}

func NewWaker() *Waker {
	return &Waker{}
}

// Handle registers a new waiter and returns its slot.
func (w *Waker) Handle() *WakerHandle {
	h := &WakerHandle{ch: make(chan struct{}, 1), waker: w}
	w.mu.Lock()
	w.handles = append(w.handles, h)
	w.mu.Unlock()
	return h
}

// Wake signals one live handle and rotates it to the tail of the list,
// skipping and removing any closed handles it encounters along the way.
func (w *Waker) Wake() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for len(w.handles) > 0 {
		h := w.handles[0]
		w.handles = append(w.handles[1:], h)

		h.mu.Lock()
		closed := h.closed
		h.mu.Unlock()

		if closed {
			w.handles = w.handles[:len(w.handles)-1]
			continue
		}

		h.signal()
		return
	}
}

func (w *Waker) remove(target *WakerHandle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, h := range w.handles {
		if h == target {
			w.handles = append(w.handles[:i], w.handles[i+1:]...)
			return
		}
	}
}
