package logger

import (
	"context"
	"log/slog"
	"sync"
)

// AsyncHandler buffers records and hands them to the wrapped handler from a
// single background goroutine, so callers never block on the sink (stdout,
// a remote collector, ...). When the buffer is full, DropOnFull controls
// whether new records are dropped (true) or the caller blocks (false).
type AsyncHandler struct {
	next       slog.Handler
	queue      chan asyncRecord
	dropOnFull bool
	closeOnce  sync.Once
	done       chan struct{}
}

type asyncRecord struct {
	ctx context.Context
	r   slog.Record
}

// NewAsyncHandler starts the background drain goroutine and returns the handler.
func NewAsyncHandler(next slog.Handler, bufferSize int, dropOnFull bool) *AsyncHandler {
	h := &AsyncHandler{
		next:       next,
		queue:      make(chan asyncRecord, bufferSize),
		dropOnFull: dropOnFull,
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *AsyncHandler) run() {
	defer close(h.done)
	for rec := range h.queue {
		_ = h.next.Handle(rec.ctx, rec.r)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := asyncRecord{ctx: ctx, r: r.Clone()}
	if h.dropOnFull {
		select {
		case h.queue <- rec:
		default:
			// buffer full: drop rather than block the caller
		}
		return nil
	}
	h.queue <- rec
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), queue: h.queue, dropOnFull: h.dropOnFull, done: h.done}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), queue: h.queue, dropOnFull: h.dropOnFull, done: h.done}
}

// Close stops accepting new records and waits for the queue to drain.
func (h *AsyncHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.queue)
	})
	<-h.done
}
