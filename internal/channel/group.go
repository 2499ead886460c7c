package channel

import "github.com/packline-io/packline/pkg/concurrency"

// GroupHandler is a consumer group's cursor over a channel's storage. Any
// number of Consumer values for the same group share one GroupHandler, so
// the load-peek-store sequence in Consume is mutex-serialized: two
// concurrent callers for the same group must never observe the same
// records.
type GroupHandler struct {
	mu      *concurrency.SmartMutex
	offset  int
	storage *Storage
	waker   *Waker
}

func newGroupHandler(storage *Storage) *GroupHandler {
	return &GroupHandler{
		mu:      concurrency.NewSmartMutex(concurrency.MutexConfig{Name: "consumer-group-offset"}),
		storage: storage,
		waker:   NewWaker(),
	}
}

// Consume peeks up to count records at the current offset and, if any were
// returned, advances the offset by that many before returning them. Returns
// nil if nothing new is available.
func (g *GroupHandler) Consume(count int) []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	records := g.storage.Peek(g.offset, count)
	if len(records) == 0 {
		return nil
	}
	g.offset += len(records)
	return records
}

func (g *GroupHandler) wake() {
	g.waker.Wake()
}

func (g *GroupHandler) handle() *WakerHandle {
	return g.waker.Handle()
}
