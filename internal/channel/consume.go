package channel

import (
	"context"
	"time"
)

// BatchMax caps the number of records returned by a single Consume call.
const BatchMax = 50

// DefaultConsumeTimeout is the interval at which a Consume call with nothing
// buffered re-checks storage while it keeps waiting. Consume does not hold
// records back until the timeout elapses: it returns as soon as any record
// is available.
const DefaultConsumeTimeout = 1000 * time.Millisecond

// Consume blocks until at least one record is available for group, or ctx
// is canceled. It never returns an empty batch: if the deadline elapses
// with nothing buffered yet, it keeps waiting rather than returning. This
// realizes the batching future's poll loop as a single blocking call, using
// select to multiplex the waker channel and the deadline timer so a wake
// that arrives between polls is never lost.
func Consume(ctx context.Context, group *GroupHandler, timeout time.Duration) ([]uint32, error) {
	if timeout <= 0 {
		timeout = DefaultConsumeTimeout
	}

	handle := group.handle()
	defer handle.Close()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var buffer []uint32
	for {
		if recs := group.Consume(BatchMax - len(buffer)); len(recs) > 0 {
			buffer = append(buffer, recs...)
		}
		if len(buffer) > 0 {
			return buffer, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			// Deadline reached with nothing buffered; keep waiting instead
			// of surfacing an empty batch.
			timer.Reset(timeout)
		case <-handle.ch:
			// A producer woke us; loop around and drain.
		}
	}
}
