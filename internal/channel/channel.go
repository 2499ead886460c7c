package channel

import (
	"context"
	"time"

	"github.com/packline-io/packline/pkg/concurrency"
)

// Channel binds one (topic, partition)'s storage to its registry of
// consumer-group handlers. Storage and the registry are peers built once in
// NewChannel; external callers hold Producer/Consumer handles that keep the
// channel alive but never touch its topology directly.
type Channel struct {
	storage *Storage
	groups  map[uint64]*GroupHandler
	mu      *concurrency.SmartRWMutex
}

func NewChannel() *Channel {
	return &Channel{
		storage: NewStorage(),
		groups:  make(map[uint64]*GroupHandler),
		mu:      concurrency.NewSmartRWMutex(concurrency.MutexConfig{Name: "channel-groups"}),
	}
}

// Producer returns a handle bound to this channel.
func (c *Channel) Producer() *Producer {
	return &Producer{channel: c}
}

// Consumer looks up or creates the group handler for groupID and returns a
// Consumer bound to it. The handler map only ever grows; it is read-locked
// on the common path and write-locked only on a group's first use.
func (c *Channel) Consumer(groupID uint64) *Consumer {
	return &Consumer{group: c.groupHandler(groupID)}
}

func (c *Channel) groupHandler(groupID uint64) *GroupHandler {
	c.mu.RLock()
	g, ok := c.groups[groupID]
	c.mu.RUnlock()
	if ok {
		return g
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[groupID]; ok {
		return g
	}
	g = newGroupHandler(c.storage)
	c.groups[groupID] = g
	return g
}

// Producer appends records to a channel and wakes every registered consumer
// group afterward so their pending Consume calls re-poll.
type Producer struct {
	channel *Channel
}

// Produce appends records and wakes every consumer group currently
// registered on the channel.
func (p *Producer) Produce(records []uint32) {
	p.channel.storage.Enqueue(records)

	p.channel.mu.RLock()
	defer p.channel.mu.RUnlock()
	for _, g := range p.channel.groups {
		g.wake()
	}
}

// Consumer reads a channel under a single consumer-group cursor. Any number
// of Consumer values for the same group share one underlying GroupHandler.
type Consumer struct {
	group *GroupHandler
}

// Consume blocks, using the default timeout, until a non-empty batch is
// ready or ctx is canceled.
func (c *Consumer) Consume(ctx context.Context) ([]uint32, error) {
	return c.ConsumeTimeout(ctx, DefaultConsumeTimeout)
}

// ConsumeTimeout is Consume with an explicit re-check interval in place of
// DefaultConsumeTimeout, mainly for tests. Like Consume, it returns as soon
// as any record is available rather than waiting for the interval.
func (c *Consumer) ConsumeTimeout(ctx context.Context, timeout time.Duration) ([]uint32, error) {
	return Consume(ctx, c.group, timeout)
}
