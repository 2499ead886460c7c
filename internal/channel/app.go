package channel

import (
	"context"
	"sync"

	"github.com/packline-io/packline/pkg/concurrency"
)

// Key identifies a single partition of a topic.
type Key struct {
	Topic     string
	Partition uint32
}

// ChannelPartitionMetadata summarizes one partition created by CreateChannel.
type ChannelPartitionMetadata struct {
	Partition uint32 `json:"partition"`
}

// ChannelMetadata summarizes the partitions created for a topic by a single
// CreateChannel call.
type ChannelMetadata struct {
	Topic      string                     `json:"topic"`
	Partitions []ChannelPartitionMetadata `json:"partitions"`
}

// App is the process-wide registry of (topic, partition) -> Channel, shared
// by every connection handler. App exclusively owns this registry; it is
// the only thing that creates or looks up channels.
type App struct {
	mu       sync.RWMutex
	channels map[Key]*Channel
}

func NewApp() *App {
	return &App{channels: make(map[Key]*Channel)}
}

// CreateChannel creates 1-indexed partitions 1..=partitions for topic and
// registers each under (topic, partition). Re-creating an existing topic
// overwrites its partitions; the overwrite is not guaranteed atomic across
// partitions, so the partitions are built out via a fan-out of one goroutine
// per partition rather than a sequential loop — there is nothing in the
// spec that requires (or benefits from) serializing them.
func (a *App) CreateChannel(ctx context.Context, topic string, partitions uint32) ChannelMetadata {
	meta := ChannelMetadata{Topic: topic, Partitions: make([]ChannelPartitionMetadata, partitions)}
	concurrency.FanOut(ctx, int(partitions), func(i int) {
		p := uint32(i + 1)
		ch := NewChannel()
		a.mu.Lock()
		a.channels[Key{Topic: topic, Partition: p}] = ch
		a.mu.Unlock()
		meta.Partitions[i] = ChannelPartitionMetadata{Partition: p}
	})
	return meta
}

// GetChannel returns the channel registered for (topic, partition), if any.
func (a *App) GetChannel(topic string, partition uint32) (*Channel, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ch, ok := a.channels[Key{Topic: topic, Partition: partition}]
	return ch, ok
}
