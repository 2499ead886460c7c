package broker

import (
	"context"

	"github.com/packline-io/packline/internal/channel"
)

// ChannelRegistry is the subset of channel.App behavior a connection
// handler needs. It exists so the handler can be wired against either the
// bare registry or InstrumentedRegistry without depending on App's
// concrete type.
type ChannelRegistry interface {
	GetChannel(ctx context.Context, topic string, partition uint32) (*channel.Channel, bool)
	CreateChannel(ctx context.Context, topic string, partitions uint32) channel.ChannelMetadata
}

type appRegistry struct {
	app *channel.App
}

// NewAppRegistry adapts a channel.App to ChannelRegistry. GetChannel takes
// no context, since a lookup never blocks on I/O; CreateChannel's context is
// threaded through to App so its fan-out of per-partition goroutines has a
// parent to propagate, and so the tracing/logging wrapper has a span parent
// to attach to.
func NewAppRegistry(app *channel.App) ChannelRegistry {
	return &appRegistry{app: app}
}

func (a *appRegistry) GetChannel(_ context.Context, topic string, partition uint32) (*channel.Channel, bool) {
	return a.app.GetChannel(topic, partition)
}

func (a *appRegistry) CreateChannel(ctx context.Context, topic string, partitions uint32) channel.ChannelMetadata {
	return a.app.CreateChannel(ctx, topic, partitions)
}
