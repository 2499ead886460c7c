package broker

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/packline-io/packline/internal/channel"
	"github.com/packline-io/packline/pkg/logger"
)

// InstrumentedRegistry wraps a ChannelRegistry with logging and tracing,
// the same decorator shape the example pack uses for its other manager
// interfaces.
type InstrumentedRegistry struct {
	next   ChannelRegistry
	tracer trace.Tracer
}

func NewInstrumentedRegistry(next ChannelRegistry) *InstrumentedRegistry {
	return &InstrumentedRegistry{
		next:   next,
		tracer: otel.Tracer("internal/broker"),
	}
}

func (r *InstrumentedRegistry) GetChannel(ctx context.Context, topic string, partition uint32) (*channel.Channel, bool) {
	ctx, span := r.tracer.Start(ctx, "ChannelRegistry.GetChannel",
		trace.WithAttributes(
			attribute.String("packline.topic", topic),
			attribute.Int("packline.partition", int(partition)),
		))
	defer span.End()

	ch, ok := r.next.GetChannel(ctx, topic, partition)
	if !ok {
		span.SetStatus(codes.Error, "channel not found")
		logger.L().DebugContext(ctx, "channel not found", "topic", topic, "partition", partition)
	}
	return ch, ok
}

func (r *InstrumentedRegistry) CreateChannel(ctx context.Context, topic string, partitions uint32) channel.ChannelMetadata {
	ctx, span := r.tracer.Start(ctx, "ChannelRegistry.CreateChannel",
		trace.WithAttributes(
			attribute.String("packline.topic", topic),
			attribute.Int("packline.partitions", int(partitions)),
		))
	defer span.End()

	meta := r.next.CreateChannel(ctx, topic, partitions)
	logger.L().InfoContext(ctx, "channel created", "topic", topic, "partitions", partitions)
	return meta
}
