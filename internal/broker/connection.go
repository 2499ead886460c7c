package broker

import (
	"bytes"
	"context"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/packline-io/packline/internal/channel"
	"github.com/packline-io/packline/internal/wire"
	"github.com/packline-io/packline/pkg/concurrency"
	"github.com/packline-io/packline/pkg/logger"
)

const readChunkSize = 32 * 1024

// Handler dispatches inbound packets from one accepted connection against a
// shared App, spawning one push-loop goroutine per subscribe. One Handler
// is constructed per accepted socket; its Sink is the single shared writer
// every push loop for that connection writes through.
type Handler struct {
	app  ChannelRegistry
	conn net.Conn
	sink *Sink
	id   string
}

func NewHandler(app ChannelRegistry, conn net.Conn) *Handler {
	return &Handler{
		app:  app,
		conn: conn,
		sink: NewSink(conn),
		id:   uuid.NewString(),
	}
}

// Serve reads and dispatches packets until the connection closes, a decode
// error forces termination, or ctx is found canceled. ctx is checked before
// each read; a read that is already blocked is not interrupted by
// cancellation. A clean close returns nil.
func (h *Handler) Serve(ctx context.Context) error {
	logger.L().InfoContext(ctx, "connection accepted",
		"connection_id", h.id, "remote_addr", h.conn.RemoteAddr().String())
	defer logger.L().InfoContext(ctx, "connection closed", "connection_id", h.id)

	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := h.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if derr := h.drainDecoded(ctx, &buf); derr != nil {
			return derr
		}
	}
}

// drainDecoded repeatedly decodes and dispatches complete frames buffered
// in buf, leaving any trailing partial frame in place.
func (h *Handler) drainDecoded(ctx context.Context, buf *bytes.Buffer) error {
	for {
		pkt, consumed, ok, decErr := wire.Decode(buf.Bytes())
		if decErr != nil {
			logger.L().WarnContext(ctx, "terminating connection on malformed frame",
				"connection_id", h.id, "error", decErr)
			return decErr
		}
		if !ok {
			return nil
		}

		remaining := append([]byte(nil), buf.Bytes()[consumed:]...)
		buf.Reset()
		buf.Write(remaining)

		if pkt == nil {
			continue // unknown (route, version): consumed, not dispatched
		}
		h.dispatch(ctx, pkt)
	}
}

func (h *Handler) dispatch(ctx context.Context, pkt *wire.Packet) {
	switch msg := pkt.Message.(type) {
	case wire.ConnectRequestV1:
		h.handleConnect(ctx, pkt.ContextID)
	case wire.ProduceV1:
		h.handleProduce(ctx, pkt.ContextID, msg)
	case wire.SubscribeTopicRequestV1:
		h.handleSubscribe(ctx, pkt.ContextID, msg)
	default:
		logger.L().WarnContext(ctx, "decoded message has no broker-side handler",
			"connection_id", h.id, "route", pkt.Route, "version", pkt.Version)
	}
}

func (h *Handler) handleConnect(ctx context.Context, contextID uint32) {
	if err := h.sink.Send(&wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteConnect,
		Version:   1,
		ContextID: contextID,
		Message:   wire.ConnectRequestV1{},
	}); err != nil {
		logger.L().DebugContext(ctx, "failed to send connect acknowledgement",
			"connection_id", h.id, "error", err)
	}
}

func (h *Handler) handleProduce(ctx context.Context, contextID uint32, msg wire.ProduceV1) {
	status := wire.ProduceStatusOK
	if ch, ok := h.app.GetChannel(ctx, msg.Topic, 1); ok {
		ch.Producer().Produce(msg.Records)
	} else {
		status = wire.ProduceStatusTopicNotFound
	}

	if err := h.sink.Send(&wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteProduceReply,
		Version:   2,
		ContextID: contextID,
		Message:   wire.ProduceV1ResponseV2{Status: status},
	}); err != nil {
		logger.L().DebugContext(ctx, "failed to send produce response",
			"connection_id", h.id, "error", err)
	}
}

func (h *Handler) handleSubscribe(ctx context.Context, contextID uint32, msg wire.SubscribeTopicRequestV1) {
	ch, ok := h.app.GetChannel(ctx, msg.Topic, 1)
	if !ok {
		logger.L().InfoContext(ctx, "subscribe to unknown topic, push loop exits immediately",
			"connection_id", h.id, "topic", msg.Topic)
		return
	}

	consumer := ch.Consumer(msg.ConsumerGroupID)
	concurrency.SafeGo(ctx, func() {
		h.pushLoop(ctx, contextID, msg.Topic, consumer)
	})
}

func (h *Handler) pushLoop(ctx context.Context, contextID uint32, topic string, consumer *channel.Consumer) {
	for {
		records, err := consumer.Consume(ctx)
		if err != nil {
			return
		}

		err = h.sink.Send(&wire.Packet{
			Type:      wire.PacketStream,
			Route:     wire.RouteConsume,
			Version:   1,
			ContextID: contextID,
			Message:   wire.ConsumeV1{Topic: topic, Records: records},
		})
		if err != nil {
			logger.L().DebugContext(ctx, "push loop ending on send failure",
				"connection_id", h.id, "topic", topic, "error", err)
			return
		}
	}
}
