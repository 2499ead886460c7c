package tests

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packline-io/packline/internal/broker"
	"github.com/packline-io/packline/internal/channel"
	"github.com/packline-io/packline/internal/wire"
)

// dial wires up an in-memory connection pair and starts a Handler serving
// one end, returning the other end for the test to drive.
func dial(t *testing.T, app *channel.App) (net.Conn, func()) {
	t.Helper()
	server, client := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	handler := broker.NewHandler(broker.NewAppRegistry(app), server)
	go func() { _ = handler.Serve(ctx) }()

	return client, func() {
		cancel()
		_ = client.Close()
		_ = server.Close()
	}
}

func readPacket(t *testing.T, conn net.Conn, timeout time.Duration) *wire.Packet {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		if pkt, consumed, ok, err := wire.Decode(buf); err == nil && ok {
			_ = consumed
			return pkt
		}
		n, err := conn.Read(chunk)
		require.NoError(t, err)
		buf = append(buf, chunk[:n]...)
	}
}

// S5: sending ConnectRequestV1 with context id C yields a response packet
// whose context_id equals C.
func TestScenarioS5_ConnectAcknowledged(t *testing.T) {
	app := channel.NewApp()
	conn, closeConn := dial(t, app)
	defer closeConn()

	const contextID uint32 = 12345
	_, err := conn.Write(wire.Encode(&wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteConnect,
		Version:   1,
		ContextID: contextID,
		Message:   wire.ConnectRequestV1{},
	}))
	require.NoError(t, err)

	pkt := readPacket(t, conn, 2*time.Second)
	assert.Equal(t, contextID, pkt.ContextID)
	assert.IsType(t, wire.ConnectRequestV1{}, pkt.Message)
}

// Produce against a registered topic acknowledges with status OK; against
// an unregistered topic the produce is a no-op and its acknowledgement
// carries status TopicNotFound rather than OK.
func TestHandleProduce_StatusReflectsTopicExistence(t *testing.T) {
	app := channel.NewApp()
	app.CreateChannel(context.Background(), "orders", 1)
	conn, closeConn := dial(t, app)
	defer closeConn()

	send := func(contextID uint32, topic string) {
		_, err := conn.Write(wire.Encode(&wire.Packet{
			Type:      wire.PacketRequest,
			Route:     wire.RouteProduce,
			Version:   1,
			ContextID: contextID,
			Message:   wire.ProduceV1{Topic: topic, Records: []uint32{1, 2}},
		}))
		require.NoError(t, err)
	}

	send(1, "orders")
	resp1 := readPacket(t, conn, 2*time.Second)
	assert.Equal(t, uint32(1), resp1.ContextID)
	assert.Equal(t, wire.ProduceV1ResponseV2{Status: wire.ProduceStatusOK}, resp1.Message)

	send(2, "missing")
	resp2 := readPacket(t, conn, 2*time.Second)
	assert.Equal(t, uint32(2), resp2.ContextID)
	assert.Equal(t, wire.ProduceV1ResponseV2{Status: wire.ProduceStatusTopicNotFound}, resp2.Message)
}

// Testable property 10 / S10-style stream fan-out: a subscribe followed by
// K produces results in K ConsumeV1 stream frames whose concatenated
// records equal the concatenated produce inputs, in order.
func TestSubscribeStreamsProducedBatchesInOrder(t *testing.T) {
	app := channel.NewApp()
	app.CreateChannel(context.Background(), "events", 1)
	conn, closeConn := dial(t, app)
	defer closeConn()

	const subContextID uint32 = 77
	_, err := conn.Write(wire.Encode(&wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteSubscribe,
		Version:   1,
		ContextID: subContextID,
		Message:   wire.SubscribeTopicRequestV1{Topic: "events", ConsumerGroupID: 0},
	}))
	require.NoError(t, err)

	ch, ok := app.GetChannel("events", 1)
	require.True(t, ok)
	producer := ch.Producer()

	producer.Produce([]uint32{1, 2})
	frame1 := readPacket(t, conn, 2*time.Second)
	assert.Equal(t, subContextID, frame1.ContextID)
	assert.Equal(t, wire.PacketStream, frame1.Type)
	msg1 := frame1.Message.(wire.ConsumeV1)
	assert.Equal(t, []uint32{1, 2}, msg1.Records)

	producer.Produce([]uint32{3, 4})
	frame2 := readPacket(t, conn, 2*time.Second)
	assert.Equal(t, subContextID, frame2.ContextID)
	msg2 := frame2.Message.(wire.ConsumeV1)
	assert.Equal(t, []uint32{3, 4}, msg2.Records)
}

// S6: subscribing to a nonexistent topic yields no frames, and the
// connection stays usable for a subsequent produce/response exchange.
func TestScenarioS6_SubscribeMissingTopicThenProduceStillWorks(t *testing.T) {
	app := channel.NewApp()
	app.CreateChannel(context.Background(), "present", 1)
	conn, closeConn := dial(t, app)
	defer closeConn()

	_, err := conn.Write(wire.Encode(&wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteSubscribe,
		Version:   1,
		ContextID: 1,
		Message:   wire.SubscribeTopicRequestV1{Topic: "absent", ConsumerGroupID: 0},
	}))
	require.NoError(t, err)

	_, err = conn.Write(wire.Encode(&wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteProduce,
		Version:   1,
		ContextID: 2,
		Message:   wire.ProduceV1{Topic: "present", Records: []uint32{9}},
	}))
	require.NoError(t, err)

	resp := readPacket(t, conn, 2*time.Second)
	assert.Equal(t, uint32(2), resp.ContextID)
	assert.Equal(t, wire.ProduceV1ResponseV2{Status: wire.ProduceStatusOK}, resp.Message)
}
