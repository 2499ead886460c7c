package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packline-io/packline/internal/wire"
)

func TestPacketRoundTrip(t *testing.T) {
	pkt := &wire.Packet{
		Type:      wire.PacketRequest,
		Route:     wire.RouteProduce,
		Version:   1,
		ContextID: 99,
		Message: wire.ProduceV1{
			Topic:   "orders",
			Records: []uint32{1, 2, 3},
		},
	}

	buf := wire.Encode(pkt)
	got, consumed, ok, err := wire.Decode(buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, len(buf), consumed)
	assert.Equal(t, pkt.Type, got.Type)
	assert.Equal(t, pkt.Route, got.Route)
	assert.Equal(t, pkt.Version, got.Version)
	assert.Equal(t, pkt.ContextID, got.ContextID)
	assert.Equal(t, pkt.Message, got.Message)
}

func TestPacketDecode_IncompleteHeader(t *testing.T) {
	_, consumed, ok, err := wire.Decode([]byte{0, 0})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, consumed)
}

func TestPacketDecode_IncompletePayload(t *testing.T) {
	pkt := &wire.Packet{
		Route:     wire.RouteSubscribe,
		Version:   1,
		ContextID: 1,
		Message:   wire.SubscribeTopicRequestV1{Topic: "events", ConsumerGroupID: 7},
	}
	full := wire.Encode(pkt)

	_, consumed, ok, err := wire.Decode(full[:len(full)-1])
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, consumed)
}

// A buffer holding two concatenated frames decodes each in turn, with the
// second frame's bytes left untouched by the first call.
func TestPacketDecode_ConcatenatedFrames(t *testing.T) {
	first := wire.Encode(&wire.Packet{
		Route:     wire.RouteConnect,
		Version:   1,
		ContextID: 1,
		Message:   wire.ConnectRequestV1{},
	})
	second := wire.Encode(&wire.Packet{
		Route:     wire.RouteProduce,
		Version:   1,
		ContextID: 2,
		Message:   wire.ProduceV1{Topic: "t", Records: []uint32{9}},
	})
	buf := append(append([]byte{}, first...), second...)

	pkt1, n1, ok1, err1 := wire.Decode(buf)
	require.NoError(t, err1)
	require.True(t, ok1)
	assert.Equal(t, len(first), n1)
	assert.Equal(t, uint32(1), pkt1.ContextID)

	pkt2, n2, ok2, err2 := wire.Decode(buf[n1:])
	require.NoError(t, err2)
	require.True(t, ok2)
	assert.Equal(t, len(second), n2)
	assert.Equal(t, uint32(2), pkt2.ContextID)
}

// An unknown (route, version) pair still frames correctly and is fully
// consumed so the stream stays aligned, but yields no message to dispatch.
func TestPacketDecode_UnknownRouteConsumedNotDispatched(t *testing.T) {
	w := wire.NewWriter()
	w.WriteString("whatever")
	payload := w.Bytes()

	frame := wire.NewWriter()
	frame.WriteI32(int32(1 + 2 + 2 + 4 + len(payload)))
	frame.WriteU8(0)
	frame.WriteU16(999)
	frame.WriteU16(1)
	frame.WriteU32(5)
	buf := append(frame.Bytes(), payload...)

	pkt, consumed, ok, err := wire.Decode(buf)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, len(buf), consumed)
	assert.Nil(t, pkt)
}

func TestPacketDecode_MalformedPayloadIsFatal(t *testing.T) {
	frame := wire.NewWriter()
	// route (2,1) = SubscribeTopicRequestV1, but payload carries a negative
	// string length where the topic should be.
	inner := wire.NewWriter()
	inner.WriteI64(-1)
	frame.WriteI32(int32(1 + 2 + 2 + 4 + len(inner.Bytes())))
	frame.WriteU8(0)
	frame.WriteU16(wire.RouteSubscribe)
	frame.WriteU16(1)
	frame.WriteU32(1)
	buf := append(frame.Bytes(), inner.Bytes()...)

	pkt, consumed, ok, err := wire.Decode(buf)
	require.Error(t, err)
	assert.True(t, ok)
	assert.Equal(t, len(buf), consumed)
	assert.Nil(t, pkt)
}

func TestProduceResponseRoutesCoexist(t *testing.T) {
	v1 := wire.Encode(&wire.Packet{Route: wire.RouteProduceReply, Version: 1, Message: wire.ProduceV1Response{}})
	v2 := wire.Encode(&wire.Packet{Route: wire.RouteProduceReply, Version: 2, Message: wire.ProduceV1ResponseV2{Status: wire.ProduceStatusTopicNotFound}})

	pkt1, _, ok1, err1 := wire.Decode(v1)
	require.NoError(t, err1)
	require.True(t, ok1)
	assert.Equal(t, wire.ProduceV1Response{}, pkt1.Message)

	pkt2, _, ok2, err2 := wire.Decode(v2)
	require.NoError(t, err2)
	require.True(t, ok2)
	assert.Equal(t, wire.ProduceV1ResponseV2{Status: wire.ProduceStatusTopicNotFound}, pkt2.Message)
}
