package client

import (
	"context"
	"net"
	"time"

	"github.com/packline-io/packline/internal/wire"
	"github.com/packline-io/packline/pkg/concurrency"
	"github.com/packline-io/packline/pkg/logger"
	"github.com/packline-io/packline/pkg/resilience"
)

// Config holds env-tagged client settings. Dial does not read it: Dial takes
// the broker address as an argument and applies no dial timeout of its own.
type Config struct {
	Address     string        `env:"PACKLINE_ADDRESS" env-default:"127.0.0.1:1883"`
	DialTimeout time.Duration `env:"PACKLINE_DIAL_TIMEOUT" env-default:"5s"`
}

// Client is one connected Packline session: a single TCP socket
// demultiplexed across concurrent request/response calls and any number of
// open subscriptions.
type Client struct {
	conn  net.Conn
	demux *Demux
}

// Dial connects to addr, making up to three attempts with exponential
// backoff (resilience.DefaultRetryConfig). Each attempt runs through a
// circuit breaker created for this call; with its default threshold of five
// failures it does not open within a single Dial. The background receive
// loop starts before Dial returns.
func Dial(ctx context.Context, addr string) (*Client, error) {
	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("packline-dial"))

	var conn net.Conn
	err := resilience.RetryWithCircuitBreaker(ctx, cb, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		dialer := net.Dialer{}
		c, dialErr := dialer.DialContext(ctx, "tcp", addr)
		if dialErr != nil {
			return dialErr
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	demux := NewDemux(conn)
	concurrency.SafeGo(ctx, func() {
		if runErr := demux.Run(ctx); runErr != nil {
			logger.L().DebugContext(ctx, "client receive loop ended", "error", runErr)
		}
	})

	return &Client{conn: conn, demux: demux}, nil
}

// Close closes the underlying connection, ending the receive loop and
// every pending Send call and open Stream.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send issues a request and blocks until its correlated response arrives,
// ctx is canceled, or the connection closes.
func (c *Client) Send(ctx context.Context, route, version uint16, msg wire.Message) (wire.Message, error) {
	pkt, err := c.demux.Send(ctx, route, version, msg)
	if err != nil {
		return nil, err
	}
	return pkt.Message, nil
}

// OpenStream issues a subscribing request and returns the stream of
// server-pushed messages it opens.
func (c *Client) OpenStream(route, version uint16, msg wire.Message) (*Stream, error) {
	return c.demux.OpenStream(route, version, msg)
}

// Connect performs the handshake, confirming the session is live once the
// echoed ConnectRequestV1 response arrives.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.Send(ctx, wire.RouteConnect, 1, wire.ConnectRequestV1{})
	return err
}

// Produce appends records to topic's partition and reports whether the
// broker recognized the topic.
func (c *Client) Produce(ctx context.Context, topic string, records []uint32) (uint8, error) {
	resp, err := c.Send(ctx, wire.RouteProduce, 1, wire.ProduceV1{Topic: topic, Records: records})
	if err != nil {
		return 0, err
	}
	if status, ok := resp.(wire.ProduceV1ResponseV2); ok {
		return status.Status, nil
	}
	return wire.ProduceStatusOK, nil
}

// Subscribe opens a stream of record batches for topic under
// consumerGroupID. Each message received is a wire.ConsumeV1 batch.
func (c *Client) Subscribe(topic string, consumerGroupID uint64) (*Stream, error) {
	return c.OpenStream(wire.RouteSubscribe, 1, wire.SubscribeTopicRequestV1{
		Topic:           topic,
		ConsumerGroupID: consumerGroupID,
	})
}
