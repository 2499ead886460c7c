// Command packline-client is a small demonstration CLI for pkg/client: it
// connects to a broker, subscribes to a topic, and produces a few batches
// of records to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/packline-io/packline/pkg/client"
	"github.com/packline-io/packline/pkg/logger"
)

func main() {
	address := flag.String("address", "127.0.0.1:1883", "broker address")
	topic := flag.String("topic", "events", "topic to subscribe and produce to")
	batches := flag.Int("batches", 3, "number of record batches to produce")
	flag.Parse()

	logger.Init(logger.Config{Level: "INFO", Format: "TEXT"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *address, *topic, *batches); err != nil {
		fmt.Fprintln(os.Stderr, "packline-client:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, address, topic string, batches int) error {
	c, err := client.Dial(ctx, address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	defer c.Close()

	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	stream, err := c.Subscribe(topic, 0)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	defer stream.Close()

	go printStream(ctx, stream)

	for i := 0; i < batches; i++ {
		records := []uint32{uint32(i), uint32(i + 1)}
		status, err := c.Produce(ctx, topic, records)
		if err != nil {
			return fmt.Errorf("produce: %w", err)
		}
		fmt.Printf("produced %v to %q, status=%d\n", records, topic, status)
		time.Sleep(200 * time.Millisecond)
	}

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
	return nil
}

func printStream(ctx context.Context, stream *client.Stream) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-stream.Messages():
			if !ok {
				return
			}
			fmt.Printf("received %+v\n", msg)
		}
	}
}
