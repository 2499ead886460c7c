package broker

import (
	"net"
	"sync"

	"github.com/packline-io/packline/internal/wire"
)

// Sink is a connection's outbound half, shared by the connection's main
// dispatch loop and any number of concurrently running push loops for that
// connection's subscriptions. Writes are serialized by a mutex since
// multiple push loops may write to the same socket.
type Sink struct {
	mu   sync.Mutex
	conn net.Conn
}

func NewSink(conn net.Conn) *Sink {
	return &Sink{conn: conn}
}

// Send writes one framed packet to the connection.
func (s *Sink) Send(pkt *wire.Packet) error {
	buf := wire.Encode(pkt)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write(buf)
	return err
}
