package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/packline-io/packline/internal/wire"
)

const streamBufferSize = 16

// ErrConnectionClosed is returned by a pending Send call when the
// connection's receive loop ends before a response arrives.
var ErrConnectionClosed = errors.New("packline: connection closed")

// Demux owns a framed TCP connection shared by concurrently running
// request/response calls and open subscriptions, routing every inbound
// packet by packet_type and context id.
type Demux struct {
	conn net.Conn

	reqMu    sync.Mutex
	requests map[uint32]chan *wire.Packet

	streamMu sync.Mutex
	streams  map[uint32]chan wire.Message

	writeMu sync.Mutex
}

func NewDemux(conn net.Conn) *Demux {
	return &Demux{
		conn:     conn,
		requests: make(map[uint32]chan *wire.Packet),
		streams:  make(map[uint32]chan wire.Message),
	}
}

// Run drives the background receive loop until the connection closes, a
// decode error occurs, or ctx is found canceled; ctx is checked before each
// read, and a read that is already blocked is not interrupted by
// cancellation. Every pending Send call and open
// Stream is torn down when Run returns. Callers run this in its own
// goroutine.
func (d *Demux) Run(ctx context.Context) error {
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)

	for {
		select {
		case <-ctx.Done():
			d.closeAll()
			return ctx.Err()
		default:
		}

		n, err := d.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			d.closeAll()
			if err == io.EOF {
				return nil
			}
			return err
		}

		for {
			pkt, consumed, ok, decErr := wire.Decode(buf.Bytes())
			if decErr != nil {
				d.closeAll()
				return decErr
			}
			if !ok {
				break
			}
			remaining := append([]byte(nil), buf.Bytes()[consumed:]...)
			buf.Reset()
			buf.Write(remaining)

			if pkt == nil {
				continue
			}
			d.route(pkt)
		}
	}
}

func (d *Demux) route(pkt *wire.Packet) {
	switch pkt.Type {
	case wire.PacketRequest:
		d.reqMu.Lock()
		ch, ok := d.requests[pkt.ContextID]
		if ok {
			delete(d.requests, pkt.ContextID)
		}
		d.reqMu.Unlock()
		if ok {
			ch <- pkt
		}
		// Unknown context ids are dropped.

	case wire.PacketStream:
		d.streamMu.Lock()
		defer d.streamMu.Unlock()
		ch, ok := d.streams[pkt.ContextID]
		if !ok {
			return
		}
		// Intentionally blocking: a full subscriber channel back-pressures
		// this connection's entire receive loop, per the spec's stated
		// backpressure policy.
		ch <- pkt.Message
	}
}

func (d *Demux) closeAll() {
	d.reqMu.Lock()
	for id, ch := range d.requests {
		close(ch)
		delete(d.requests, id)
	}
	d.reqMu.Unlock()

	d.streamMu.Lock()
	for id, ch := range d.streams {
		close(ch)
		delete(d.streams, id)
	}
	d.streamMu.Unlock()
}

func (d *Demux) write(pkt *wire.Packet) error {
	buf := wire.Encode(pkt)
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	_, err := d.conn.Write(buf)
	return err
}

// Send assigns a random context id, registers a one-shot reply channel,
// writes the packet, and waits for the correlated response.
func (d *Demux) Send(ctx context.Context, route, version uint16, msg wire.Message) (*wire.Packet, error) {
	contextID := randomContextID()
	replyCh := make(chan *wire.Packet, 1)

	d.reqMu.Lock()
	d.requests[contextID] = replyCh
	d.reqMu.Unlock()

	pkt := &wire.Packet{Type: wire.PacketRequest, Route: route, Version: version, ContextID: contextID, Message: msg}
	if err := d.write(pkt); err != nil {
		d.reqMu.Lock()
		delete(d.requests, contextID)
		d.reqMu.Unlock()
		return nil, err
	}

	select {
	case resp, ok := <-replyCh:
		if !ok {
			return nil, ErrConnectionClosed
		}
		return resp, nil
	case <-ctx.Done():
		d.reqMu.Lock()
		delete(d.requests, contextID)
		d.reqMu.Unlock()
		return nil, ctx.Err()
	}
}

// Stream is a handle to a server-initiated stream of messages opened by one
// subscribe call.
type Stream struct {
	ch        chan wire.Message
	demux     *Demux
	contextID uint32
}

// Messages returns the channel of inbound stream messages. It closes when
// the connection's receive loop ends.
func (s *Stream) Messages() <-chan wire.Message {
	return s.ch
}

// Close deregisters the stream so the demux stops routing to it.
func (s *Stream) Close() {
	s.demux.streamMu.Lock()
	delete(s.demux.streams, s.contextID)
	s.demux.streamMu.Unlock()
}

// OpenStream allocates a buffered channel, registers it under the packet's
// context id, writes the packet, and returns the stream handle.
func (d *Demux) OpenStream(route, version uint16, msg wire.Message) (*Stream, error) {
	contextID := randomContextID()
	ch := make(chan wire.Message, streamBufferSize)

	d.streamMu.Lock()
	d.streams[contextID] = ch
	d.streamMu.Unlock()

	pkt := &wire.Packet{Type: wire.PacketRequest, Route: route, Version: version, ContextID: contextID, Message: msg}
	if err := d.write(pkt); err != nil {
		d.streamMu.Lock()
		delete(d.streams, contextID)
		d.streamMu.Unlock()
		return nil, err
	}

	return &Stream{ch: ch, demux: d, contextID: contextID}, nil
}

func randomContextID() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}
