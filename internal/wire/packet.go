package wire

// PacketType distinguishes a single request/response frame from a frame
// belonging to a server-to-client stream (consume push).
type PacketType uint8

const (
	PacketRequest PacketType = 0
	PacketStream  PacketType = 1
)

// Message is implemented by every concrete wire message. Route returns the
// (route, version) pair used to pick the decoder on the receiving side.
type Message interface {
	Route() (route uint16, version uint16)
	Encode(w *Writer)
	Size() int
}

// Packet is a fully framed, decoded unit of the wire protocol.
type Packet struct {
	Type      PacketType
	Route     uint16
	Version   uint16
	ContextID uint32
	Message   Message
}

const headerSize = 4 /* payload_size */ + 1 /* packet_type */ + 2 /* route */ + 2 /* version */ + 4 /* context_id */

// the portion of payload_size that sits after the payload_size field itself.
const innerHeaderSize = headerSize - 4

type routeVersion struct {
	route   uint16
	version uint16
}

type decodeFunc func(r *Reader) (Message, error)

var decoders = map[routeVersion]decodeFunc{}

// registerDecoder wires a (route, version) pair to its message decoder. Called
// from init() in messages.go.
func registerDecoder(route, version uint16, fn decodeFunc) {
	decoders[routeVersion{route, version}] = fn
}

// Decode attempts to read one framed packet from the front of buf.
//
// If buf does not yet contain a complete frame, consumed is 0 and ok is
// false — the caller must wait for more bytes and retry with the same
// (plus newly read) data; this is not an error.
//
// If the frame is complete but its (route, version) is unregistered, the
// frame is still consumed (consumed == payload_size+4, ok == true) so stream
// alignment is preserved, but pkt is nil and err is nil: the caller must
// silently drop it rather than dispatch.
//
// If the frame is complete but malformed (negative length prefix, invalid
// UTF-8, truncated composite value), consumed and ok reflect that the bytes
// were fully available, but err is non-nil: the caller must terminate the
// connection, since continuing to read would desynchronize framing.
func Decode(buf []byte) (pkt *Packet, consumed int, ok bool, err error) {
	if len(buf) < 4 {
		return nil, 0, false, nil
	}
	r := NewReader(buf)
	payloadSize, _ := r.ReadI32()
	if payloadSize < int32(innerHeaderSize) {
		return nil, 0, false, ErrOversizeFrame(nil)
	}
	total := int(payloadSize) + 4
	if len(buf) < total {
		return nil, 0, false, nil
	}

	frame := NewReader(buf[4:total])
	typ, err := frame.ReadU8()
	if err != nil {
		return nil, total, true, err
	}
	route, err := frame.ReadU16()
	if err != nil {
		return nil, total, true, err
	}
	version, err := frame.ReadU16()
	if err != nil {
		return nil, total, true, err
	}
	contextID, err := frame.ReadU32()
	if err != nil {
		return nil, total, true, err
	}

	decode, known := decoders[routeVersion{route, version}]
	if !known {
		return nil, total, true, nil
	}

	msg, decErr := decode(frame)
	if decErr != nil {
		return nil, total, true, decErr
	}

	return &Packet{
		Type:      PacketType(typ),
		Route:     route,
		Version:   version,
		ContextID: contextID,
		Message:   msg,
	}, total, true, nil
}

// Encode serializes pkt as a complete framed packet ready to write to a
// connection.
func Encode(pkt *Packet) []byte {
	w := NewWriter()
	payloadSize := int32(innerHeaderSize + pkt.Message.Size())
	w.WriteI32(payloadSize)
	w.WriteU8(uint8(pkt.Type))
	w.WriteU16(pkt.Route)
	w.WriteU16(pkt.Version)
	w.WriteU32(pkt.ContextID)
	pkt.Message.Encode(w)
	return w.Bytes()
}
