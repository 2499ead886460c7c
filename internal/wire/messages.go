package wire

// Route numbers follow the spec's allocation: 1=connect, 2=subscribe,
// 3=consume (stream), 4=produce, 5=produce response.
const (
	RouteConnect      uint16 = 1
	RouteSubscribe    uint16 = 2
	RouteConsume      uint16 = 3
	RouteProduce      uint16 = 4
	RouteProduceReply uint16 = 5
)

func init() {
	registerDecoder(RouteConnect, 1, decodeConnectRequestV1)
	registerDecoder(RouteSubscribe, 1, decodeSubscribeTopicRequestV1)
	registerDecoder(RouteConsume, 1, decodeConsumeV1)
	registerDecoder(RouteProduce, 1, decodeProduceV1)
	registerDecoder(RouteProduceReply, 1, decodeProduceV1Response)
	registerDecoder(RouteProduceReply, 2, decodeProduceV1ResponseV2)
}

// ConnectRequestV1 opens a session on a freshly accepted connection. It
// carries no fields; the act of sending it is the handshake.
type ConnectRequestV1 struct{}

func (ConnectRequestV1) Route() (uint16, uint16) { return RouteConnect, 1 }
func (ConnectRequestV1) Size() int               { return 0 }
func (ConnectRequestV1) Encode(w *Writer)        {}

func decodeConnectRequestV1(r *Reader) (Message, error) {
	return ConnectRequestV1{}, nil
}

// SubscribeTopicRequestV1 attaches the connection to a topic under a
// consumer group. Records consumed by one member of a group are not
// redelivered to others in that group.
type SubscribeTopicRequestV1 struct {
	Topic           string
	ConsumerGroupID uint64
}

func (SubscribeTopicRequestV1) Route() (uint16, uint16) { return RouteSubscribe, 1 }

func (m SubscribeTopicRequestV1) Size() int {
	return SizeofString(m.Topic) + SizeofU64()
}

func (m SubscribeTopicRequestV1) Encode(w *Writer) {
	w.WriteString(m.Topic)
	w.WriteU64(m.ConsumerGroupID)
}

func decodeSubscribeTopicRequestV1(r *Reader) (Message, error) {
	topic, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	groupID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	return SubscribeTopicRequestV1{Topic: topic, ConsumerGroupID: groupID}, nil
}

// ConsumeV1 is a server-to-client stream frame delivering a batch of records
// polled off a subscribed topic.
type ConsumeV1 struct {
	Topic   string
	Records []uint32
}

func (ConsumeV1) Route() (uint16, uint16) { return RouteConsume, 1 }

func (m ConsumeV1) Size() int {
	return SizeofString(m.Topic) + SizeofUint32Vec(m.Records)
}

func (m ConsumeV1) Encode(w *Writer) {
	w.WriteString(m.Topic)
	w.WriteUint32Vec(m.Records)
}

func decodeConsumeV1(r *Reader) (Message, error) {
	topic, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	records, err := r.ReadUint32Vec()
	if err != nil {
		return nil, err
	}
	return ConsumeV1{Topic: topic, Records: records}, nil
}

// ProduceV1 appends a batch of records to a topic's single partition.
type ProduceV1 struct {
	Topic   string
	Records []uint32
}

func (ProduceV1) Route() (uint16, uint16) { return RouteProduce, 1 }

func (m ProduceV1) Size() int {
	return SizeofString(m.Topic) + SizeofUint32Vec(m.Records)
}

func (m ProduceV1) Encode(w *Writer) {
	w.WriteString(m.Topic)
	w.WriteUint32Vec(m.Records)
}

func decodeProduceV1(r *Reader) (Message, error) {
	topic, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	records, err := r.ReadUint32Vec()
	if err != nil {
		return nil, err
	}
	return ProduceV1{Topic: topic, Records: records}, nil
}

// ProduceV1Response is the original, fieldless acknowledgement for a
// ProduceV1 request. Kept unchanged on route (5,1) for wire compatibility;
// ProduceV1ResponseV2 on (5,2) is the replacement that reports status. The
// broker in this revision always replies on (5,2) (see
// internal/broker.Handler.handleProduce), so (5,1) is decoded for any client
// still speaking the original contract but is never itself produced by this
// broker or expected by this client.
type ProduceV1Response struct{}

func (ProduceV1Response) Route() (uint16, uint16) { return RouteProduceReply, 1 }
func (ProduceV1Response) Size() int               { return 0 }
func (ProduceV1Response) Encode(w *Writer)        {}

func decodeProduceV1Response(r *Reader) (Message, error) {
	return ProduceV1Response{}, nil
}

// Produce acknowledgement status codes carried by ProduceV1ResponseV2.
const (
	ProduceStatusOK            uint8 = 0
	ProduceStatusTopicNotFound uint8 = 1
)

// ProduceV1ResponseV2 is the additive acknowledgement for ProduceV1 that
// reports whether the target topic existed, on a new route so that clients
// speaking the original (5,1) contract are unaffected.
type ProduceV1ResponseV2 struct {
	Status uint8
}

func (ProduceV1ResponseV2) Route() (uint16, uint16) { return RouteProduceReply, 2 }
func (m ProduceV1ResponseV2) Size() int             { return SizeofU8() }
func (m ProduceV1ResponseV2) Encode(w *Writer)      { w.WriteU8(m.Status) }

func decodeProduceV1ResponseV2(r *Reader) (Message, error) {
	status, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	return ProduceV1ResponseV2{Status: status}, nil
}
