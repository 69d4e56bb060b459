package pb

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype the versus service is served with.
const CodecName = "blockdrop"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec implements encoding.Codec for GameMessage.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*GameMessage)
	if !ok {
		return nil, fmt.Errorf("failed to marshal, message is %T, want *pb.GameMessage", v)
	}
	return m.Marshal(), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*GameMessage)
	if !ok {
		return fmt.Errorf("failed to unmarshal, message is %T, want *pb.GameMessage", v)
	}
	return m.Unmarshal(data)
}
