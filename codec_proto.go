package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// ContentTypeProto is the content type of Protocol Buffers payloads.
const ContentTypeProto = "application/x-protobuf"

type protoCodec struct {
	mo proto.MarshalOptions
	uo proto.UnmarshalOptions
}

// Proto returns a Protocol Buffers codec with deterministic marshaling.
// Values must implement proto.Message.
func Proto() Codec {
	return protoCodec{
		mo: proto.MarshalOptions{Deterministic: true},
		uo: proto.UnmarshalOptions{},
	}
}

// ContentType implements Codec.
func (p protoCodec) ContentType() string { return ContentTypeProto }

func (p protoCodec) Serialize(v any) (Bytes, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return Bytes{}, fmt.Errorf("%w: %T does not implement proto.Message", ErrUnsupportedType, v)
	}
	data, err := p.mo.Marshal(msg)
	if err != nil {
		return Bytes{}, err
	}
	return FromOwnedSlice(data), nil
}

func (p protoCodec) Deserialize(b Bytes, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T does not implement proto.Message", ErrUnsupportedType, v)
	}
	if err := p.uo.Unmarshal(b.ToSlice(), msg); err != nil {
		return fmt.Errorf("%w: protobuf: %w", ErrDecode, err)
	}
	return nil
}
