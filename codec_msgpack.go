package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgPack is the content type of MsgPack payloads.
const ContentTypeMsgPack = "application/msgpack"

// MsgPack implements Codec using MessagePack. It encodes straight into a
// Builder and decodes from a Reader, so payloads are never flattened.
type MsgPack struct{}

var _ Codec = MsgPack{}

// ContentType implements Codec.
func (MsgPack) ContentType() string { return ContentTypeMsgPack }

func (MsgPack) Serialize(v any) (Bytes, error) {
	w := NewBuilder()
	if err := msgpack.NewEncoder(w).Encode(v); err != nil {
		return Bytes{}, fmt.Errorf("%w: msgpack: %w", ErrUnsupportedType, err)
	}
	return w.Bytes(), nil
}

func (MsgPack) Deserialize(b Bytes, v any) error {
	r := b.Reader()
	if err := msgpack.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: msgpack: %w", ErrDecode, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %w: %d bytes after msgpack value", ErrDecode, ErrTrailingData, r.Len())
	}
	return nil
}
