package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ContentTypeCBOR is the content type of CBOR payloads.
const ContentTypeCBOR = "application/cbor"

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns a deterministic CBOR codec using the canonical encoding
// options.
func CBOR() (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return cborCodec{enc: em, dec: dm}, nil
}

// ContentType implements Codec.
func (c cborCodec) ContentType() string { return ContentTypeCBOR }

func (c cborCodec) Serialize(v any) (Bytes, error) {
	p, err := c.enc.Marshal(v)
	if err != nil {
		return Bytes{}, fmt.Errorf("%w: cbor: %w", ErrUnsupportedType, err)
	}
	return FromOwnedSlice(p), nil
}

func (c cborCodec) Deserialize(b Bytes, v any) error {
	if err := c.dec.Unmarshal(b.ToSlice(), v); err != nil {
		return fmt.Errorf("%w: cbor: %w", ErrDecode, err)
	}
	return nil
}
