package codec

import (
	"fmt"
	"reflect"
)

// Codec maps values to payloads and back. Codecs are chosen at each call
// site; nothing in this package selects one globally.
type Codec interface {
	// ContentType names the encoding, e.g. for a transport's metadata.
	ContentType() string
	// Serialize encodes v into a new payload.
	Serialize(v any) (Bytes, error)
	// Deserialize decodes b into the value v points to. On failure the
	// target is left unchanged.
	Deserialize(b Bytes, v any) error
}

// ContentTypeZ is the content type of payloads produced by ZCodec.
const ContentTypeZ = "application/x-zbytes"

// ZCodec is the native codec. Flat types become raw payloads, pairs become
// two frames, and slices, arrays and maps become a stream of frames. It
// dispatches on the dynamic type of each value through a cached
// type-indexed registry and is safe for concurrent use.
type ZCodec struct {
	registry *registry
	strict   bool
}

var _ Codec = (*ZCodec)(nil)

// NewZCodec creates a ZCodec with its own registry.
func NewZCodec() *ZCodec {
	c := &ZCodec{}
	c.registry = newRegistry(c)
	return c
}

// WithStrictStrings makes string decoding reject invalid UTF-8, which
// catches most attempts to read a composite payload as a string.
// It returns the codec for chaining.
func (c *ZCodec) WithStrictStrings() *ZCodec {
	c.strict = true
	return c
}

// ContentType implements Codec.
func (c *ZCodec) ContentType() string { return ContentTypeZ }

// Serialize implements Codec. Unsupported types fail with
// ErrUnsupportedType before anything is encoded.
func (c *ZCodec) Serialize(v any) (Bytes, error) {
	if v == nil {
		return Bytes{}, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	return c.registry.encode(reflect.ValueOf(v))
}

// Deserialize implements Codec.
func (c *ZCodec) Deserialize(b Bytes, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNilTarget
	}
	t := rv.Type().Elem()
	e, err := c.registry.lookup(t)
	if err != nil {
		return err
	}
	out := reflect.New(t).Elem()
	if err := e.decode(b, out); err != nil {
		return err
	}
	rv.Elem().Set(out)
	return nil
}

// Register installs s as the rule for T in c, replacing the built-in one.
// Composite types holding T pick it up as well.
func Register[T any](c *ZCodec, s Serde[T]) {
	c.registry.store(reflect.TypeFor[T](), &entry{
		encode: func(v reflect.Value) (Bytes, error) {
			var x T
			reflect.ValueOf(&x).Elem().Set(v)
			return s.Serialize(x), nil
		},
		decode: func(b Bytes, v reflect.Value) error {
			x, err := s.Deserialize(b)
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(&x).Elem())
			return nil
		},
	})
}

var defaultCodec = NewZCodec()

// Default returns the shared ZCodec used by Serialize and Deserialize.
func Default() Codec { return defaultCodec }

// Serialize encodes v with the default codec.
func Serialize[T any](v T) (Bytes, error) {
	return SerializeWith(defaultCodec, v)
}

// SerializeWith encodes v with c.
func SerializeWith[T any](c Codec, v T) (Bytes, error) {
	return c.Serialize(v)
}

// Deserialize decodes b as a T with the default codec.
func Deserialize[T any](b Bytes) (T, error) {
	return DeserializeWith[T](defaultCodec, b)
}

// DeserializeWith decodes b as a T with c.
func DeserializeWith[T any](c Codec, b Bytes) (T, error) {
	var v T
	err := c.Deserialize(b, &v)
	return v, err
}

// MustSerialize is Serialize for callers that treat failure as fatal.
// It panics with the error.
func MustSerialize[T any](v T) Bytes {
	b, err := Serialize(v)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDeserialize is Deserialize for callers that treat failure as fatal.
// It panics with the error.
func MustDeserialize[T any](b Bytes) T {
	v, err := Deserialize[T](b)
	if err != nil {
		panic(err)
	}
	return v
}
