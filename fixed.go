package codec

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the cost of reflection in `binary.Size` on every
// Fixed construction.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// fixedSize reports the encoded size of T, or -1 if T has a
// variable-size field.
func fixedSize[T any]() int {
	t := reflect.TypeFor[T]()
	if size, ok := sizeCache.Load(t); ok {
		return size
	}
	size := -1
	if k := t.Kind(); k == reflect.Struct || k == reflect.Array {
		var zero T
		size = binary.Size(&zero)
	}
	sizeCache.Store(t, size)
	return size
}

type fixedSerde[T any] struct {
	size int
}

// Fixed returns a flat Serde for a struct or array T composed only of
// fixed-size fields. Fields are laid out in declaration order, little-endian,
// with no framing.
//
// Constraint: T MUST NOT contain slices, maps, strings, pointers or
// interfaces. Such a T fails with ErrUnsupportedType.
func Fixed[T any]() (Serde[T], error) {
	size := fixedSize[T]()
	if size < 0 {
		return nil, fmt.Errorf("%w: %s is not fixed-size", ErrUnsupportedType, reflect.TypeFor[T]())
	}
	return fixedSerde[T]{size: size}, nil
}

func (s fixedSerde[T]) Serialize(v T) Bytes {
	p := make([]byte, s.size)
	// the size was validated by Fixed, so Encode cannot run short
	_, _ = binary.Encode(p, order, &v)
	return FromOwnedSlice(p)
}

func (s fixedSerde[T]) Deserialize(b Bytes) (T, error) {
	var v T
	p := make([]byte, s.size)
	if err := readExact(b, p); err != nil {
		return v, err
	}
	if _, err := binary.Decode(p, order, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}
