package codec

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Serde is the statically typed encode/decode rule for T. Serdes exist only
// for the encodable shapes (flat bytes, numbers, pairs, sequences, maps) and
// compose recursively, so asking for an unsupported shape fails to compile.
type Serde[T any] interface {
	Serialize(v T) Bytes
	Deserialize(b Bytes) (T, error)
}

type stringSerde struct{ strict bool }

// String serializes strings as flat bytes.
func String() Serde[string] { return stringSerde{} }

// StrictString is String with UTF-8 validation on decode.
func StrictString() Serde[string] { return stringSerde{strict: true} }

func (stringSerde) Serialize(v string) Bytes { return FromString(v) }

func (s stringSerde) Deserialize(b Bytes) (string, error) { return decodeString(b, s.strict) }

type rawSerde struct{}

// Raw serializes byte slices as flat bytes.
func Raw() Serde[[]byte] { return rawSerde{} }

func (rawSerde) Serialize(v []byte) Bytes { return FromSlice(v) }

func (rawSerde) Deserialize(b Bytes) ([]byte, error) { return decodeRaw(b), nil }

type opaqueSerde struct{}

// Opaque passes payloads through unchanged, for nesting pre-encoded data.
// A null payload serializes as the empty payload.
func Opaque() Serde[Bytes] { return opaqueSerde{} }

func (opaqueSerde) Serialize(v Bytes) Bytes { return nonNull(v) }

func (opaqueSerde) Deserialize(b Bytes) (Bytes, error) { return b, nil }

type integerSerde[T constraints.Integer] struct{}

// Integer serializes T in its natural width, little-endian. int, uint and
// uintptr take their platform width.
func Integer[T constraints.Integer]() Serde[T] { return integerSerde[T]{} }

func (integerSerde[T]) Serialize(v T) Bytes {
	return encodeUint(uint64(v), int(unsafe.Sizeof(v)))
}

func (integerSerde[T]) Deserialize(b Bytes) (T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	u, err := decodeUint(b, size)
	if err != nil {
		return zero, err
	}
	if ^zero < 0 {
		return T(signExtend(u, size)), nil
	}
	return T(u), nil
}

type float32Serde struct{}
type float64Serde struct{}
type boolSerde struct{}

// Float32 serializes float32 as its 4 IEEE-754 bytes, little-endian.
func Float32() Serde[float32] { return float32Serde{} }

// Float64 serializes float64 as its 8 IEEE-754 bytes, little-endian.
func Float64() Serde[float64] { return float64Serde{} }

// Bool serializes bool as one byte, 0 or 1. Any other byte fails to decode.
func Bool() Serde[bool] { return boolSerde{} }

func (float32Serde) Serialize(v float32) Bytes { return encodeUint(uint64(math.Float32bits(v)), 4) }

func (float32Serde) Deserialize(b Bytes) (float32, error) {
	u, err := decodeUint(b, 4)
	return math.Float32frombits(uint32(u)), err
}

func (float64Serde) Serialize(v float64) Bytes { return encodeUint(math.Float64bits(v), 8) }

func (float64Serde) Deserialize(b Bytes) (float64, error) {
	u, err := decodeUint(b, 8)
	return math.Float64frombits(u), err
}

func (boolSerde) Serialize(v bool) Bytes { return encodeBool(v) }

func (boolSerde) Deserialize(b Bytes) (bool, error) { return decodeBool(b) }

type pairSerde[A, B any] struct {
	first  Serde[A]
	second Serde[B]
}

// PairOf serializes Pair values with a fixed arity of two.
func PairOf[A, B any](first Serde[A], second Serde[B]) Serde[Pair[A, B]] {
	return pairSerde[A, B]{first: first, second: second}
}

func (s pairSerde[A, B]) Serialize(v Pair[A, B]) Bytes {
	return EncodePair(s.first.Serialize(v.First), s.second.Serialize(v.Second))
}

func (s pairSerde[A, B]) Deserialize(b Bytes) (Pair[A, B], error) {
	var out Pair[A, B]
	fb, sb, err := DecodePair(b)
	if err != nil {
		return out, err
	}
	if out.First, err = s.first.Deserialize(fb); err != nil {
		return Pair[A, B]{}, fmt.Errorf("pair first: %w", err)
	}
	if out.Second, err = s.second.Deserialize(sb); err != nil {
		return Pair[A, B]{}, fmt.Errorf("pair second: %w", err)
	}
	return out, nil
}

type sliceSerde[T any] struct{ elem Serde[T] }

// SliceOf serializes slices as a stream of element frames.
// An empty sequence decodes to a nil slice.
func SliceOf[T any](elem Serde[T]) Serde[[]T] { return sliceSerde[T]{elem: elem} }

func (s sliceSerde[T]) Serialize(v []T) Bytes {
	return SerializeFromIter(slices.Values(v), s.elem)
}

func (s sliceSerde[T]) Deserialize(b Bytes) ([]T, error) {
	var out []T
	it := b.Iter()
	for f := range it.All() {
		v, err := s.elem.Deserialize(f)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", len(out), err)
		}
		out = append(out, v)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type mapSerde[K comparable, V any] struct{ entry Serde[Pair[K, V]] }

// MapOf serializes maps as a stream of Pair entries. On decode a later
// duplicate key replaces an earlier one.
func MapOf[K comparable, V any](key Serde[K], val Serde[V]) Serde[map[K]V] {
	return mapSerde[K, V]{entry: PairOf(key, val)}
}

func (s mapSerde[K, V]) Serialize(m map[K]V) Bytes {
	return EncodeFromIter(func(yield func(Bytes) bool) {
		for k, v := range maps.All(m) {
			if !yield(s.entry.Serialize(MakePair(k, v))) {
				return
			}
		}
	})
}

func (s mapSerde[K, V]) Deserialize(b Bytes) (map[K]V, error) {
	out := make(map[K]V)
	it := b.Iter()
	i := 0
	for f := range it.All() {
		e, err := s.entry.Deserialize(f)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[e.First] = e.Second
		i++
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SerializeFromIter encodes a sequence lazily: each element is pulled once,
// serialized and framed before the next one is requested.
func SerializeFromIter[T any](seq iter.Seq[T], elem Serde[T]) Bytes {
	return EncodeFromIter(func(yield func(Bytes) bool) {
		for v := range seq {
			if !yield(elem.Serialize(v)) {
				return
			}
		}
	})
}

// SerializePairsFromIter encodes a key/value sequence as Pair frames, the
// layout MapOf decodes.
func SerializePairsFromIter[K, V any](seq iter.Seq2[K, V], key Serde[K], val Serde[V]) Bytes {
	entry := PairOf(key, val)
	return EncodeFromIter(func(yield func(Bytes) bool) {
		for k, v := range seq {
			if !yield(entry.Serialize(MakePair(k, v))) {
				return
			}
		}
	})
}
