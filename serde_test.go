package codec

import (
	"maps"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T any](t *testing.T, s Serde[T], v T) {
	t.Helper()
	out, err := s.Deserialize(s.Serialize(v))
	require.NoError(t, err)
	if diff := cmp.Diff(v, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerdeFlat(t *testing.T) {
	roundTrip(t, String(), "abc")
	roundTrip(t, String(), "")
	roundTrip(t, String(), "héllo wörld")
	roundTrip(t, Raw(), []byte{0, 1, 2, 0xFF})
	roundTrip(t, Bool(), true)
	roundTrip(t, Bool(), false)
	roundTrip(t, Float32(), float32(1.5))
	roundTrip(t, Float64(), math.Pi)
	roundTrip(t, Float64(), math.Inf(-1))

	p := String().Serialize("abc")
	assert.Equal(t, []byte("abc"), p.ToSlice(), "strings are flat")

	b, err := Opaque().Deserialize(p)
	require.NoError(t, err)
	assert.True(t, b.Equal(p))
}

func TestSerdeIntegers(t *testing.T) {
	roundTrip(t, Integer[int8](), int8(-5))
	roundTrip(t, Integer[int8](), int8(math.MinInt8))
	roundTrip(t, Integer[int16](), int16(-300))
	roundTrip(t, Integer[int32](), int32(math.MaxInt32))
	roundTrip(t, Integer[int64](), int64(math.MinInt64))
	roundTrip(t, Integer[int](), -1)
	roundTrip(t, Integer[uint8](), uint8(255))
	roundTrip(t, Integer[uint16](), uint16(0xBEEF))
	roundTrip(t, Integer[uint64](), uint64(math.MaxUint64))

	assert.Equal(t, 2, Integer[int16]().Serialize(1).Size())
	assert.Equal(t, []byte{0xFE, 0xFF, 0xFF, 0xFF}, Integer[int32]().Serialize(-2).ToSlice())
}

func TestSerdeFixedWidthErrors(t *testing.T) {
	_, err := Integer[int32]().Deserialize(FromSlice([]byte{1, 2}))
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, ErrTruncatedData)

	_, err = Integer[int32]().Deserialize(FromSlice(make([]byte, 8)))
	assert.ErrorIs(t, err, ErrTrailingData)

	_, err = Bool().Deserialize(FromSlice([]byte{2}))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Float64().Deserialize(Empty())
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestSerdeComposite(t *testing.T) {
	kv := PairOf(String(), String())
	roundTrip(t, kv, MakePair("key", "value"))

	roundTrip(t, SliceOf(Raw()), [][]byte{{1}, {2}, {3}})
	roundTrip(t, SliceOf(String()), []string{"", "a", ""})
	roundTrip(t, SliceOf(kv), []Pair[string, string]{
		MakePair("a", "1"),
		MakePair("b", "2"),
	})
	roundTrip(t, MapOf(String(), SliceOf(Integer[int32]())), map[string][]int32{
		"odd":  {1, 3, 5},
		"even": {2, 4},
		"none": nil,
	})
	roundTrip(t, MapOf(Integer[uint16](), MapOf(String(), Bool())), map[uint16]map[string]bool{
		1: {"x": true},
		2: {},
	})
	roundTrip(t, PairOf(Opaque(), SliceOf(Float64())), MakePair(FromString("raw"), []float64{0.5, -1}))
}

func TestSerdeEmptySequenceDecodesToNil(t *testing.T) {
	out, err := SliceOf(String()).Deserialize(SliceOf(String()).Serialize([]string{}))
	require.NoError(t, err)
	assert.Nil(t, out)

	m, err := MapOf(String(), String()).Deserialize(Empty())
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestSerdeMapLastDuplicateWins(t *testing.T) {
	entries := func(yield func(string, string) bool) {
		_ = yield("k", "first") && yield("other", "x") && yield("k", "second")
	}
	p := SerializePairsFromIter(entries, String(), String())

	m, err := MapOf(String(), String()).Deserialize(p)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "second", "other": "x"}, m)
}

func TestSerdeCompositeErrorsPropagate(t *testing.T) {
	t.Run("SequenceReadAsPair", func(t *testing.T) {
		p := SliceOf(String()).Serialize([]string{"a", "b", "c"})
		_, err := PairOf(String(), String()).Deserialize(p)
		assert.ErrorIs(t, err, ErrPairArity)
	})

	t.Run("FlatReadAsSequence", func(t *testing.T) {
		out, err := SliceOf(String()).Deserialize(FromString("abc"))
		assert.ErrorIs(t, err, ErrDecode)
		assert.Nil(t, out, "no partial result on failure")
	})

	t.Run("BadElement", func(t *testing.T) {
		p := SliceOf(Raw()).Serialize([][]byte{{1, 0, 0, 0}, {1, 0}})
		out, err := SliceOf(Integer[int32]()).Deserialize(p)
		assert.ErrorIs(t, err, ErrTruncatedData)
		assert.Contains(t, err.Error(), "element 1")
		assert.Nil(t, out)
	})

	t.Run("BadMapEntry", func(t *testing.T) {
		p := SliceOf(String()).Serialize([]string{"flat"})
		_, err := MapOf(String(), String()).Deserialize(p)
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestSerdeStringShapeDetection(t *testing.T) {
	p := SliceOf(Integer[uint16]()).Serialize([]uint16{0xFFFF})

	s, err := String().Deserialize(p)
	require.NoError(t, err, "plain string decoding treats any payload as flat bytes")
	assert.Equal(t, string(p.ToSlice()), s)

	_, err = StrictString().Deserialize(p)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSerdeSliceMatchesIterEncoding(t *testing.T) {
	in := []string{"x", "yy", "zzz"}
	a := SliceOf(String()).Serialize(in)
	b := SerializeFromIter(slices.Values(in), String())
	assert.True(t, a.Equal(b))

	m := map[string]int64{"a": 1}
	c := MapOf(String(), Integer[int64]()).Serialize(m)
	d := SerializePairsFromIter(maps.All(m), String(), Integer[int64]())
	assert.True(t, c.Equal(d))
}
