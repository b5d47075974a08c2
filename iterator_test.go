package codec

import (
	"bytes"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorYieldsFramesInOrder(t *testing.T) {
	p, err := Serialize([][]byte{{0x01}, {0x02}, {0x03}})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0x01, 1, 0x02, 1, 0x03}, p.ToSlice())

	it := p.Iter()
	for _, want := range []byte{0x01, 0x02, 0x03} {
		sub := it.Next()
		require.False(t, sub.IsNull())
		assert.Equal(t, 1, sub.Size())
		assert.Equal(t, []byte{want}, sub.ToSlice())
	}
	assert.True(t, it.Next().IsNull())
	assert.NoError(t, it.Err())
}

func TestIteratorExhaustionIsIdempotent(t *testing.T) {
	it := EncodePair(FromString("a"), FromString("b")).Iter()
	it.Next()
	it.Next()
	for i := 0; i < 5; i++ {
		assert.True(t, it.Next().IsNull(), "call %d after exhaustion", i)
	}
	assert.NoError(t, it.Err())

	var null Bytes
	assert.True(t, null.Iter().Next().IsNull())
}

func TestIteratorEmptyFramesAreNotSentinels(t *testing.T) {
	p := EncodeFromIter(func(yield func(Bytes) bool) {
		_ = yield(Empty()) && yield(FromString("x")) && yield(Empty())
	})
	it := p.Iter()

	first := it.Next()
	assert.False(t, first.IsNull())
	assert.Zero(t, first.Size())
	assert.Equal(t, "x", string(it.Next().ToSlice()))
	assert.False(t, it.Next().IsNull())
	assert.True(t, it.Next().IsNull())
}

func TestIteratorMalformedFraming(t *testing.T) {
	tests := []struct {
		name    string
		payload Bytes
		target  error
	}{
		{"LengthPastEnd", FromString("abc"), ErrTruncatedData},
		{"TruncatedHeader", FromSlice([]byte{1, 'a', 0x80}), ErrTruncatedData},
		{"HeaderOverflow", FromSlice(bytes.Repeat([]byte{0xFF}, 11)), ErrDecode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := tc.payload.Iter()
			var n int
			for range it.All() {
				n++
			}
			require.Error(t, it.Err())
			assert.ErrorIs(t, it.Err(), ErrDecode)
			assert.ErrorIs(t, it.Err(), tc.target)
			assert.LessOrEqual(t, n, 1)
			assert.True(t, it.Next().IsNull(), "a failed iterator stays exhausted")
		})
	}
}

func TestIteratorAcrossChunks(t *testing.T) {
	large := bytes.Repeat([]byte{9}, 200)
	p := EncodeFromIter(func(yield func(Bytes) bool) {
		_ = yield(FromSlice(large)) && yield(FromString("tiny")) && yield(FromSlice(large))
	})
	require.Greater(t, p.Chunks(), 1)

	var sizes []int
	it := p.Iter()
	for sub := range it.All() {
		sizes = append(sizes, sub.Size())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{200, 4, 200}, sizes)
}

func TestPairFraming(t *testing.T) {
	p := EncodePair(FromString("key"), FromString("value"))
	assert.Equal(t, []byte{3, 'k', 'e', 'y', 5, 'v', 'a', 'l', 'u', 'e'}, p.ToSlice())

	first, second, err := DecodePair(p)
	require.NoError(t, err)
	assert.Equal(t, "key", string(first.ToSlice()))
	assert.Equal(t, "value", string(second.ToSlice()))
}

func TestDecodePairArity(t *testing.T) {
	frames := func(n int) Bytes {
		return EncodeFromIter(func(yield func(Bytes) bool) {
			for i := 0; i < n; i++ {
				if !yield(FromString("x")) {
					return
				}
			}
		})
	}
	for _, n := range []int{0, 1, 3} {
		_, _, err := DecodePair(frames(n))
		assert.ErrorIs(t, err, ErrPairArity, "%d frames", n)
		assert.ErrorIs(t, err, ErrDecode, "%d frames", n)
	}

	_, _, err := DecodePair(FromString("not a pair"))
	assert.ErrorIs(t, err, ErrDecode)
}

// countingSeq wraps a one-shot source and counts how often it is pulled.
func countingSeq(n int, pulls *int) iter.Seq[string] {
	used := false
	return func(yield func(string) bool) {
		if used {
			panic("source ranged over twice")
		}
		used = true
		for i := 0; i < n; i++ {
			*pulls++
			if !yield("v") {
				return
			}
		}
	}
}

func TestStreamingEncodePullsEachElementOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		pulls := 0
		p := SerializeFromIter(countingSeq(n, &pulls), String())
		assert.Equal(t, n, pulls)

		out, err := SliceOf(String()).Deserialize(p)
		require.NoError(t, err)
		assert.Len(t, out, n)
	}
}
