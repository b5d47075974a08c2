package codec

import (
	"fmt"
	"iter"
)

// A composite payload is a concatenation of frames. Each frame is an
// unsigned LEB128 length followed by that many bytes of sub-payload.

// Iterator walks the frames of a composite payload, one per call to Next.
// It is forward-only and single-pass. It keeps the first error; after
// exhaustion or an error Next returns the null payload forever.
type Iterator struct {
	r    *Reader
	err  error
	done bool
}

// Next returns the next sub-payload, or the null payload when the
// iterator is exhausted or hit malformed framing (see Err).
func (it *Iterator) Next() Bytes {
	if it.done {
		return Bytes{}
	}
	if it.r.Len() == 0 {
		it.done = true
		return Bytes{}
	}

	at := it.r.Position()
	n, err := it.r.ReadUvarint()
	if err != nil {
		return it.fail(fmt.Errorf("%w: frame header at offset %d: %w", ErrDecode, at, err))
	}
	if n > uint64(it.r.Len()) {
		return it.fail(fmt.Errorf("%w: %w: frame at offset %d declares %d bytes, %d left", ErrDecode, ErrTruncatedData, at, n, it.r.Len()))
	}
	b, err := it.r.Slice(int(n))
	if err != nil {
		return it.fail(fmt.Errorf("%w: %w", ErrDecode, err))
	}
	return b
}

func (it *Iterator) fail(err error) Bytes {
	it.err = err
	it.done = true
	return Bytes{}
}

// Err returns the framing error that stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }

// All adapts the iterator to a range-over-func sequence. Check Err after
// the loop.
func (it *Iterator) All() iter.Seq[Bytes] {
	return func(yield func(Bytes) bool) {
		for b := it.Next(); !b.IsNull(); b = it.Next() {
			if !yield(b) {
				return
			}
		}
	}
}

// appendFrame frames b. A null b is framed as an empty payload.
func appendFrame(w *Builder, b Bytes) {
	w.WriteUvarint(uint64(b.Size()))
	w.Append(b)
}

// EncodeFromIter frames each payload of seq into one composite payload.
// seq is ranged over exactly once and its elements are never collected
// before being framed.
func EncodeFromIter(seq iter.Seq[Bytes]) Bytes {
	w := NewBuilder()
	for b := range seq {
		appendFrame(w, b)
	}
	return w.Bytes()
}

// EncodePair combines exactly two payloads, in order.
func EncodePair(first, second Bytes) Bytes {
	w := NewBuilder()
	appendFrame(w, first)
	appendFrame(w, second)
	return w.Bytes()
}

// DecodePair splits a payload produced by EncodePair back into its halves.
func DecodePair(p Bytes) (Bytes, Bytes, error) {
	it := p.Iter()
	first, second := it.Next(), it.Next()
	extra := it.Next()
	if err := it.Err(); err != nil {
		return Bytes{}, Bytes{}, err
	}
	if first.IsNull() || second.IsNull() || !extra.IsNull() {
		return Bytes{}, Bytes{}, fmt.Errorf("%w: %w", ErrDecode, ErrPairArity)
	}
	return first, second, nil
}
