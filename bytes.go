package codec

import (
	"bytes"
	"fmt"
	"sort"
)

// buffer is the storage shared by every Bytes handle cloned from the same
// payload. It is never modified once a Builder has handed it off.
type buffer struct {
	chunks  [][]byte // never holds an empty chunk
	offsets []int    // offsets[i] is the absolute position of chunks[i][0]
	size    int
}

var emptyBuffer = &buffer{}

// locate returns the chunk holding absolute position pos and the offset
// inside that chunk. For pos == size it returns len(chunks), 0.
func (b *buffer) locate(pos int) (int, int) {
	if pos >= b.size {
		return len(b.chunks), 0
	}
	i := sort.Search(len(b.offsets), func(i int) bool { return b.offsets[i] > pos }) - 1
	return i, pos - b.offsets[i]
}

func (b *buffer) push(p []byte) {
	if len(p) == 0 {
		return
	}
	b.chunks = append(b.chunks, p[:len(p):len(p)])
	b.offsets = append(b.offsets, b.size)
	b.size += len(p)
}

// slice returns a payload viewing [from, to) without copying.
func (b *buffer) slice(from, to int) Bytes {
	if from >= to {
		return Empty()
	}
	out := &buffer{}
	ci, off := b.locate(from)
	for out.size < to-from {
		c := b.chunks[ci][off:]
		if rem := to - from - out.size; len(c) > rem {
			c = c[:rem]
		}
		out.push(c)
		ci, off = ci+1, 0
	}
	return Bytes{b: out}
}

// Bytes is an opaque, immutable binary payload. Copies of a Bytes value share
// storage, which is safe because the storage is never written after
// construction.
//
// The zero value is the null payload. It marks absence, such as the end of an
// Iterator, and is distinct from a valid payload of size zero (see Empty).
type Bytes struct {
	b *buffer
}

// nonNull maps the null payload to Empty, so that a value about to be
// framed or returned from serialization is always a valid payload.
func nonNull(p Bytes) Bytes {
	if p.IsNull() {
		return Empty()
	}
	return p
}

// Empty returns a valid payload holding no bytes.
func Empty() Bytes { return Bytes{b: emptyBuffer} }

// FromSlice returns a payload holding a copy of p.
func FromSlice(p []byte) Bytes {
	return FromOwnedSlice(bytes.Clone(p))
}

// FromOwnedSlice returns a payload backed by p itself. The caller hands
// over p and must not modify it afterwards.
func FromOwnedSlice(p []byte) Bytes {
	if len(p) == 0 {
		return Empty()
	}
	b := &buffer{}
	b.push(p)
	return Bytes{b: b}
}

// FromString returns a payload holding the bytes of s.
func FromString(s string) Bytes {
	return FromOwnedSlice([]byte(s))
}

func (p Bytes) buf() *buffer {
	if p.b == nil {
		return emptyBuffer
	}
	return p.b
}

// IsNull reports whether p is the null payload.
func (p Bytes) IsNull() bool { return p.b == nil }

// Clone returns a handle to the same logical payload. Storage is shared.
func (p Bytes) Clone() Bytes { return p }

// Size returns the number of bytes in the payload.
func (p Bytes) Size() int { return p.buf().size }

// Chunks returns how many non-contiguous segments back the payload.
func (p Bytes) Chunks() int { return len(p.buf().chunks) }

// Reader returns a new cursor positioned at the start of the payload.
func (p Bytes) Reader() *Reader { return &Reader{b: p.buf()} }

// Iter returns a new Iterator over the frames of a composite payload.
func (p Bytes) Iter() *Iterator { return &Iterator{r: p.Reader()} }

// ToSlice copies the payload into a new contiguous slice.
func (p Bytes) ToSlice() []byte {
	b := p.buf()
	out := make([]byte, 0, b.size)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

// Equal reports whether p and o are both null or hold the same bytes.
func (p Bytes) Equal(o Bytes) bool {
	if p.IsNull() || o.IsNull() {
		return p.IsNull() == o.IsNull()
	}
	if p.Size() != o.Size() {
		return false
	}
	if p.b == o.b {
		return true
	}
	return bytes.Equal(p.ToSlice(), o.ToSlice())
}

func (p Bytes) String() string {
	if p.IsNull() {
		return "Bytes(null)"
	}
	return fmt.Sprintf("Bytes(%d)", p.Size())
}
