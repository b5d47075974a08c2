package codec

// Pair is an ordered couple of values, encoded as exactly two frames.
// Maps are streamed as sequences of Pair entries.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MakePair builds a Pair.
func MakePair[A, B any](first A, second B) Pair[A, B] {
	return Pair[A, B]{First: first, Second: second}
}

// Unpack returns both halves.
func (p Pair[A, B]) Unpack() (A, B) { return p.First, p.Second }
