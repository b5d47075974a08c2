package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// chunked builds a payload whose storage is split exactly at the given parts.
func chunked(parts ...string) Bytes {
	b := &buffer{}
	for _, p := range parts {
		b.push([]byte(p))
	}
	return Bytes{b: b}
}

type PayloadTestSuite struct {
	suite.Suite
}

func (s *PayloadTestSuite) TestNullAndEmpty() {
	var null Bytes
	s.Assert().True(null.IsNull())
	s.Assert().Zero(null.Size())
	s.Assert().Equal("Bytes(null)", null.String())

	empty := Empty()
	s.Assert().False(empty.IsNull())
	s.Assert().Zero(empty.Size())
	s.Assert().False(empty.Equal(null))
	s.Assert().True(null.Equal(Bytes{}))

	s.Assert().False(FromSlice(nil).IsNull(), "an empty slice is a valid payload")
	s.Assert().False(FromString("").IsNull())
}

func (s *PayloadTestSuite) TestFromSliceCopies() {
	src := []byte{1, 2, 3}
	p := FromSlice(src)
	src[0] = 0xFF

	s.Assert().Equal([]byte{1, 2, 3}, p.ToSlice())
	s.Assert().Equal(3, p.Size())
}

func (s *PayloadTestSuite) TestCloneSharesContent() {
	p := chunked("ab", "cde", "f")
	c := p.Clone()

	s.Assert().True(p.Equal(c))
	s.Assert().Equal(p.Size(), c.Size())
	s.Assert().Equal(3, c.Chunks())
	s.Assert().Equal("abcdef", string(c.ToSlice()))
}

func (s *PayloadTestSuite) TestEqualIgnoresChunking() {
	s.Assert().True(FromString("abcdef").Equal(chunked("a", "bcd", "ef")))
	s.Assert().False(FromString("abcdef").Equal(chunked("a", "bcd", "eg")))
	s.Assert().False(FromString("abc").Equal(FromString("abcd")))
}

func (s *PayloadTestSuite) TestMarshalSurface() {
	p := chunked("hello", " ", "world")

	data, err := p.MarshalBinary()
	s.Require().NoError(err)
	s.Assert().Equal("hello world", string(data))

	buf := make([]byte, p.Size())
	n, err := p.MarshalTo(buf)
	s.Require().NoError(err)
	s.Assert().Equal(p.Size(), n)
	s.Assert().Equal(data, buf)

	_, err = p.MarshalTo(make([]byte, 3))
	s.Assert().ErrorIs(err, io.ErrShortBuffer)

	var out bytes.Buffer
	written, err := p.WriteTo(&out)
	s.Require().NoError(err)
	s.Assert().EqualValues(11, written)
	s.Assert().Equal("hello world", out.String())

	_, err = p.WriteTo(nil)
	s.Assert().ErrorIs(err, ErrWriteToNil)
}

func (s *PayloadTestSuite) TestUnmarshalAndReadFrom() {
	src := []byte("payload")
	var p Bytes
	s.Require().NoError(p.UnmarshalBinary(src))
	src[0] = 'X'
	s.Assert().Equal("payload", string(p.ToSlice()))

	got, err := FromReader(strings.NewReader("from the wire"))
	s.Require().NoError(err)
	s.Assert().Equal("from the wire", string(got.ToSlice()))

	_, err = FromReader(nil)
	s.Assert().ErrorIs(err, ErrNilIO)
}

func TestPayload(t *testing.T) {
	suite.Run(t, new(PayloadTestSuite))
}

func TestBuilder(t *testing.T) {
	t.Run("SmallAppendsStayContiguous", func(t *testing.T) {
		w := NewBuilder()
		w.WriteUvarint(3)
		w.Append(FromString("abc"))
		w.WriteByte('!')
		p := w.Bytes()

		assert.Equal(t, 1, p.Chunks())
		assert.Equal(t, []byte{3, 'a', 'b', 'c', '!'}, p.ToSlice())
	})

	t.Run("LargeAppendsAreLinked", func(t *testing.T) {
		large := FromSlice(bytes.Repeat([]byte{7}, 100))
		w := NewBuilder()
		w.WriteUvarint(100)
		w.Append(large)
		w.WriteString("tail")
		p := w.Bytes()

		assert.Equal(t, 3, p.Chunks())
		assert.Equal(t, 1+100+4, p.Size())
		assert.Same(t, &large.b.chunks[0][0], &p.b.chunks[1][0], "the large payload must not be copied")
	})

	t.Run("BytesHandsOff", func(t *testing.T) {
		w := NewBuilder()
		w.WriteString("first")
		p := w.Bytes()
		assert.Zero(t, w.Len())

		w.WriteString("second")
		q := w.Bytes()
		assert.Equal(t, "first", string(p.ToSlice()))
		assert.Equal(t, "second", string(q.ToSlice()))
	})

	t.Run("EmptyBuilderYieldsEmptyPayload", func(t *testing.T) {
		p := NewBuilder().Bytes()
		require.False(t, p.IsNull())
		assert.Zero(t, p.Size())
	})

	t.Run("WriteUint", func(t *testing.T) {
		w := NewBuilder()
		w.WriteUint(0x0102030405060708, 4)
		assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05}, w.Bytes().ToSlice())
	})
}
