package codec

import (
	"bytes"
	"encoding"
	"io"
)

// Sizer is an interface for types that can report their binary size.
type Sizer interface {
	Size() int
}

// Marshaler is what a transport needs to put a payload on the wire.
type Marshaler interface {
	encoding.BinaryMarshaler // Method: MarshalBinary() ([]byte, error)
	io.WriterTo              // Method: WriteTo(writer io.Writer) (int64, error)

	// MarshalTo copies the payload into a pre-allocated buffer, returning
	// io.ErrShortBuffer if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler is what a transport needs to build a payload on receipt.
type Unmarshaler interface {
	encoding.BinaryUnmarshaler // Method: UnmarshalBinary(data []byte) error
	io.ReaderFrom              // Method: ReadFrom(r io.Reader) (int64, error)
}

var (
	_ Sizer       = Bytes{}
	_ Marshaler   = Bytes{}
	_ Unmarshaler = (*Bytes)(nil)
)

// MarshalBinary returns a contiguous copy of the payload.
func (p Bytes) MarshalBinary() ([]byte, error) {
	return p.ToSlice(), nil
}

// MarshalTo copies the payload into buf without allocating.
func (p Bytes) MarshalTo(buf []byte) (int, error) {
	if len(buf) < p.Size() {
		return 0, io.ErrShortBuffer
	}
	n := 0
	for _, c := range p.buf().chunks {
		n += copy(buf[n:], c)
	}
	return n, nil
}

// WriteTo streams every chunk to w.
func (p Bytes) WriteTo(w io.Writer) (int64, error) {
	if w == nil {
		return 0, ErrWriteToNil
	}
	return p.Reader().WriteTo(w)
}

// UnmarshalBinary replaces p with a copy of data.
func (p *Bytes) UnmarshalBinary(data []byte) error {
	*p = FromSlice(data)
	return nil
}

// ReadFrom replaces p with everything r yields until io.EOF.
func (p *Bytes) ReadFrom(r io.Reader) (int64, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, err
	}
	*p = FromSlice(buf.Bytes())
	return n, nil
}

// FromReader reads r to exhaustion into a new payload.
func FromReader(r io.Reader) (Bytes, error) {
	if r == nil {
		return Bytes{}, ErrNilIO
	}
	var p Bytes
	if _, err := p.ReadFrom(r); err != nil {
		return Bytes{}, err
	}
	return p, nil
}
