package codec

import (
	"encoding/binary"
	"io"
)

// inlineLimit is the largest payload Append copies instead of linking.
// Small frames stay contiguous with their headers.
const inlineLimit = 64

// Builder assembles a payload during encoding. Plain writes are gathered
// into a contiguous scratch chunk; appended payloads are linked by reference.
// A Builder is single-owner and must not be used after Bytes is called
// unless it is used to start a new payload.
type Builder struct {
	buf     *buffer
	scratch []byte
}

var (
	_ io.Writer       = (*Builder)(nil)
	_ io.ByteWriter   = (*Builder)(nil)
	_ io.StringWriter = (*Builder)(nil)
)

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{buf: &buffer{}}
}

func (w *Builder) flush() {
	if w.buf == nil {
		w.buf = &buffer{}
	}
	if len(w.scratch) > 0 {
		w.buf.push(w.scratch)
		// the scratch array now belongs to the buffer
		w.scratch = nil
	}
}

// Write implements the io.Writer interface. It never fails.
func (w *Builder) Write(p []byte) (int, error) {
	w.scratch = append(w.scratch, p...)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface.
func (w *Builder) WriteString(s string) (int, error) {
	w.scratch = append(w.scratch, s...)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface.
func (w *Builder) WriteByte(c byte) error {
	w.scratch = append(w.scratch, c)
	return nil
}

// WriteUvarint writes v as an unsigned LEB128 varint.
func (w *Builder) WriteUvarint(v uint64) {
	w.scratch = binary.AppendUvarint(w.scratch, v)
}

// WriteUint writes the low size bytes of v in little-endian order.
func (w *Builder) WriteUint(v uint64, size int) {
	var buf [8]byte
	order.PutUint64(buf[:], v)
	w.scratch = append(w.scratch, buf[:size]...)
}

// Append adds the content of p. Large payloads are linked, not copied.
func (w *Builder) Append(p Bytes) {
	b := p.buf()
	if b.size <= inlineLimit {
		for _, c := range b.chunks {
			w.scratch = append(w.scratch, c...)
		}
		return
	}
	w.flush()
	for _, c := range b.chunks {
		w.buf.push(c)
	}
}

// Len returns the number of bytes written so far.
func (w *Builder) Len() int {
	n := len(w.scratch)
	if w.buf != nil {
		n += w.buf.size
	}
	return n
}

// Bytes hands the assembled payload off and resets the Builder.
func (w *Builder) Bytes() Bytes {
	w.flush()
	b := w.buf
	w.buf = nil
	if b.size == 0 {
		return Empty()
	}
	return Bytes{b: b}
}
