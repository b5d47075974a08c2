package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader is a seekable cursor over the bytes of one payload. It never
// copies the payload and never modifies it. A Reader is not safe for
// concurrent use.
type Reader struct {
	b   *buffer
	pos int64 // always within [0, b.size]
}

var (
	_ io.ReadSeeker  = (*Reader)(nil)
	_ io.ByteScanner = (*Reader)(nil)
	_ io.WriterTo    = (*Reader)(nil)
)

// Read implements the [io.Reader] interface. It copies as many bytes as fit
// in p and returns 0, io.EOF once the cursor reaches the end.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= int64(r.b.size) {
		return 0, io.EOF
	}
	n := 0
	ci, off := r.b.locate(int(r.pos))
	for n < len(p) && ci < len(r.b.chunks) {
		n += copy(p[n:], r.b.chunks[ci][off:])
		ci, off = ci+1, 0
	}
	r.pos += int64(n)
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= int64(r.b.size) {
		return 0, io.EOF
	}
	ci, off := r.b.locate(int(r.pos))
	r.pos++
	return r.b.chunks[ci][off], nil
}

// UnreadByte implements the [io.ByteScanner] interface.
func (r *Reader) UnreadByte() error {
	if r.pos <= 0 {
		return fmt.Errorf("%w: unread at start of payload", ErrInvalidSeek)
	}
	r.pos--
	return nil
}

// WriteTo implements the [io.WriterTo] interface, writing the remaining
// chunks without an intermediate buffer.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var n int64
	ci, off := r.b.locate(int(r.pos))
	for ; ci < len(r.b.chunks); ci, off = ci+1, 0 {
		c := r.b.chunks[ci][off:]
		written, err := w.Write(c)
		if written < 0 || written > len(c) {
			return n, ErrInvalidWrite
		}
		n += int64(written)
		r.pos += int64(written)
		if err != nil {
			return n, err
		}
		if written < len(c) {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// Seek implements the [io.Seeker] interface. A target outside [0, Size()]
// fails with ErrInvalidSeek and leaves the cursor where it was.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = int64(r.b.size) + offset
	default:
		return r.pos, fmt.Errorf("%w: value %d is not supported", ErrInvalidWhence, whence)
	}

	if abs < 0 || abs > int64(r.b.size) {
		return r.pos, fmt.Errorf("%w: %d is outside [0, %d]", ErrInvalidSeek, abs, r.b.size)
	}

	r.pos = abs
	return abs, nil
}

// Position returns the cursor offset from the start of the payload.
func (r *Reader) Position() int64 { return r.pos }

// Size returns the size of the underlying payload.
func (r *Reader) Size() int { return r.b.size }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return r.b.size - int(r.pos) }

// Slice returns the next n bytes as a payload sharing storage with the
// source, and advances past them.
func (r *Reader) Slice(n int) (Bytes, error) {
	if n < 0 || n > r.Len() {
		return Bytes{}, fmt.Errorf("%w: want %d bytes, %d left", ErrTruncatedData, n, r.Len())
	}
	start := int(r.pos)
	r.pos += int64(n)
	return r.b.slice(start, start+n), nil
}

// ReadUvarint reads an unsigned LEB128 varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	start := r.pos
	v, err := binary.ReadUvarint(r)
	if err != nil {
		r.pos = start
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncatedData
		}
		return 0, err
	}
	return v, nil
}
