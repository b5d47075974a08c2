package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultMaxFrameSize bounds a single frame read by a FrameReader.
const DefaultMaxFrameSize = 64 << 20

// FrameWriter writes frames to an io.Writer using the same framing as a
// composite payload, so a stream of frames can be read back as one sequence.
// It buffers output and tracks the first error that occurs. After an error,
// all subsequent writes become no-ops.
type FrameWriter struct {
	w     *bufio.Writer
	count int64 // total bytes written
	err   error // first error encountered
	hdr   [binary.MaxVarintLen64]byte
}

// NewFrameWriter creates a FrameWriter. An existing *bufio.Writer is reused
// instead of being buffered twice.
func NewFrameWriter(w io.Writer) (*FrameWriter, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	if bw, ok := w.(*bufio.Writer); ok {
		return &FrameWriter{w: bw}, nil
	}
	return &FrameWriter{w: bufio.NewWriter(w)}, nil
}

func (w *FrameWriter) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// WriteFrame writes the length header of p followed by its bytes.
func (w *FrameWriter) WriteFrame(p Bytes) {
	if w.err != nil {
		return
	}
	n := binary.PutUvarint(w.hdr[:], uint64(p.Size()))
	written, err := w.w.Write(w.hdr[:n])
	w.count += int64(written)
	if err != nil {
		w.setError(err)
		return
	}
	body, err := p.WriteTo(w.w)
	w.count += body
	w.setError(err)
}

// WriteAll frames every payload of seq, stopping at the first error.
func (w *FrameWriter) WriteAll(seq iter.Seq[Bytes]) {
	for p := range seq {
		if w.err != nil {
			return
		}
		w.WriteFrame(p)
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *FrameWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

// Count returns the number of bytes written so far, buffered or not.
func (w *FrameWriter) Count() int64 { return w.count }

// Err returns the first error encountered.
func (w *FrameWriter) Err() error { return w.err }

// Result returns the byte count and the first error.
func (w *FrameWriter) Result() (int64, error) {
	return w.count, w.err
}

// FrameReader reads frames from an io.Reader, one payload per frame. It
// keeps the first error; a clean end of stream on a frame boundary is not
// an error.
type FrameReader struct {
	r   *bufio.Reader
	max uint64
	err error
	eof bool
}

// NewFrameReader creates a FrameReader limited to DefaultMaxFrameSize.
func NewFrameReader(r io.Reader) (*FrameReader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &FrameReader{r: br, max: DefaultMaxFrameSize}, nil
}

// WithMaxFrameSize sets the largest frame the reader accepts.
func (r *FrameReader) WithMaxFrameSize(n int) *FrameReader {
	r.max = uint64(n)
	return r
}

// ReadFrame returns the next frame. It returns io.EOF once the stream ends
// between frames.
func (r *FrameReader) ReadFrame() (Bytes, error) {
	if r.eof {
		return Bytes{}, io.EOF
	}
	if r.err != nil {
		return Bytes{}, r.err
	}

	n, err := binary.ReadUvarint(r.r)
	switch {
	case err == io.EOF:
		r.eof = true
		return Bytes{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return r.fail(fmt.Errorf("%w: %w: frame header", ErrDecode, ErrTruncatedData))
	case err != nil:
		return r.fail(fmt.Errorf("%w: frame header: %w", ErrDecode, err))
	}
	if n > r.max {
		return r.fail(fmt.Errorf("%w: frame of %d bytes exceeds limit %d", ErrDecode, n, r.max))
	}
	if n == 0 {
		return Empty(), nil
	}

	p := make([]byte, n)
	if _, err := io.ReadFull(r.r, p); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncatedData
		}
		return r.fail(fmt.Errorf("%w: frame body of %d bytes: %w", ErrDecode, n, err))
	}
	return FromOwnedSlice(p), nil
}

func (r *FrameReader) fail(err error) (Bytes, error) {
	r.err = err
	return Bytes{}, err
}

// All adapts the reader to a range-over-func sequence. Check Err after the
// loop.
func (r *FrameReader) All() iter.Seq[Bytes] {
	return func(yield func(Bytes) bool) {
		for {
			p, err := r.ReadFrame()
			if err != nil || !yield(p) {
				return
			}
		}
	}
}

// Err returns the error that stopped reading, or nil after a clean end
// of stream.
func (r *FrameReader) Err() error { return r.err }
