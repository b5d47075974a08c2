package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
	"unsafe"
)

// order is the byte order of every fixed-width value.
var order = binary.LittleEndian

func Ptr[T any](v T) *T { return &v } // Ptr is a helper function to create a pointer to a value, making test setup cleaner.

// readExact fills p from the payload, which must hold exactly len(p) bytes.
func readExact(b Bytes, p []byte) error {
	switch size := b.Size(); {
	case size < len(p):
		return fmt.Errorf("%w: %w: want %d bytes, payload has %d", ErrDecode, ErrTruncatedData, len(p), size)
	case size > len(p):
		return fmt.Errorf("%w: %w: want %d bytes, payload has %d", ErrDecode, ErrTrailingData, len(p), size)
	}
	_, err := io.ReadFull(b.Reader(), p)
	return err
}

func encodeUint(v uint64, size int) Bytes {
	w := NewBuilder()
	w.WriteUint(v, size)
	return w.Bytes()
}

func decodeUint(b Bytes, size int) (uint64, error) {
	var buf [8]byte
	if err := readExact(b, buf[:size]); err != nil {
		return 0, err
	}
	return order.Uint64(buf[:]), nil
}

// signExtend widens the low size bytes of u as a two's complement value.
func signExtend(u uint64, size int) int64 {
	shift := uint(64 - 8*size)
	return int64(u<<shift) >> shift
}

func encodeBool(v bool) Bytes {
	if v {
		return encodeUint(1, 1)
	}
	return encodeUint(0, 1)
}

func decodeBool(b Bytes) (bool, error) {
	u, err := decodeUint(b, 1)
	if err != nil {
		return false, err
	}
	if u > 1 {
		return false, fmt.Errorf("%w: bool byte 0x%02x", ErrDecode, u)
	}
	return u == 1, nil
}

// decodeRaw reads the whole payload into a new slice with one Read.
func decodeRaw(b Bytes) []byte {
	if b.Size() == 0 {
		return nil
	}
	p := make([]byte, b.Size())
	_, _ = b.Reader().Read(p)
	return p
}

// decodeString treats the payload as flat string bytes and hands the read
// buffer to the string without copying it again.
func decodeString(b Bytes, strict bool) (string, error) {
	p := decodeRaw(b)
	if len(p) == 0 {
		return "", nil
	}
	if strict && !utf8.Valid(p) {
		return "", fmt.Errorf("%w: %w", ErrDecode, ErrInvalidUTF8)
	}
	return unsafe.String(unsafe.SliceData(p), len(p)), nil
}
