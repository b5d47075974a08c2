package codec

import "errors"

var (
	// ErrNilIO indicates that a nil io.Reader or io.Writer was provided.
	ErrNilIO = errors.New("codec: nil io.Reader or io.Writer")

	// ErrWriteToNil indicates a WriteTo operation was attempted on a nil io.Writer.
	ErrWriteToNil = errors.New("codec: WriteTo called with a nil io.Writer")

	// ErrInvalidSeek indicates a seek was attempted to a position outside [0, Size()].
	ErrInvalidSeek = errors.New("codec: seek to a invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("codec: unsupported whence")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid count from Write.
	ErrInvalidWrite = errors.New("codec: writer returned invalid count from Write")

	// ErrDecode is wrapped by every failure to reconstruct a value from a payload.
	ErrDecode = errors.New("codec: decode failed")

	// ErrTruncatedData indicates that a frame or a fixed-size value ended before
	// all expected bytes were available.
	ErrTruncatedData = errors.New("codec: truncated data")

	// ErrTrailingData indicates bytes left over after a value was fully decoded.
	ErrTrailingData = errors.New("codec: trailing data found after decoding")

	// ErrPairArity indicates that a payload did not hold exactly two frames.
	ErrPairArity = errors.New("codec: payload is not a pair")

	// ErrInvalidUTF8 is returned by strict string decoding.
	ErrInvalidUTF8 = errors.New("codec: invalid utf-8 in string payload")

	// ErrUnsupportedType indicates a type that no encoding rule covers.
	ErrUnsupportedType = errors.New("codec: unsupported type")

	// ErrNilTarget indicates Deserialize was called with a nil or non-pointer target.
	ErrNilTarget = errors.New("codec: deserialize target must be a non-nil pointer")
)

// Status is the lightweight numeric form of an error, for callers that
// forward failures across a boundary as plain codes.
type Status int8

const (
	StatusOK          Status = 0    // no error
	StatusRange       Status = -1   // seek outside the payload
	StatusDecode      Status = -2   // malformed or mismatched payload
	StatusUnsupported Status = -3   // no encoding rule for the type
	StatusGeneric     Status = -128 // any other failure, e.g. I/O
)

// StatusOf maps err onto a Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidSeek), errors.Is(err, ErrInvalidWhence):
		return StatusRange
	case errors.Is(err, ErrDecode):
		return StatusDecode
	case errors.Is(err, ErrUnsupportedType):
		return StatusUnsupported
	default:
		return StatusGeneric
	}
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRange:
		return "range error"
	case StatusDecode:
		return "decode error"
	case StatusUnsupported:
		return "unsupported type"
	default:
		return "error"
	}
}
