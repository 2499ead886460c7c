package wire

import "github.com/packline-io/packline/pkg/errors"

// Error codes for wire decoding/encoding failures. These are all terminal for
// the connection that raised them — they never bring down the broker.
const (
	CodeTruncated     = "WIRE_TRUNCATED"
	CodeNegativeLen   = "WIRE_NEGATIVE_LENGTH"
	CodeInvalidUTF8   = "WIRE_INVALID_UTF8"
	CodeOversizeFrame = "WIRE_OVERSIZE_FRAME"
)

// ErrTruncated indicates the buffer ended before a value could be fully read.
// Decode in packet.go detects an incomplete frame from payload_size before
// reading any message value, so when Decode returns this error the frame was
// complete but its message was shorter than its fields require.
func ErrTruncated(cause error) *errors.AppError {
	return errors.New(CodeTruncated, "buffer ended before value was fully read", cause)
}

// ErrNegativeLength indicates a string or vec carried a negative length prefix.
func ErrNegativeLength(cause error) *errors.AppError {
	return errors.New(CodeNegativeLen, "string or vector length prefix was negative", cause)
}

// ErrInvalidUTF8 indicates a string's bytes were not valid UTF-8.
func ErrInvalidUTF8(cause error) *errors.AppError {
	return errors.New(CodeInvalidUTF8, "string bytes were not valid UTF-8", cause)
}

// ErrOversizeFrame indicates a frame declared a payload_size that cannot be
// a legitimate frame (e.g. negative), distinct from merely-incomplete.
func ErrOversizeFrame(cause error) *errors.AppError {
	return errors.New(CodeOversizeFrame, "frame declared an invalid payload size", cause)
}
