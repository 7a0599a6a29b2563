package endpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEndpointName is returned when an Identity has no endpoint name.
	ErrNoEndpointName = errors.New("endpoint name is required")

	// ErrNilCodec is returned when an Invoker is built without a codec.
	ErrNilCodec = errors.New("codec is required")

	// ErrNilTransport is returned when an Invoker is built without a transport.
	ErrNilTransport = errors.New("transport is required")

	// ErrEmptyPrompt is returned when Invoke or Stream is called with an
	// empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrStreamConsumed is yielded when a stream sequence is ranged over a
	// second time.
	ErrStreamConsumed = errors.New("stream already consumed")

	// ErrNoResponse is returned when a transport reports success without a
	// response or stream.
	ErrNoResponse = errors.New("transport returned no response")

	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("decoding response")

	// ErrTruncatedRecord matches every *FramingError.
	ErrTruncatedRecord = errors.New("stream ended mid-record")
)

// EncodeError reports a codec failure while building the request payload.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "encoding request: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response record the codec could not decode.
type DecodeError struct {
	// Record is a copy of the offending record, without its delimiter.
	Record []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// FramingError reports bytes left over when a stream ended without a
// final record delimiter. It is only produced under strict framing.
type FramingError struct {
	// Residual is the number of undelimited bytes discarded.
	Residual int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("%s: %d trailing bytes", ErrTruncatedRecord, e.Residual)
}

func (e *FramingError) Is(target error) bool {
	return target == ErrTruncatedRecord
}
