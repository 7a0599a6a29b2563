package endpoint

import "context"

// Request is the transport-neutral form of one endpoint invocation.
type Request struct {
	EndpointName string

	// InferenceComponent is empty when none is configured. Transports must
	// then leave the field out of the wire request entirely.
	InferenceComponent string

	Body        []byte
	ContentType string
	Accept      string
}

// Response is the single payload returned by a blocking invocation.
type Response struct {
	ContentType string
	Body        []byte
}

// Transport sends requests to a model-serving endpoint. Errors returned by a
// Transport are passed to the caller unchanged.
type Transport interface {
	// Send performs one blocking invocation.
	Send(ctx context.Context, req Request) (*Response, error)

	// SendStreaming starts one streaming invocation. The returned stream
	// yields the raw payload bytes in the order the endpoint sent them.
	SendStreaming(ctx context.Context, req Request) (ChunkStream, error)
}

// ChunkStream is a sequence of raw byte chunks from a streaming invocation.
// Chunk boundaries carry no meaning: a chunk may hold several records, part
// of one, or nothing.
type ChunkStream interface {
	// Recv blocks for the next chunk. It returns io.EOF once the stream is
	// exhausted.
	Recv() ([]byte, error)

	// Close releases the stream. It is safe to call more than once.
	Close() error
}
