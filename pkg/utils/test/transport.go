package testutils

import (
	"context"
	"io"
	"sync"

	"github.com/papercomputeco/sagestream/pkg/endpoint"
)

// MockTransport is a test endpoint.Transport that records every request and
// replays configured responses.
type MockTransport struct {
	mu sync.Mutex

	// Response is returned by Send.
	Response *endpoint.Response

	// Chunks are replayed, in order, by every stream SendStreaming returns.
	Chunks [][]byte

	// RecvErr is returned by a stream once Chunks are exhausted, in place
	// of io.EOF.
	RecvErr error

	// SendErr and StreamErr make Send and SendStreaming fail.
	SendErr   error
	StreamErr error

	// SendRequests and StreamRequests accumulate the requests received.
	SendRequests   []endpoint.Request
	StreamRequests []endpoint.Request

	// Streams holds every stream handed out by SendStreaming.
	Streams []*MockChunkStream
}

// NewMockTransport creates a transport whose streams replay chunks.
func NewMockTransport(chunks ...string) *MockTransport {
	return &MockTransport{
		Chunks: StringChunks(chunks...),
	}
}

func (m *MockTransport) Send(_ context.Context, req endpoint.Request) (*endpoint.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SendRequests = append(m.SendRequests, req)
	if m.SendErr != nil {
		return nil, m.SendErr
	}
	return m.Response, nil
}

func (m *MockTransport) SendStreaming(_ context.Context, req endpoint.Request) (endpoint.ChunkStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StreamRequests = append(m.StreamRequests, req)
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}

	stream := NewMockChunkStream(m.Chunks...)
	stream.EndErr = m.RecvErr
	m.Streams = append(m.Streams, stream)
	return stream, nil
}

// MockChunkStream replays a fixed list of chunks. It is safe for
// concurrent use.
type MockChunkStream struct {
	mu     sync.Mutex
	chunks [][]byte

	// EndErr replaces io.EOF once the chunks are exhausted.
	EndErr error

	// Received counts the chunks handed out by Recv.
	Received int

	// Closes counts calls to Close.
	Closes int
}

// NewMockChunkStream creates a stream replaying chunks.
func NewMockChunkStream(chunks ...[]byte) *MockChunkStream {
	return &MockChunkStream{chunks: chunks}
}

func (s *MockChunkStream) Recv() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Received >= len(s.chunks) {
		if s.EndErr != nil {
			return nil, s.EndErr
		}
		return nil, io.EOF
	}

	chunk := s.chunks[s.Received]
	s.Received++
	return chunk, nil
}

func (s *MockChunkStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Closes++
	return nil
}

// Closed reports whether Close was called.
func (s *MockChunkStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Closes > 0
}

// StringChunks converts string chunks to byte chunks.
func StringChunks(parts ...string) [][]byte {
	chunks := make([][]byte, len(parts))
	for i, part := range parts {
		chunks[i] = []byte(part)
	}
	return chunks
}
