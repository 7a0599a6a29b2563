package sagemaker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"
)

// eventReader is satisfied by
// *sagemakerruntime.InvokeEndpointWithResponseStreamEventStream.
type eventReader interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

// chunkStream bridges the SDK's event channel to endpoint.ChunkStream.
type chunkStream struct {
	ctx    context.Context
	events eventReader
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

func newChunkStream(ctx context.Context, events eventReader, log *slog.Logger) *chunkStream {
	return &chunkStream{
		ctx:    ctx,
		events: events,
		logger: log,
	}
}

// Recv returns the bytes of the next payload part. Events the SDK does not
// model are skipped. When the channel closes, Recv returns the stream's
// terminal error, or io.EOF when it ended cleanly.
func (s *chunkStream) Recv() ([]byte, error) {
	for {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()

		case event, ok := <-s.events.Events():
			if !ok {
				if err := s.events.Err(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}

			switch ev := event.(type) {
			case *types.ResponseStreamMemberPayloadPart:
				return ev.Value.Bytes, nil

			case *types.UnknownUnionMember:
				s.logger.Debug("skipping unknown stream event", "tag", ev.Tag)

			default:
				s.logger.Debug("skipping unexpected stream event", "type", fmt.Sprintf("%T", event))
			}
		}
	}
}

// Close releases the underlying event stream. It is safe to call more than
// once.
func (s *chunkStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.events.Close()
	})
	return s.closeErr
}
