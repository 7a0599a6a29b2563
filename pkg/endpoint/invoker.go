package endpoint

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/sagestream/pkg/codec"
	"github.com/papercomputeco/sagestream/pkg/logger"
)

// Invoker sends prompts to one endpoint and decodes the responses with one
// codec. An Invoker holds no per-call state and is safe for concurrent use.
type Invoker struct {
	identity  Identity
	codec     codec.Codec
	transport Transport

	strict   bool
	observer func(StreamStats)
	logger   *slog.Logger
}

// New creates an Invoker for identity. Accept and ContentType left empty in
// identity are taken from the codec when it implements codec.Described.
func New(identity Identity, c codec.Codec, transport Transport, opts ...Option) (*Invoker, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNilCodec
	}
	if transport == nil {
		return nil, ErrNilTransport
	}

	inv := &Invoker{
		identity:  identity.withCodecDefaults(c),
		codec:     c,
		transport: transport,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(inv)
	}

	return inv, nil
}

// Identity returns the endpoint identity requests are sent to.
func (inv *Invoker) Identity() Identity {
	return inv.identity
}

// Invoke sends prompt with params in one blocking call and returns the
// decoded answer.
func (inv *Invoker) Invoke(ctx context.Context, prompt string, params codec.Params) (string, error) {
	req, err := inv.request(prompt, params)
	if err != nil {
		return "", err
	}

	log := inv.logger.With(
		"invocation_id", uuid.NewString(),
		"endpoint", inv.identity.Name,
	)
	log.Debug("invoking endpoint", "body_bytes", len(req.Body))

	start := time.Now()
	resp, err := inv.transport.Send(ctx, req)
	if err != nil {
		log.Debug("invocation failed", "error", err)
		return "", err
	}
	if resp == nil {
		return "", ErrNoResponse
	}

	text, err := inv.codec.Decode(resp.Body)
	if err != nil {
		return "", &DecodeError{Record: resp.Body, Err: err}
	}

	log.Debug("invocation complete",
		"content_type", resp.ContentType,
		"duration", time.Since(start),
	)
	return text, nil
}

// Stream sends prompt with params as a streaming invocation and returns the
// decoded fragments as a lazy sequence.
//
// The transport is called when the sequence is first ranged over, and each
// record is decoded only when the loop asks for the next value. An error, if
// any, is the final element of the sequence and is paired with an empty
// string. Breaking out of the loop closes the transport stream. The sequence
// can be ranged over once; later attempts yield ErrStreamConsumed.
func (inv *Invoker) Stream(ctx context.Context, prompt string, params codec.Params) iter.Seq2[string, error] {
	var started atomic.Bool

	return func(yield func(string, error) bool) {
		if !started.CompareAndSwap(false, true) {
			yield("", ErrStreamConsumed)
			return
		}

		req, err := inv.request(prompt, params)
		if err != nil {
			yield("", err)
			return
		}

		log := inv.logger.With(
			"invocation_id", uuid.NewString(),
			"endpoint", inv.identity.Name,
		)
		log.Debug("starting stream", "body_bytes", len(req.Body))

		stream, err := inv.transport.SendStreaming(ctx, req)
		if err != nil {
			log.Debug("stream failed to start", "error", err)
			yield("", err)
			return
		}
		if stream == nil {
			yield("", ErrNoResponse)
			return
		}

		dec := NewDecoder(stream, inv.codec.Decode, StrictFraming(inv.strict))
		defer func() {
			if err := dec.Close(); err != nil {
				log.Debug("closing stream", "error", err)
			}
			inv.report(log, dec.Stats())
		}()

		for {
			text, err := dec.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				log.Debug("stream failed", "error", err)
				yield("", err)
				return
			}

			if !yield(text, nil) {
				log.Debug("stream abandoned by consumer")
				return
			}
		}
	}
}

// request encodes prompt into the transport request for this endpoint.
func (inv *Invoker) request(prompt string, params codec.Params) (Request, error) {
	if prompt == "" {
		return Request{}, ErrEmptyPrompt
	}

	payload, err := inv.codec.Encode(prompt, params)
	if err != nil {
		return Request{}, &EncodeError{Err: err}
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = inv.identity.ContentType
	}

	return Request{
		EndpointName:       inv.identity.Name,
		InferenceComponent: inv.identity.InferenceComponent,
		Body:               payload.Body,
		ContentType:        contentType,
		Accept:             inv.identity.Accept,
	}, nil
}

func (inv *Invoker) report(log *slog.Logger, stats StreamStats) {
	log.Debug("stream finished",
		"chunks", stats.Chunks,
		"bytes", stats.Bytes,
		"records", stats.Records,
		"discarded", stats.Discarded,
	)

	if inv.observer != nil {
		inv.observer(stats)
	}
}
