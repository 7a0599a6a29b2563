// Package sagemaker implements endpoint.Transport on top of the AWS SDK's
// SageMaker Runtime client.
package sagemaker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	"github.com/papercomputeco/sagestream/pkg/endpoint"
	"github.com/papercomputeco/sagestream/pkg/logger"
)

// RuntimeAPI is the subset of *sagemakerruntime.Client used by Transport.
type RuntimeAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
	InvokeEndpointWithResponseStream(ctx context.Context, params *sagemakerruntime.InvokeEndpointWithResponseStreamInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointWithResponseStreamOutput, error)
}

// Transport sends endpoint requests through the SageMaker Runtime API.
type Transport struct {
	client           RuntimeAPI
	customAttributes string
	logger           *slog.Logger
}

var _ endpoint.Transport = (*Transport)(nil)

// New creates a Transport using client.
func New(client RuntimeAPI, opts ...Option) *Transport {
	t := &Transport{
		client: client,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromRegion loads the default AWS configuration chain (environment,
// shared config, instance role) for region and creates a Transport. An empty
// region defers to the chain.
func NewFromRegion(ctx context.Context, region string, opts ...Option) (*Transport, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return New(sagemakerruntime.NewFromConfig(cfg), opts...), nil
}

// Send performs a blocking InvokeEndpoint call.
func (t *Transport) Send(ctx context.Context, req endpoint.Request) (*endpoint.Response, error) {
	out, err := t.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName:           aws.String(req.EndpointName),
		InferenceComponentName: optional(req.InferenceComponent),
		Body:                   req.Body,
		ContentType:            optional(req.ContentType),
		Accept:                 optional(req.Accept),
		CustomAttributes:       optional(t.customAttributes),
	})
	if err != nil {
		return nil, fmt.Errorf("invoking endpoint %s: %w", req.EndpointName, err)
	}

	return &endpoint.Response{
		ContentType: aws.ToString(out.ContentType),
		Body:        out.Body,
	}, nil
}

// SendStreaming starts an InvokeEndpointWithResponseStream call and returns
// its payload parts as a chunk stream.
func (t *Transport) SendStreaming(ctx context.Context, req endpoint.Request) (endpoint.ChunkStream, error) {
	out, err := t.client.InvokeEndpointWithResponseStream(ctx, &sagemakerruntime.InvokeEndpointWithResponseStreamInput{
		EndpointName:           aws.String(req.EndpointName),
		InferenceComponentName: optional(req.InferenceComponent),
		Body:                   req.Body,
		ContentType:            optional(req.ContentType),
		Accept:                 optional(req.Accept),
		CustomAttributes:       optional(t.customAttributes),
	})
	if err != nil {
		return nil, fmt.Errorf("invoking endpoint %s with response stream: %w", req.EndpointName, err)
	}

	events := out.GetStream()
	if events == nil {
		return nil, fmt.Errorf("invoking endpoint %s with response stream: %w", req.EndpointName, ErrNoEventStream)
	}

	return newChunkStream(ctx, events, t.logger.With("endpoint", req.EndpointName)), nil
}

// optional maps the empty string to an omitted field.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
