package endpoint

import "github.com/papercomputeco/sagestream/pkg/codec"

// Identity names the endpoint every request of an Invoker is sent to.
type Identity struct {
	// Name is the endpoint name. Required.
	Name string

	// InferenceComponent optionally targets one model hosted on a
	// multi-model endpoint. When empty it is omitted from requests.
	InferenceComponent string

	// Accept is the response content type requested from the endpoint.
	Accept string

	// ContentType is the request content type used when the codec's payload
	// does not declare one.
	ContentType string
}

// Validate reports whether the identity can address an endpoint.
func (id Identity) Validate() error {
	if id.Name == "" {
		return ErrNoEndpointName
	}
	return nil
}

// withCodecDefaults fills Accept and ContentType from a codec that
// describes its content types.
func (id Identity) withCodecDefaults(c codec.Codec) Identity {
	described, ok := c.(codec.Described)
	if !ok {
		return id
	}

	if id.Accept == "" {
		id.Accept = described.Accept()
	}
	if id.ContentType == "" {
		id.ContentType = described.ContentType()
	}
	return id
}
