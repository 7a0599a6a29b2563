// Package codec defines the pluggable translation between application level
// prompts and the wire payloads a model-serving endpoint accepts and emits.
//
// A Codec is supplied per endpoint. Encode turns a prompt and its model
// parameters into one request body; Decode turns one complete response
// record (the whole body for a blocking call, or one newline-delimited record
// of a streamed body) into text.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// ContentTypeJSON is the content type used by the built-in codecs.
	ContentTypeJSON = "application/json"
)

// ErrUnexpectedShape is returned by the built-in codecs when a record parses
// but does not carry the field they extract text from.
var ErrUnexpectedShape = errors.New("unexpected payload shape")

// Params are free-form model parameters merged into the request payload.
type Params map[string]any

// Payload is an encoded request body and its declared content type.
type Payload struct {
	Body        []byte
	ContentType string
}

// Codec encodes prompts into request payloads and decodes response records
// back into text. Implementations must be safe for concurrent use.
type Codec interface {
	// Encode builds the request payload for prompt with the given params.
	// params may be nil.
	Encode(prompt string, params Params) (Payload, error)

	// Decode extracts the text carried by a single, complete record.
	Decode(record []byte) (string, error)
}

// Described is implemented by codecs that know the content types they
// produce and expect. Callers use it to fill endpoint defaults.
type Described interface {
	ContentType() string
	Accept() string
}

// Funcs adapts a pair of plain functions to the Codec interface.
type Funcs struct {
	EncodeFunc func(prompt string, params Params) (Payload, error)
	DecodeFunc func(record []byte) (string, error)
}

func (f Funcs) Encode(prompt string, params Params) (Payload, error) {
	return f.EncodeFunc(prompt, params)
}

func (f Funcs) Decode(record []byte) (string, error) {
	return f.DecodeFunc(record)
}

var registry = map[string]func() Codec{
	"raw":   func() Codec { return NewRaw() },
	"tgi":   func() Codec { return NewTGI() },
	"token": func() Codec { return NewToken() },
}

// Lookup returns a built-in codec by name.
func Lookup(name string) (Codec, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names returns the sorted names of the built-in codecs.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithContentType returns c with every payload declared as contentType.
// An empty contentType returns c unchanged.
func WithContentType(c Codec, contentType string) Codec {
	if contentType == "" {
		return c
	}
	return &contentTypeOverride{Codec: c, contentType: contentType}
}

type contentTypeOverride struct {
	Codec
	contentType string
}

func (o *contentTypeOverride) Encode(prompt string, params Params) (Payload, error) {
	payload, err := o.Codec.Encode(prompt, params)
	if err != nil {
		return Payload{}, err
	}
	payload.ContentType = o.contentType
	return payload, nil
}

func (o *contentTypeOverride) ContentType() string {
	return o.contentType
}

func (o *contentTypeOverride) Accept() string {
	if d, ok := o.Codec.(Described); ok {
		return d.Accept()
	}
	return ""
}
