package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// TGI speaks the text-generation-inference JSON dialect:
//
//	request:  {"inputs": "<prompt>", "parameters": {...}, ...}
//	response: {"outputs": ["<text>"]}
//
// Params are merged into the top level of the request object. For blocking
// responses Decode also understands the generated_text shapes.
type TGI struct{}

// NewTGI creates a TGI codec.
func NewTGI() *TGI { return &TGI{} }

func (c *TGI) ContentType() string { return ContentTypeJSON }
func (c *TGI) Accept() string      { return ContentTypeJSON }

func (c *TGI) Encode(prompt string, params Params) (Payload, error) {
	body, err := encodeInputs(prompt, params)
	if err != nil {
		return Payload{}, err
	}

	return Payload{Body: body, ContentType: ContentTypeJSON}, nil
}

func (c *TGI) Decode(record []byte) (string, error) {
	trimmed := bytes.TrimSpace(record)

	// [{"generated_text": "..."}]
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return NewRaw().Decode(trimmed)
	}

	var out tgiOutput
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return "", fmt.Errorf("parsing outputs: %w", err)
	}

	switch {
	case len(out.Outputs) > 0:
		return out.Outputs[0], nil
	case out.GeneratedText != nil:
		return *out.GeneratedText, nil
	default:
		return "", fmt.Errorf("%w: missing outputs", ErrUnexpectedShape)
	}
}

// encodeInputs renders {"inputs": prompt} merged with params. The prompt
// always wins over an "inputs" key in params.
func encodeInputs(prompt string, params Params) ([]byte, error) {
	body := make(map[string]any, len(params)+1)
	maps.Copy(body, params)
	body["inputs"] = prompt

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return encoded, nil
}
