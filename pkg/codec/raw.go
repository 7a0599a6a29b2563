package codec

import (
	"encoding/json"
	"fmt"
)

// Raw sends the prompt bytes verbatim and reads the
// [{"generated_text": "..."}] response shape of the Hugging Face
// inference containers.
type Raw struct{}

// NewRaw creates a Raw codec.
func NewRaw() *Raw { return &Raw{} }

func (c *Raw) ContentType() string { return ContentTypeJSON }
func (c *Raw) Accept() string      { return ContentTypeJSON }

// Encode ignores params; the body is the prompt itself.
func (c *Raw) Encode(prompt string, _ Params) (Payload, error) {
	return Payload{
		Body:        []byte(prompt),
		ContentType: ContentTypeJSON,
	}, nil
}

func (c *Raw) Decode(record []byte) (string, error) {
	var generations []generation
	if err := json.Unmarshal(record, &generations); err != nil {
		return "", fmt.Errorf("parsing generations: %w", err)
	}

	if len(generations) == 0 || generations[0].GeneratedText == nil {
		return "", fmt.Errorf("%w: missing generated_text", ErrUnexpectedShape)
	}

	return *generations[0].GeneratedText, nil
}
