package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Token decodes the per-token records streamed by TGI and LMI containers
// when "stream": true is set:
//
//	data:{"token": {"id": 42, "text": "Sage", "special": false}}
//
// A leading "data:" prefix is tolerated. Requests are encoded as in TGI.
type Token struct{}

// NewToken creates a Token codec.
func NewToken() *Token { return &Token{} }

func (c *Token) ContentType() string { return ContentTypeJSON }
func (c *Token) Accept() string      { return ContentTypeJSON }

func (c *Token) Encode(prompt string, params Params) (Payload, error) {
	return NewTGI().Encode(prompt, params)
}

func (c *Token) Decode(record []byte) (string, error) {
	trimmed := bytes.TrimSpace(record)
	trimmed = bytes.TrimSpace(bytes.TrimPrefix(trimmed, []byte("data:")))

	var rec tokenRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return "", fmt.Errorf("parsing token record: %w", err)
	}

	if rec.Token == nil {
		// The final record of a TGI stream repeats the full text instead.
		if rec.GeneratedText != nil {
			return "", nil
		}
		return "", fmt.Errorf("%w: missing token", ErrUnexpectedShape)
	}

	if rec.Token.Special {
		return "", nil
	}
	return rec.Token.Text, nil
}
