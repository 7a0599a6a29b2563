package codec

// generation is one element of the [{"generated_text": ...}] response array.
type generation struct {
	GeneratedText *string `json:"generated_text"`
}

// tgiOutput covers the {"outputs": [...]} record and the single-object
// {"generated_text": ...} variant.
type tgiOutput struct {
	Outputs       []string `json:"outputs"`
	GeneratedText *string  `json:"generated_text"`
}

// tokenRecord is one streamed TGI/LMI token record.
type tokenRecord struct {
	Token         *tokenInfo `json:"token"`
	GeneratedText *string    `json:"generated_text"`
}

type tokenInfo struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Special bool   `json:"special"`
}
