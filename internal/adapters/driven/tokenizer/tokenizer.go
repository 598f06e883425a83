// Package tokenizer counts model tokens with tiktoken encodings.
package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// DefaultEncoding is shared by the GPT-4 and text-embedding-3 model families.
const DefaultEncoding = "cl100k_base"

// Counter counts tokens using a tiktoken encoding.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads the named encoding. An empty name selects DefaultEncoding.
// The encoding's BPE ranks are fetched and cached on first use.
func New(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Counter{enc: enc}, nil
}

// ForModel loads the encoding used by a model, falling back to DefaultEncoding
// for models tiktoken does not know.
func ForModel(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return New(DefaultEncoding)
	}
	return &Counter{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Approximate estimates tokens at four bytes each. It is used when no
// encoding can be loaded, for example on an offline first run.
type Approximate struct{}

// Ensure Approximate implements the interface.
var _ driven.TokenCounter = Approximate{}

// Count returns an estimate of the number of tokens in text.
func (Approximate) Count(text string) int {
	if text == "" {
		return 0
	}
	n := utf8.RuneCountInString(text)
	return max(1, (n+3)/4)
}
