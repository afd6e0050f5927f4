// Package tokens counts BPE tokens using the cl100k_base encoding.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	once sync.Once
	bpe  *tiktoken.Tiktoken
)

// encoding returns the shared cl100k_base encoder, loading it on first use.
// A load failure leaves the encoder nil and counting returns 0.
func encoding() *tiktoken.Tiktoken {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		bpe = enc
	})
	return bpe
}

// Count returns the number of tokens in the given text.
func Count(text string) int {
	enc := encoding()
	if enc == nil {
		return 0
	}
	return len(enc.EncodeOrdinary(text))
}

// ExceedsLimit reports whether the text exceeds the token limit.
func ExceedsLimit(text string, limit int) bool {
	return Count(text) > limit
}

// Available reports whether the tokenizer loaded successfully.
func Available() bool {
	return encoding() != nil
}
