// Package tokens estimates token counts for prompts and responses.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used for estimates.
const DefaultEncoding = "cl100k_base"

// Counter counts tokens with tiktoken. The encoding is loaded lazily on
// first use; when it cannot be loaded, counts fall back to runes/4.
type Counter struct {
	name     string
	once     sync.Once
	encoding *tiktoken.Tiktoken
	loadErr  error
	mu       sync.Mutex
}

// NewCounter creates a counter for the named encoding ("" for the default).
func NewCounter(encoding string) *Counter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Counter{name: encoding}
}

func (c *Counter) load() {
	c.once.Do(func() {
		c.encoding, c.loadErr = tiktoken.GetEncoding(c.name)
	})
}

// Err returns the encoding load error, if any. It triggers loading.
func (c *Counter) Err() error {
	c.load()
	return c.loadErr
}

// Exact reports whether counts come from the tokenizer rather than the
// estimate.
func (c *Counter) Exact() bool {
	return c.Err() == nil && c.encoding != nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil {
		return Estimate(text)
	}
	c.load()
	if c.encoding == nil {
		return Estimate(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoding.Encode(text, nil, nil))
}

// Estimate approximates a token count as one token per four runes.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	if est := n / 4; est > 0 {
		return est
	}
	return 1
}
