// Package tokens counts tokens in assistant responses for the status line.
package tokens

import (
	"sync"
	"sync/atomic"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE used by current chat models.
const DefaultEncoding = "cl100k_base"

type encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
}

// Counter loads its encoding on first use (~100ms, may fetch the BPE file
// once). If the encoding cannot be loaded it falls back to len/4.
type Counter struct {
	load func() (encoder, error)

	once   sync.Once
	loaded atomic.Bool // set after enc and err are written
	enc    encoder
	err    error
}

func NewCounter() *Counter {
	return &Counter{load: func() (encoder, error) {
		return tiktoken.GetEncoding(DefaultEncoding)
	}}
}

// Count returns the number of tokens in text and whether the count is exact.
func (c *Counter) Count(text string) (n int, exact bool) {
	if text == "" {
		return 0, true
	}
	c.once.Do(func() {
		c.enc, c.err = c.load()
		c.loaded.Store(true)
	})
	if c.err != nil || c.enc == nil {
		return estimate(text), false
	}
	return len(c.enc.Encode(text, nil, nil)), true
}

// Err reports why the encoding could not be loaded, if it was tried. Safe to
// call while counts run on other goroutines.
func (c *Counter) Err() error {
	if !c.loaded.Load() {
		return nil
	}
	return c.err
}

func estimate(text string) int {
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
