// Package tokencount provides approximate token counting for LLM calls.
//
// It uses tiktoken-go to count tokens so prompt sizes and completion usage can
// be logged and monitored. Gemini does not publish its tokenizer; cl100k_base
// is a close enough approximation for budgeting purposes.
package tokencount

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Usage represents token counts for one model call.
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Counter provides thread-safe token counting.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{}
}

// DefaultCounter is a global token counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("tiktoken encoding unavailable, falling back to length estimate", slog.Any("error", err))
			return
		}
		c.enc = enc
	})
	return c.enc
}

// CountTokens counts the tokens in text, estimating ~4 chars per token when
// the encoding cannot be loaded.
func (c *Counter) CountTokens(text string) int {
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return len(text) / 4
}

// CalculateUsage produces the full usage record for one prompt/completion pair.
func (c *Counter) CalculateUsage(prompt, completion, model string) Usage {
	p := c.CountTokens(prompt)
	cm := c.CountTokens(completion)
	return Usage{
		PromptTokens:     p,
		CompletionTokens: cm,
		TotalTokens:      p + cm,
		Model:            model,
	}
}
