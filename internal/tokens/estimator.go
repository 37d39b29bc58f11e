// internal/tokens/estimator.go

// Package tokens estimates token usage for executions whose host
// reports none.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/freely-dev/freely/internal/types"
)

// fallbackDivisor approximates tokens from byte length when no
// tokenizer is available at all.
const fallbackDivisor = 4

// Estimator counts tokens with a per-model tokenizer, falling back to
// cl100k_base for models tiktoken does not know (which includes the
// claude and gemini families).
type Estimator struct {
	mu   sync.Mutex
	encs map[string]*tiktoken.Tiktoken
}

// NewEstimator creates an Estimator with an empty tokenizer cache.
func NewEstimator() *Estimator {
	return &Estimator{encs: make(map[string]*tiktoken.Tiktoken)}
}

// encoding returns the cached tokenizer for model, or nil when neither
// the model mapping nor the fallback encoding can be loaded.
func (e *Estimator) encoding(model string) *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encs[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
	}
	e.encs[model] = enc
	return enc
}

// Count returns the token count for text under the given model.
func (e *Estimator) Count(model, text string) int {
	if text == "" {
		return 0
	}
	enc := e.encoding(model)
	if enc == nil {
		return len(text) / fallbackDivisor
	}
	return len(enc.Encode(text, nil, nil))
}

// Usage estimates the token usage of one execution from its prompt and
// response text.
func (e *Estimator) Usage(model, prompt, response string) *types.TokenUsage {
	in := e.Count(model, prompt)
	out := e.Count(model, response)
	return &types.TokenUsage{
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
	}
}
