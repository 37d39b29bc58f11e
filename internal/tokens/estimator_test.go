// internal/tokens/estimator_test.go
package tokens

import (
	"testing"
)

func TestCountEmptyText(t *testing.T) {
	e := NewEstimator()
	if n := e.Count("gpt-4", ""); n != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", n)
	}
}

func TestCountNonEmptyText(t *testing.T) {
	e := NewEstimator()
	n := e.Count("claude-sonnet", "The quick brown fox jumps over the lazy dog.")
	if n <= 0 {
		t.Errorf("expected positive token count, got %d", n)
	}
}

func TestUsageSumsInputAndOutput(t *testing.T) {
	e := NewEstimator()
	u := e.Usage("gemini-pro", "write a haiku", "an old silent pond / a frog jumps into the pond / splash! silence again")
	if u.TotalTokens != u.InputTokens+u.OutputTokens {
		t.Errorf("total %d != input %d + output %d", u.TotalTokens, u.InputTokens, u.OutputTokens)
	}
	if u.InputTokens == 0 || u.OutputTokens == 0 {
		t.Errorf("expected non-zero estimates, got %+v", u)
	}
}
