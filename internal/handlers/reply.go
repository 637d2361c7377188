package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avvvet/concierge-intent/internal/llm"
	"github.com/avvvet/concierge-intent/internal/metrics"
)

const (
	replyTemperature = 0.4
	replyMaxTokens   = 600
)

// ReplyGenerator produces the guest-facing text
type ReplyGenerator struct {
	provider llm.LLMProvider
}

func NewReplyGenerator(provider llm.LLMProvider) *ReplyGenerator {
	return &ReplyGenerator{provider: provider}
}

// Generate returns the trimmed completion text. An empty string is a valid
// result here; callers decide what it means.
func (g *ReplyGenerator) Generate(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
	start := time.Now()
	resp, err := g.provider.Complete(ctx, &llm.LLMRequest{
		Messages:    messages,
		MaxTokens:   replyMaxTokens,
		Temperature: temperature,
	})
	metrics.ObserveLLM("reply", time.Since(start).Seconds(), err)
	if err != nil {
		return "", fmt.Errorf("reply generation failed: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Content), nil
}
