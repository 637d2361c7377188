package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/avvvet/concierge-intent/internal/llm"
	"github.com/avvvet/concierge-intent/internal/metrics"
	"github.com/avvvet/concierge-intent/internal/models"
	"github.com/avvvet/concierge-intent/internal/prompts"
)

const classifierMaxTokens = 50

// IntentClassifier asks the completion service to label a guest message
type IntentClassifier struct {
	provider llm.LLMProvider
	prompt   string
	logger   zerolog.Logger
}

func NewIntentClassifier(provider llm.LLMProvider, logger zerolog.Logger) *IntentClassifier {
	return &IntentClassifier{
		provider: provider,
		prompt:   prompts.BuildClassifierPrompt(),
		logger:   logger,
	}
}

// Classify always yields a member of the intent set unless the completion
// call itself fails. Unusable model output becomes handoff.
func (c *IntentClassifier) Classify(ctx context.Context, message string) (models.Intent, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		text = prompts.EmptyMessagePlaceholder
	}

	start := time.Now()
	resp, err := c.provider.Complete(ctx, &llm.LLMRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: c.prompt},
			{Role: llm.RoleUser, Content: text},
		},
		MaxTokens:   classifierMaxTokens,
		Temperature: 0,
		JSONMode:    true,
	})
	metrics.ObserveLLM("classify", time.Since(start).Seconds(), err)
	if err != nil {
		return "", fmt.Errorf("intent classification failed: %w", err)
	}

	var content string
	if resp != nil {
		content = resp.Content
	}

	intent := prompts.ParseIntentResponse(content)
	c.logger.Debug().
		Str("raw", content).
		Str("intent", string(intent)).
		Msg("Classifier output parsed")
	return intent, nil
}
