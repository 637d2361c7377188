package llm

import (
	"context"
	"errors"
)

// ErrCredentialsMissing is returned when the completion service has no API key configured
var ErrCredentialsMissing = errors.New("llm: credentials missing")

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMProvider defines the interface for completion services
type LLMProvider interface {
	Complete(ctx context.Context, request *LLMRequest) (*LLMResponse, error)
}

// Message is a single role-tagged chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMRequest represents the structured request to LLM
type LLMRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// JSONMode constrains the output to a JSON object
	JSONMode bool
}

// LLMResponse represents the raw response from LLM
type LLMResponse struct {
	Content string
	Usage   *Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}
