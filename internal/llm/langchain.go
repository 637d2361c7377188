package llm

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// ModelFactory builds the underlying langchaingo model on first use
type ModelFactory func() (llms.Model, error)

// LangChainProvider implements LLMProvider on top of a langchaingo model.
// The model is created lazily so the service can start without credentials
// and report them as missing per request.
type LangChainProvider struct {
	name    string
	apiKey  string
	timeout time.Duration
	factory ModelFactory
	logger  zerolog.Logger

	mu     sync.Mutex
	client llms.Model
}

func NewLangChainProvider(name, apiKey string, timeout time.Duration, factory ModelFactory, logger zerolog.Logger) *LangChainProvider {
	return &LangChainProvider{
		name:    name,
		apiKey:  apiKey,
		timeout: timeout,
		factory: factory,
		logger:  logger,
	}
}

func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration, logger zerolog.Logger) *LangChainProvider {
	factory := func() (llms.Model, error) {
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(model),
			openai.WithHTTPClient(&http.Client{Timeout: timeout}),
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(opts...)
	}
	return NewLangChainProvider("openai", apiKey, timeout, factory, logger)
}

func NewAnthropicProvider(apiKey, model string, timeout time.Duration, logger zerolog.Logger) *LangChainProvider {
	factory := func() (llms.Model, error) {
		return anthropic.New(
			anthropic.WithToken(apiKey),
			anthropic.WithModel(model),
		)
	}
	return NewLangChainProvider("anthropic", apiKey, timeout, factory, logger)
}

// Name returns the provider name used in logs
func (p *LangChainProvider) Name() string {
	return p.name
}

// HasCredentials reports whether an API key is configured
func (p *LangChainProvider) HasCredentials() bool {
	return p.apiKey != ""
}

func (p *LangChainProvider) model() (llms.Model, error) {
	if p.apiKey == "" {
		return nil, ErrCredentialsMissing
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		client, err := p.factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", p.name, err)
		}
		p.client = client
	}
	return p.client, nil
}

func (p *LangChainProvider) Complete(ctx context.Context, request *LLMRequest) (*LLMResponse, error) {
	client, err := p.model()
	if err != nil {
		return nil, err
	}

	messages := make([]llms.MessageContent, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(request.Temperature)}
	if request.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(request.MaxTokens))
	}
	if request.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := client.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", p.name, err)
	}

	out := &LLMResponse{}
	if len(resp.Choices) > 0 && resp.Choices[0] != nil {
		choice := resp.Choices[0]
		out.Content = choice.Content
		out.Usage = usageFromInfo(choice.GenerationInfo)
	}

	p.logger.Debug().
		Str("provider", p.name).
		Int("messages", len(messages)).
		Bool("json_mode", request.JSONMode).
		Int64("api_ms", time.Since(start).Milliseconds()).
		Msg("completion received")

	return out, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// usageFromInfo reads token counts from generation info; openai and
// anthropic report them under different keys.
func usageFromInfo(info map[string]any) *Usage {
	if info == nil {
		return nil
	}
	in := intFromInfo(info, "PromptTokens", "InputTokens")
	out := intFromInfo(info, "CompletionTokens", "OutputTokens")
	if in == 0 && out == 0 {
		return nil
	}
	return &Usage{InputTokens: in, OutputTokens: out}
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
