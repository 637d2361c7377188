package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/avvvet/concierge-intent/internal/config"
	"github.com/avvvet/concierge-intent/internal/handlers"
	"github.com/avvvet/concierge-intent/internal/llm"
	xlog "github.com/avvvet/concierge-intent/internal/log"
	"github.com/avvvet/concierge-intent/internal/pms"
	"github.com/avvvet/concierge-intent/internal/transcript"
)

// loadConfig reads .env (if present) and the environment, then configures logging
func loadConfig(logOutput io.Writer) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Output:  logOutput,
		Service: cfg.ServiceName,
	})
	return cfg, nil
}

func newProvider(cfg *config.Config) *llm.LangChainProvider {
	logger := xlog.WithComponent("llm")
	if cfg.LLMProvider == "anthropic" {
		return llm.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTimeout, logger)
	}
	return llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.LLMTimeout, logger)
}

// openTranscripts falls back to a no-op store so a Redis outage never blocks chat
func openTranscripts(cfg *config.Config, logger zerolog.Logger) transcript.Store {
	if cfg.RedisURL == "" {
		logger.Info().Msg("Transcript storage disabled (REDIS_URL not set)")
		return transcript.NopStore{}
	}
	store, err := transcript.NewRedisStore(cfg.RedisURL, cfg.TranscriptTTL)
	if err != nil {
		logger.Warn().Err(err).Msg("Transcript storage unavailable, continuing without it")
		return transcript.NopStore{}
	}
	logger.Info().Dur("ttl", cfg.TranscriptTTL).Msg("Transcript storage connected")
	return store
}

type app struct {
	cfg         *config.Config
	provider    *llm.LangChainProvider
	transcripts transcript.Store
	handler     *handlers.ConciergeHandler
}

func buildApp(cfg *config.Config) *app {
	provider := newProvider(cfg)
	if !provider.HasCredentials() {
		logger := xlog.WithComponent("startup")
		logger.Warn().
			Str("provider", provider.Name()).
			Msg("Completion credentials missing; chat requests will answer credentials_missing")
	}

	gateway := pms.New(cfg, xlog.WithComponent("pms"))
	store := openTranscripts(cfg, xlog.WithComponent("transcript"))
	handler := handlers.NewConciergeHandler(
		provider,
		gateway,
		store,
		cfg.HotelName,
		cfg.DefaultCurrency,
		xlog.WithComponent("concierge"),
	)

	return &app{
		cfg:         cfg,
		provider:    provider,
		transcripts: store,
		handler:     handler,
	}
}

func (a *app) Close() error {
	return a.transcripts.Close()
}
