package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	// Service configuration
	ServiceName    string        `validate:"required"`
	HTTPAddr       string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	RequestTimeout time.Duration `validate:"min=1s"`

	// Hotel configuration
	HotelName       string `validate:"required"`
	DefaultCurrency string `validate:"required,len=3"`
	DemoMode        bool

	// LLM configuration
	LLMProvider     string `validate:"oneof=openai anthropic"`
	OpenAIAPIKey    string
	OpenAIModel     string `validate:"required"`
	OpenAIBaseURL   string `validate:"omitempty,url"`
	AnthropicAPIKey string
	AnthropicModel  string        `validate:"required"`
	LLMTimeout      time.Duration `validate:"min=1s"`

	// HTTP edge
	RateLimitPerMinute int `validate:"min=0"`
	AllowedOrigins     []string

	// NATS configuration
	NatsEnabled        bool
	NatsURL            string `validate:"required_if=NatsEnabled true"`
	NatsRequestSubject string `validate:"required"`
	NatsTimeout        time.Duration

	// Transcript storage (disabled when RedisURL is empty)
	RedisURL      string
	TranscriptTTL time.Duration `validate:"min=1m"`

	Cloudbeds CloudbedsConfig
}

// CloudbedsConfig holds the live PMS client settings. Parameter and endpoint
// names are configurable because Cloudbeds accounts differ in API version.
type CloudbedsConfig struct {
	BaseURL      string `validate:"required,url"`
	TokenURL     string `validate:"omitempty,url"`
	PropertyID   string
	ClientID     string
	ClientSecret string
	AccessToken  string
	APIKey       string
	Timeout      time.Duration
	Debug        bool

	PropertyIDParam  string
	APIKeyParam      string
	AccessTokenParam string

	EndpointAvailability string
	EndpointRooms        string
	EndpointPolicies     string
	EndpointPricing      string

	ParamStartDate string
	ParamEndDate   string
	ParamAdults    string
	ParamRoomType  string
}

func Load() (*Config, error) {
	baseURL := getEnv("CLOUDBEDS_BASE_URL", "https://hotels.cloudbeds.com/api/v1.2")

	cfg := &Config{
		// Service settings
		ServiceName:    getEnv("SERVICE_NAME", "concierge-intent"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":"+getEnv("PORT", "3000")),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 45*time.Second),

		// Hotel settings
		HotelName:       getEnv("HOTEL_NAME", "Suites Mine"),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "MXN")),
		DemoMode:        getBoolEnv("DEMO_MODE", true),

		// LLM settings
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		LLMTimeout:      getDurationEnv("LLM_TIMEOUT", 30*time.Second),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:     getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// NATS settings
		NatsEnabled:        getBoolEnv("NATS_ENABLED", false),
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsRequestSubject: getEnv("NATS_REQUEST_SUBJECT", "concierge.chat"),
		NatsTimeout:        getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		RedisURL:      getEnv("REDIS_URL", ""),
		TranscriptTTL: getDurationEnv("TRANSCRIPT_TTL", 24*time.Hour),

		Cloudbeds: CloudbedsConfig{
			BaseURL:      baseURL,
			TokenURL:     getEnv("CLOUDBEDS_TOKEN_URL", strings.TrimRight(baseURL, "/")+"/access_token"),
			PropertyID:   getEnv("CLOUDBEDS_PROPERTY_ID", ""),
			ClientID:     getEnv("CLOUDBEDS_CLIENT_ID", ""),
			ClientSecret: getEnv("CLOUDBEDS_CLIENT_SECRET", ""),
			AccessToken:  getEnv("CLOUDBEDS_ACCESS_TOKEN", ""),
			APIKey:       getEnv("CLOUDBEDS_API_KEY", ""),
			Timeout:      getDurationEnv("CLOUDBEDS_TIMEOUT", 15*time.Second),
			Debug:        getBoolEnv("DEBUG_CLOUDBEDS", false),

			PropertyIDParam:  getEnv("CLOUDBEDS_PROPERTY_ID_PARAM", "propertyID"),
			APIKeyParam:      getEnv("CLOUDBEDS_API_KEY_PARAM", "key"),
			AccessTokenParam: getEnv("CLOUDBEDS_ACCESS_TOKEN_PARAM", "access_token"),

			EndpointAvailability: getEnv("CLOUDBEDS_ENDPOINT_AVAILABILITY", "getAvailability"),
			EndpointRooms:        getEnv("CLOUDBEDS_ENDPOINT_ROOMS", "getRooms"),
			EndpointPolicies:     getEnv("CLOUDBEDS_ENDPOINT_POLICIES", "getPolicies"),
			EndpointPricing:      getEnv("CLOUDBEDS_ENDPOINT_PRICING", "getRates"),

			ParamStartDate: getEnv("CLOUDBEDS_PARAM_START_DATE", "start_date"),
			ParamEndDate:   getEnv("CLOUDBEDS_PARAM_END_DATE", "end_date"),
			ParamAdults:    getEnv("CLOUDBEDS_PARAM_ADULTS", "adults"),
			ParamRoomType:  getEnv("CLOUDBEDS_PARAM_ROOM_TYPE", "roomTypeID"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// CompletionAPIKey returns the credential for the selected LLM provider
func (c *Config) CompletionAPIKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// CompletionModel returns the model identifier for the selected LLM provider
func (c *Config) CompletionModel() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
