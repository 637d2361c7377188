// Package pms provides the property-management gateway used to ground
// concierge replies: a deterministic mock for demos and a live Cloudbeds client.
package pms

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/avvvet/concierge-intent/internal/config"
	"github.com/avvvet/concierge-intent/internal/models"
)

// Gateway is the capability set both backends implement.
// Failures are reported in the Result, never as Go errors.
type Gateway interface {
	GetAvailability(ctx context.Context, params models.RequestParams) Result
	GetPricing(ctx context.Context, params models.RequestParams) Result
	GetRooms(ctx context.Context) Result
	GetPolicies(ctx context.Context) Result
}

// Operation names, used for logging and metrics
const (
	OpAvailability = "availability"
	OpPricing      = "pricing"
	OpRooms        = "rooms"
	OpPolicies     = "policies"
)

// Failure codes
const (
	ErrInvalidDates       = "invalid_dates"
	ErrPropertyIDMissing  = "cloudbeds_property_id_missing"
	ErrCredentialsMissing = "cloudbeds_credentials_missing"
	ErrTokenUnavailable   = "cloudbeds_token_error"
	ErrFetchFailed        = "cloudbeds_fetch_failed"
	ErrAPIFailure         = "cloudbeds_api_error"
)

// Field names reported in MissingFields
const (
	FieldCheckIn  = "checkIn"
	FieldCheckOut = "checkOut"
)

// Result is the tagged outcome of a gateway call.
// Exactly one of Data (OK), MissingFields or Error is meaningful.
type Result struct {
	OK            bool
	Data          any
	MissingFields []string
	Error         string
}

func Success(data any) Result {
	return Result{OK: true, Data: data}
}

func Missing(fields ...string) Result {
	return Result{MissingFields: fields}
}

func Failure(code string) Result {
	return Result{Error: code}
}

// New selects the backend once at startup
func New(cfg *config.Config, logger zerolog.Logger) Gateway {
	if cfg.DemoMode {
		logger.Info().Msg("using mock PMS gateway (demo mode)")
		return NewMockGateway(cfg.HotelName, cfg.DefaultCurrency)
	}
	logger.Info().Str("base_url", cfg.Cloudbeds.BaseURL).Msg("using Cloudbeds PMS gateway")
	return NewCloudbedsClient(cfg.Cloudbeds, logger)
}
