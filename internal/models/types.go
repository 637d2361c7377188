package models

import (
	"math"
	"strconv"
	"strings"
)

// Intent is the classified purpose of a guest message
type Intent string

const (
	IntentAvailability Intent = "availability"
	IntentPricing      Intent = "pricing"
	IntentRoomsInfo    Intent = "rooms_info"
	IntentFAQ          Intent = "faq"
	IntentHandoff      Intent = "handoff"
)

// AllowedIntents lists every intent the classifier may return, in prompt order
var AllowedIntents = []Intent{
	IntentAvailability,
	IntentPricing,
	IntentRoomsInfo,
	IntentFAQ,
	IntentHandoff,
}

// ParseIntent normalizes raw model output into an Intent.
// The second return value is false when the value is not a known intent.
func ParseIntent(raw string) (Intent, bool) {
	candidate := Intent(strings.ToLower(strings.TrimSpace(raw)))
	for _, intent := range AllowedIntents {
		if candidate == intent {
			return intent, true
		}
	}
	return "", false
}

// LanguageTag is a best-effort hint about the guest's language
type LanguageTag string

const (
	LanguageFrench  LanguageTag = "fr"
	LanguageSpanish LanguageTag = "es"
	LanguageEnglish LanguageTag = "en"
	LanguageAuto    LanguageTag = "auto"
)

// RequestParams carries the optional booking details sent with a message
type RequestParams struct {
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Guests   *int   `json:"guests,omitempty"`
	RoomType string `json:"roomType,omitempty"`
}

// ConversationContext is the grounding data handed to the reply generator
type ConversationContext struct {
	Hotel         string        `json:"hotel"`
	Intent        Intent        `json:"intent"`
	Language      LanguageTag   `json:"language"`
	Request       RequestParams `json:"request"`
	PMSStatus     string        `json:"pmsStatus"`
	MissingFields []string      `json:"missingFields"`
	Data          any           `json:"data"`
}

// ChatRequest is the inbound payload shared by the HTTP and NATS transports.
// Guests is loosely typed because browser forms send it as a string.
type ChatRequest struct {
	Message  string `json:"message"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Guests   any    `json:"guests,omitempty"`
	RoomType string `json:"roomType,omitempty"`
}

// Params extracts the booking parameters from the request
func (r *ChatRequest) Params() RequestParams {
	return RequestParams{
		CheckIn:  strings.TrimSpace(r.CheckIn),
		CheckOut: strings.TrimSpace(r.CheckOut),
		Guests:   guestCount(r.Guests),
		RoomType: strings.TrimSpace(r.RoomType),
	}
}

// guestCount yields nil for anything that is not a whole number in
// [0, MaxInt32]; such values are treated as if no count was sent.
func guestCount(v any) *int {
	var f float64
	switch g := v.(type) {
	case float64:
		f = g
	case int:
		f = float64(g)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(g), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return nil
	}
	n := int(f)
	return &n
}

// ChatResponse is returned to the guest
type ChatResponse struct {
	Reply    string      `json:"reply"`
	Intent   Intent      `json:"intent"`
	Language LanguageTag `json:"language"`
}

// ErrorResponse is the body of every failed chat request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PMS status values (failure codes from the gateway are passed through as-is)
const (
	PMSStatusOK            = "ok"
	PMSStatusNotNeeded     = "not_needed"
	PMSStatusMissingFields = "missing_fields"
	PMSStatusInvalidDates  = "invalid_dates"
	PMSStatusUnavailable   = "pms_unavailable"
)

// Error codes
const (
	ErrorMessageRequired    = "message_required"
	ErrorCredentialsMissing = "credentials_missing"
	ErrorEmptyModelResponse = "empty_model_response"
	ErrorInternal           = "internal_error"
	ErrorInvalidRequest     = "invalid_request"
)
