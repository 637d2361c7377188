package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/concierge-intent/internal/config"
	"github.com/avvvet/concierge-intent/internal/handlers"
	"github.com/avvvet/concierge-intent/internal/llm"
	xlog "github.com/avvvet/concierge-intent/internal/log"
	"github.com/avvvet/concierge-intent/internal/models"
)

type fakeChat struct {
	mu        sync.Mutex
	resp      *models.ChatResponse
	err       error
	message   string
	params    models.RequestParams
	requestID string
	deadline  bool
}

func (f *fakeChat) Handle(ctx context.Context, message string, params models.RequestParams) (*models.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = message
	f.params = params
	f.requestID = xlog.RequestIDFromContext(ctx)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:       ":0",
		RequestTimeout: 5 * time.Second,
		HotelName:      "Suites Mine",
		AllowedOrigins: []string{"*"},
	}
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChatSuccess(t *testing.T) {
	chat := &fakeChat{resp: &models.ChatResponse{Reply: "Bienvenue", Intent: models.IntentAvailability, Language: models.LanguageFrench}}
	srv := NewHTTPServer(testConfig(), chat, zerolog.Nop())

	rec := postChat(t, srv.Handler(), `{"message":"Bonjour","checkIn":" 2025-02-10 ","checkOut":"2025-02-12","guests":"2","roomType":"Junior Suite"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	body := decodeBody(t, rec)
	assert.Equal(t, map[string]any{"reply": "Bienvenue", "intent": "availability", "language": "fr"}, body)

	assert.Equal(t, "Bonjour", chat.message)
	assert.Equal(t, "2025-02-10", chat.params.CheckIn)
	require.NotNil(t, chat.params.Guests)
	assert.Equal(t, 2, *chat.params.Guests)
	assert.Equal(t, "Junior Suite", chat.params.RoomType)
	assert.True(t, chat.deadline)
	assert.Equal(t, rec.Header().Get(requestIDHeader), chat.requestID)
}

func TestChatKeepsCallerRequestID(t *testing.T) {
	chat := &fakeChat{resp: &models.ChatResponse{Reply: "hi", Intent: models.IntentHandoff, Language: models.LanguageAuto}}
	srv := NewHTTPServer(testConfig(), chat, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", chat.requestID)
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"message required", handlers.ErrMessageRequired, http.StatusBadRequest, "message_required"},
		{"credentials", llm.ErrCredentialsMissing, http.StatusServiceUnavailable, "credentials_missing"},
		{"empty reply", handlers.ErrEmptyGeneration, http.StatusInternalServerError, "empty_model_response"},
		{"anything else", errors.New("secret upstream detail"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewHTTPServer(testConfig(), &fakeChat{err: tt.err}, zerolog.Nop())
			rec := postChat(t, srv.Handler(), `{"message":"hello"}`)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.code, body["error"])
			assert.NotContains(t, rec.Body.String(), "secret upstream detail")
		})
	}
}

func TestChatEmptyBodyReachesHandler(t *testing.T) {
	chat := &fakeChat{err: handlers.ErrMessageRequired}
	srv := NewHTTPServer(testConfig(), chat, zerolog.Nop())

	rec := postChat(t, srv.Handler(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message_required", decodeBody(t, rec)["error"])
	assert.Equal(t, "", chat.message)
}

func TestChatMalformedJSON(t *testing.T) {
	var logs bytes.Buffer
	srv := NewHTTPServer(testConfig(), &fakeChat{}, zerolog.New(&logs))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":`))
	req.Header.Set(requestIDHeader, "bad-1")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, rec)["error"])
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "Invalid chat payload")
	assert.Contains(t, logs.String(), `"request_id":"bad-1"`)
}

func TestChatRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2
	chat := &fakeChat{resp: &models.ChatResponse{Reply: "ok", Intent: models.IntentFAQ, Language: models.LanguageAuto}}
	h := NewHTTPServer(cfg, chat, zerolog.Nop()).Handler()

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, postChat(t, h, `{"message":"hi"}`).Code)
	}
	rec := postChat(t, h, `{"message":"hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit_exceeded", decodeBody(t, rec)["error"])

	// the page and health check are not limited
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	health := httptest.NewRecorder()
	h.ServeHTTP(health, req)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestChatPage(t *testing.T) {
	srv := NewHTTPServer(testConfig(), &fakeChat{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Suites Mine AI Concierge</h1>")
	assert.Contains(t, rec.Body.String(), `fetch("/chat"`)
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewHTTPServer(testConfig(), &fakeChat{}, zerolog.Nop()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "concierge_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	h := NewHTTPServer(testConfig(), &fakeChat{}, zerolog.Nop()).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
