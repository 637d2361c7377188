package pms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avvvet/concierge-intent/internal/config"
	"github.com/avvvet/concierge-intent/internal/models"
)

type fakeCloudbeds struct {
	*httptest.Server
	tokenCalls atomic.Int32
	expiresIn  int

	mu        sync.Mutex
	lastPath  string
	lastQuery map[string]string
	status    int
}

func newFakeCloudbeds(t *testing.T, expiresIn int) *fakeCloudbeds {
	f := &fakeCloudbeds{expiresIn: expiresIn, status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"expires_in":   f.expiresIn,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastPath = r.URL.Path
		f.lastQuery = map[string]string{}
		for key := range r.URL.Query() {
			f.lastQuery[key] = r.URL.Query().Get(key)
		}
		status := f.status
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"success":true,"data":[{"roomTypeName":"Junior Suite"}]}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCloudbeds) setStatus(status int) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

func (f *fakeCloudbeds) request() (string, map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.lastQuery
}

func cloudbedsConfig(baseURL string) config.CloudbedsConfig {
	return config.CloudbedsConfig{
		BaseURL:              baseURL,
		TokenURL:             baseURL + "/access_token",
		PropertyID:           "prop-1",
		ClientID:             "client-abc",
		ClientSecret:         "secret",
		Timeout:              2 * time.Second,
		PropertyIDParam:      "propertyID",
		APIKeyParam:          "key",
		AccessTokenParam:     "access_token",
		EndpointAvailability: "getAvailability",
		EndpointRooms:        "getRooms",
		EndpointPolicies:     "getPolicies",
		EndpointPricing:      "getRates",
		ParamStartDate:       "start_date",
		ParamEndDate:         "end_date",
		ParamAdults:          "adults",
		ParamRoomType:        "roomTypeID",
	}
}

func TestCloudbedsConfigurationErrors(t *testing.T) {
	ctx := context.Background()

	cfg := cloudbedsConfig("http://127.0.0.1:1")
	cfg.PropertyID = ""
	res := NewCloudbedsClient(cfg, zerolog.Nop()).GetRooms(ctx)
	assert.Equal(t, ErrPropertyIDMissing, res.Error)

	cfg = cloudbedsConfig("http://127.0.0.1:1")
	cfg.ClientSecret = ""
	res = NewCloudbedsClient(cfg, zerolog.Nop()).GetRooms(ctx)
	assert.Equal(t, ErrCredentialsMissing, res.Error)
}

func TestCloudbedsClientCredentialsFlow(t *testing.T) {
	srv := newFakeCloudbeds(t, 3600)
	client := NewCloudbedsClient(cloudbedsConfig(srv.URL), zerolog.Nop())

	res := client.GetAvailability(context.Background(), models.RequestParams{
		CheckIn:  "2025-02-10",
		CheckOut: "2025-02-12",
		Guests:   intPtr(2),
	})
	require.True(t, res.OK, res.Error)

	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["success"])

	path, query := srv.request()
	assert.Equal(t, "/getAvailability", path)
	assert.Equal(t, "prop-1", query["propertyID"])
	assert.Equal(t, "tok-123", query["access_token"])
	assert.Equal(t, "2025-02-10", query["start_date"])
	assert.Equal(t, "2025-02-12", query["end_date"])
	assert.Equal(t, "2", query["adults"])
	assert.NotContains(t, query, "roomTypeID")
}

func TestCloudbedsTokenIsReused(t *testing.T) {
	srv := newFakeCloudbeds(t, 3600)
	client := NewCloudbedsClient(cloudbedsConfig(srv.URL), zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := client.GetRooms(context.Background())
			assert.True(t, res.OK)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), srv.tokenCalls.Load())
}

func TestCloudbedsTokenRefreshedNearExpiry(t *testing.T) {
	// inside the 30s refresh window from the start
	srv := newFakeCloudbeds(t, 10)
	client := NewCloudbedsClient(cloudbedsConfig(srv.URL), zerolog.Nop())

	require.True(t, client.GetRooms(context.Background()).OK)
	require.True(t, client.GetPolicies(context.Background()).OK)
	assert.Equal(t, int32(2), srv.tokenCalls.Load())
}

func TestCloudbedsTokenError(t *testing.T) {
	srv := newFakeCloudbeds(t, 3600)
	cfg := cloudbedsConfig(srv.URL)
	cfg.ClientSecret = "wrong"

	res := NewCloudbedsClient(cfg, zerolog.Nop()).GetRooms(context.Background())
	assert.False(t, res.OK)
	assert.Equal(t, ErrTokenUnavailable, res.Error)
}

func TestCloudbedsAPIKeyMode(t *testing.T) {
	srv := newFakeCloudbeds(t, 3600)
	cfg := cloudbedsConfig(srv.URL)
	cfg.APIKey = "api-key-1"

	res := NewCloudbedsClient(cfg, zerolog.Nop()).GetPricing(context.Background(), models.RequestParams{RoomType: "JS"})
	require.True(t, res.OK)

	path, query := srv.request()
	assert.Equal(t, "/getRates", path)
	assert.Equal(t, "api-key-1", query["key"])
	assert.Equal(t, "JS", query["roomTypeID"])
	assert.NotContains(t, query, "access_token")
	assert.Zero(t, srv.tokenCalls.Load())
}

func TestCloudbedsStaticAccessToken(t *testing.T) {
	srv := newFakeCloudbeds(t, 3600)
	cfg := cloudbedsConfig(srv.URL)
	cfg.ClientID, cfg.ClientSecret = "", ""
	cfg.AccessToken = "static-tok"

	res := NewCloudbedsClient(cfg, zerolog.Nop()).GetPolicies(context.Background())
	require.True(t, res.OK)

	_, query := srv.request()
	assert.Equal(t, "static-tok", query["access_token"])
	assert.Zero(t, srv.tokenCalls.Load())
}

func TestCloudbedsAPIError(t *testing.T) {
	srv := newFakeCloudbeds(t, 3600)
	srv.setStatus(http.StatusBadGateway)

	res := NewCloudbedsClient(cloudbedsConfig(srv.URL), zerolog.Nop()).GetRooms(context.Background())
	assert.False(t, res.OK)
	assert.Equal(t, ErrAPIFailure, res.Error)
}

func TestCloudbedsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := cloudbedsConfig(url)
	cfg.APIKey = "k"
	res := NewCloudbedsClient(cfg, zerolog.Nop()).GetRooms(context.Background())
	assert.Equal(t, ErrFetchFailed, res.Error)
}

func TestCloudbedsMaskURL(t *testing.T) {
	client := NewCloudbedsClient(cloudbedsConfig("https://pms.example.com/api/"), zerolog.Nop())
	masked := client.maskURL(map[string][]string{
		"access_token": {"tok-123"},
		"propertyID":   {"prop-1"},
	}, "/getRooms")

	assert.Equal(t, "https://pms.example.com/api/getRooms?access_token=%5Bmasked%5D&propertyID=prop-1", masked)
	assert.NotContains(t, masked, "tok-123")
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := &config.Config{HotelName: "Suites Mine", DefaultCurrency: "MXN", DemoMode: true}
	_, isMock := New(cfg, zerolog.Nop()).(*MockGateway)
	assert.True(t, isMock)

	cfg.DemoMode = false
	cfg.Cloudbeds = cloudbedsConfig("https://pms.example.com")
	_, isLive := New(cfg, zerolog.Nop()).(*CloudbedsClient)
	assert.True(t, isLive)
}
