package pms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/avvvet/concierge-intent/internal/config"
	"github.com/avvvet/concierge-intent/internal/models"
)

const (
	tokenEarlyExpiry   = 30 * time.Second
	defaultTokenExpiry = time.Hour
	maskedValue        = "[masked]"
	maxBodySample      = 300
)

// Auth modes, in order of precedence
const (
	authAPIKey       = "api_key"
	authAccessToken  = "access_token"
	authClientSecret = "oauth_client_credentials"
)

// CloudbedsClient talks to the Cloudbeds REST API. Payloads are passed
// through undecoded beyond generic JSON.
type CloudbedsClient struct {
	cfg        config.CloudbedsConfig
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     zerolog.Logger
}

func NewCloudbedsClient(cfg config.CloudbedsConfig, logger zerolog.Logger) *CloudbedsClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &CloudbedsClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("pms", "cloudbeds").Logger(),
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		// The reuse source holds a mutex around refresh, so concurrent
		// requests share a single token fetch.
		c.tokens = oauth2.ReuseTokenSourceWithExpiry(nil, &tokenFetcher{
			cfg:     cc,
			client:  c.httpClient,
			timeout: timeout,
			logger:  c.logger,
			debug:   cfg.Debug,
		}, tokenEarlyExpiry)
	}
	return c
}

func (c *CloudbedsClient) GetAvailability(ctx context.Context, params models.RequestParams) Result {
	return c.request(ctx, c.cfg.EndpointAvailability, c.mapParams(params))
}

func (c *CloudbedsClient) GetPricing(ctx context.Context, params models.RequestParams) Result {
	return c.request(ctx, c.cfg.EndpointPricing, c.mapParams(params))
}

func (c *CloudbedsClient) GetRooms(ctx context.Context) Result {
	return c.request(ctx, c.cfg.EndpointRooms, nil)
}

func (c *CloudbedsClient) GetPolicies(ctx context.Context) Result {
	return c.request(ctx, c.cfg.EndpointPolicies, nil)
}

func (c *CloudbedsClient) authMode() string {
	switch {
	case c.cfg.APIKey != "":
		return authAPIKey
	case c.cfg.AccessToken != "":
		return authAccessToken
	default:
		return authClientSecret
	}
}

// checkConfigured returns a failure code, or "" when the client can make calls
func (c *CloudbedsClient) checkConfigured() string {
	if c.cfg.PropertyID == "" {
		return ErrPropertyIDMissing
	}
	if c.cfg.APIKey != "" || c.cfg.AccessToken != "" {
		return ""
	}
	if c.tokens == nil {
		return ErrCredentialsMissing
	}
	return ""
}

func (c *CloudbedsClient) accessToken() (string, error) {
	if c.cfg.AccessToken != "" {
		return c.cfg.AccessToken, nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (c *CloudbedsClient) mapParams(params models.RequestParams) map[string]string {
	mapped := make(map[string]string)
	if params.CheckIn != "" {
		mapped[c.cfg.ParamStartDate] = params.CheckIn
	}
	if params.CheckOut != "" {
		mapped[c.cfg.ParamEndDate] = params.CheckOut
	}
	if params.Guests != nil && *params.Guests != 0 {
		mapped[c.cfg.ParamAdults] = strconv.Itoa(*params.Guests)
	}
	if params.RoomType != "" {
		mapped[c.cfg.ParamRoomType] = params.RoomType
	}
	return mapped
}

func (c *CloudbedsClient) endpointURL(endpoint string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	return base + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *CloudbedsClient) request(ctx context.Context, endpoint string, params map[string]string) Result {
	if code := c.checkConfigured(); code != "" {
		c.logger.Warn().Str("endpoint", endpoint).Str("error", code).Msg("Cloudbeds client not configured")
		return Failure(code)
	}

	if c.cfg.Debug {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("property_id", c.cfg.PropertyID).
			Str("auth_mode", c.authMode()).
			Interface("params", params).
			Msg("Cloudbeds request start")
	}

	query := url.Values{}
	query.Set(c.cfg.PropertyIDParam, c.cfg.PropertyID)
	if c.cfg.APIKey != "" {
		query.Set(c.cfg.APIKeyParam, c.cfg.APIKey)
	} else {
		token, err := c.accessToken()
		if err != nil || token == "" {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to obtain Cloudbeds access token")
			return Failure(ErrTokenUnavailable)
		}
		query.Set(c.cfg.AccessTokenParam, token)
	}
	for key, value := range params {
		if value != "" {
			query.Set(key, value)
		}
	}

	target := c.endpointURL(endpoint) + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to build Cloudbeds request")
		return Failure(ErrFetchFailed)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Cloudbeds request failed")
		return Failure(ErrFetchFailed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to read Cloudbeds response")
		return Failure(ErrFetchFailed)
	}
	data := decodeBody(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Str("url", c.maskURL(query, endpoint)).
			Str("body", sample(body)).
			Msg("Cloudbeds response error")
		return Failure(ErrAPIFailure)
	}

	if c.cfg.Debug {
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("url", c.maskURL(query, endpoint)).
			Str("sample", sample(body)).
			Msg("Cloudbeds response ok")
	}
	return Success(data)
}

// maskURL renders the request URL with credentials replaced
func (c *CloudbedsClient) maskURL(query url.Values, endpoint string) string {
	masked := url.Values{}
	for key, values := range query {
		masked[key] = values
	}
	for _, secret := range []string{c.cfg.AccessTokenParam, c.cfg.APIKeyParam} {
		if masked.Has(secret) {
			masked.Set(secret, maskedValue)
		}
	}
	return c.endpointURL(endpoint) + "?" + masked.Encode()
}

// decodeBody parses a JSON body, yielding an empty object when it is not JSON
func decodeBody(body []byte) any {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return map[string]any{}
	}
	return data
}

func sample(body []byte) string {
	if len(body) > maxBodySample {
		return string(body[:maxBodySample])
	}
	return string(body)
}

// tokenFetcher performs one client-credentials exchange per call. Caching is
// left to the wrapping ReuseTokenSource.
type tokenFetcher struct {
	cfg     *clientcredentials.Config
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
	debug   bool
}

func (f *tokenFetcher) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)

	if f.debug {
		f.logger.Debug().
			Str("token_url", f.cfg.TokenURL).
			Str("client_id", maskID(f.cfg.ClientID)).
			Msg("Fetching Cloudbeds access token")
	}

	tok, err := f.cfg.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			f.logger.Error().
				Int("status", retrieveErr.Response.StatusCode).
				Str("body", sample(retrieveErr.Body)).
				Msg("Cloudbeds token response error")
		}
		return nil, fmt.Errorf("cloudbeds token exchange: %w", err)
	}
	// Servers that omit expires_in would otherwise yield a token that never expires
	if tok.Expiry.IsZero() {
		tok.Expiry = time.Now().Add(defaultTokenExpiry)
	}
	return tok, nil
}

func maskID(id string) string {
	if len(id) <= 4 {
		return maskedValue
	}
	return id[:4] + "..."
}
