// Package dexcom provides the Dexcom Share API client implementation.
//
// The Share API is session based: the account is authenticated once to
// obtain an account id, logged in to obtain a session id, and glucose
// values are then read with that session until it expires.
package dexcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/glucotrix/internal/domain"
)

// Application id registered for Share API publisher access.
const applicationID = "d89443d2-327c-4a6f-89e5-496bbb0317db"

// Share API base URLs per region.
var regionBaseURLs = map[string]string{
	"us":  "https://share2.dexcom.com/ShareWebServices/Services",
	"ous": "https://shareous1.dexcom.com/ShareWebServices/Services",
	"jp":  "https://share.dexcom.jp/ShareWebServices/Services",
}

// Share API endpoints.
const (
	endpointAuthenticate = "General/AuthenticatePublisherAccount"
	endpointLogin        = "General/LoginPublisherAccountById"
	endpointReadings     = "Publisher/ReadPublisherLatestGlucoseValues"
)

// Widest window the API accepts when asking for the latest value.
const maxReadingMinutes = 1440

// Config holds the credentials and transport settings for a Share client.
type Config struct {
	Username  string // account name; optional when AccountID is set
	AccountID string // account id; optional when Username is set
	Password  string
	Region    string        // us, ous, or jp
	Timeout   time.Duration // bounded timeout for every API call
}

// Client is a Dexcom Share API client. A session id is established lazily
// on the first read and refreshed transparently when the API reports it
// expired.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	log        zerolog.Logger

	mu        sync.Mutex
	accountID string
	sessionID string
}

// NewClient creates a new Dexcom Share client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL, ok := regionBaseURLs[cfg.Region]
	if !ok {
		baseURL = regionBaseURLs["us"]
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		username:   cfg.Username,
		password:   cfg.Password,
		accountID:  cfg.AccountID,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("client", "dexcom-share").Logger(),
	}
}

// shareError is the error body the Share API returns on failure.
type shareError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// sessionExpired reports whether an API error code means the session id is
// no longer valid and a re-login should be attempted.
func (e *shareError) sessionExpired() bool {
	return e.Code == "SessionIdNotFound" || e.Code == "SessionNotValid"
}

// authFailure reports whether an API error code means the credentials were
// rejected. These are never retried.
func (e *shareError) authFailure() bool {
	switch e.Code {
	case "AccountPasswordInvalid",
		"SSO_AuthenticateAccountNotFound",
		"SSO_AuthenticatePasswordInvalid",
		"SSO_AuthenticateMaxAttemptsExceeed":
		return true
	}
	return false
}

// post sends a JSON POST to the Share API and returns the raw body.
// API-level errors are decoded and classified.
func (c *Client) post(ctx context.Context, endpoint string, query url.Values, payload any) ([]byte, error) {
	requestURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return raw, nil
	}

	var apiErr shareError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != "" {
		if apiErr.authFailure() {
			c.log.Error().Str("code", apiErr.Code).Msg("Share API rejected credentials")
			return nil, fmt.Errorf("%w: %s", domain.ErrAuthFailed, apiErr.Code)
		}
		if apiErr.sessionExpired() {
			return nil, &sessionExpiredError{code: apiErr.Code}
		}
		c.log.Error().
			Str("code", apiErr.Code).
			Str("message", apiErr.Message).
			Str("endpoint", endpoint).
			Msg("Share API returned error")
		return nil, fmt.Errorf("share API error %s: %s", apiErr.Code, apiErr.Message)
	}

	return nil, fmt.Errorf("share API returned status %d", resp.StatusCode)
}

// sessionExpiredError signals that the cached session id must be refreshed.
type sessionExpiredError struct {
	code string
}

func (e *sessionExpiredError) Error() string {
	return fmt.Sprintf("share session expired: %s", e.code)
}

// authenticate resolves the account id from the account name. Skipped when
// the account id was configured directly.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	raw, err := c.post(ctx, endpointAuthenticate, nil, map[string]string{
		"accountName":   c.username,
		"password":      c.password,
		"applicationId": applicationID,
	})
	if err != nil {
		return "", err
	}

	var accountID string
	if err := json.Unmarshal(raw, &accountID); err != nil {
		return "", fmt.Errorf("failed to parse account id: %w", err)
	}
	return accountID, nil
}

// login exchanges the account id for a session id.
func (c *Client) login(ctx context.Context, accountID string) (string, error) {
	raw, err := c.post(ctx, endpointLogin, nil, map[string]string{
		"accountId":     accountID,
		"password":      c.password,
		"applicationId": applicationID,
	})
	if err != nil {
		return "", err
	}

	var sessionID string
	if err := json.Unmarshal(raw, &sessionID); err != nil {
		return "", fmt.Errorf("failed to parse session id: %w", err)
	}
	return sessionID, nil
}

// ensureSession establishes a session if none is cached yet.
func (c *Client) ensureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" {
		return c.sessionID, nil
	}

	if c.accountID == "" {
		c.log.Info().Str("region_url", c.baseURL).Msg("Authenticating Share account")
		accountID, err := c.authenticate(ctx)
		if err != nil {
			return "", err
		}
		c.accountID = accountID
	}

	sessionID, err := c.login(ctx, c.accountID)
	if err != nil {
		return "", err
	}
	c.sessionID = sessionID
	c.log.Info().Msg("Share session established")
	return sessionID, nil
}

// dropSession discards the cached session so the next call re-authenticates.
func (c *Client) dropSession() {
	c.mu.Lock()
	c.sessionID = ""
	c.mu.Unlock()
}

// Readings fetches up to maxCount glucose values from the last minutes
// window, most recent first. An expired session is refreshed once.
func (c *Client) Readings(ctx context.Context, minutes, maxCount int) ([]domain.Reading, error) {
	readings, err := c.readValues(ctx, minutes, maxCount)
	if err != nil {
		var expired *sessionExpiredError
		if errors.As(err, &expired) {
			c.log.Debug().Msg("Session expired, re-authenticating")
			c.dropSession()
			return c.readValues(ctx, minutes, maxCount)
		}
		return nil, err
	}
	return readings, nil
}

// Latest fetches the single most recent reading over the widest window the
// API accepts.
func (c *Client) Latest(ctx context.Context) (*domain.Reading, error) {
	readings, err := c.Readings(ctx, maxReadingMinutes, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

func (c *Client) readValues(ctx context.Context, minutes, maxCount int) ([]domain.Reading, error) {
	sessionID, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("sessionId", sessionID)
	query.Set("minutes", strconv.Itoa(minutes))
	query.Set("maxCount", strconv.Itoa(maxCount))

	raw, err := c.post(ctx, endpointReadings, query, struct{}{})
	if err != nil {
		return nil, err
	}

	var values []shareReading
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to parse glucose values: %w", err)
	}

	readings := make([]domain.Reading, 0, len(values))
	for _, v := range values {
		readings = append(readings, v.toReading())
	}
	return readings, nil
}
