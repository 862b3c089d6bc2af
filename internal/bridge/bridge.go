package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Consecutive cloud failures before the warning log escalates.
const maxConsecutiveFailures = 5

// errorGlyph is shown on the device whenever the cloud is unreachable. Dim
// gray dashes, so a stale number never poses as current.
var errorGlyph = map[string]any{
	"text":     "---",
	"color":    [3]int{128, 128, 128},
	"noScroll": true,
	"center":   true,
}

// Statistics counts relay cycles since startup.
type Statistics struct {
	Cycles          int `json:"cycles"`
	CloudErrors     int `json:"cloud_errors"`
	DeviceErrors    int `json:"device_errors"`
	GlyphsDisplayed int `json:"glyphs_displayed"`
}

// Bridge periodically copies the display command from the cloud API to an
// AWTRIX3 device's custom app endpoint.
type Bridge struct {
	cfg        *Config
	httpClient *http.Client
	log        zerolog.Logger

	mu                  sync.Mutex
	stats               Statistics
	consecutiveFailures int
}

// New creates a bridge from a resolved configuration.
func New(cfg *Config, log zerolog.Logger) *Bridge {
	return &Bridge{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		log:        log.With().Str("component", "bridge").Logger(),
	}
}

// deviceURL builds the device's custom-app endpoint URL.
func (b *Bridge) deviceURL() string {
	return fmt.Sprintf("http://%s/api/custom?name=%s", b.cfg.DeviceIP, url.QueryEscape(b.cfg.AppName))
}

// fetchCommand retrieves the display command from the cloud API as raw JSON.
// The payload is passed through untouched so the bridge never needs to track
// the command schema.
func (b *Bridge) fetchCommand(ctx context.Context) ([]byte, error) {
	endpoint := b.cfg.CloudURL + "/glucose"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cloud response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloud API returned status %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("cloud API returned invalid JSON")
	}
	return body, nil
}

// pushToDevice POSTs a payload to the device's custom app.
func (b *Bridge) pushToDevice(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.deviceURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create device request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("device request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("device returned status %d", resp.StatusCode)
	}
	return nil
}

// showErrorGlyph replaces the device content with the offline indicator.
func (b *Bridge) showErrorGlyph(ctx context.Context) error {
	payload, err := json.Marshal(errorGlyph)
	if err != nil {
		return err
	}
	return b.pushToDevice(ctx, payload)
}

// RunOnce performs one relay cycle: fetch from the cloud, push to the
// device. A failed fetch pushes the error glyph instead, so the device never
// shows a stale number as current.
func (b *Bridge) RunOnce(ctx context.Context) {
	b.mu.Lock()
	b.stats.Cycles++
	b.mu.Unlock()

	payload, err := b.fetchCommand(ctx)
	if err != nil {
		b.handleCloudFailure(ctx, err)
		return
	}

	b.mu.Lock()
	recovered := b.consecutiveFailures > 0
	b.consecutiveFailures = 0
	b.mu.Unlock()

	if recovered {
		b.log.Info().Msg("Cloud API recovered, resuming display updates")
	}

	if err := b.pushToDevice(ctx, payload); err != nil {
		b.mu.Lock()
		b.stats.DeviceErrors++
		b.mu.Unlock()
		b.log.Warn().Err(err).Msg("Failed to update device")
		return
	}

	b.log.Debug().Int("bytes", len(payload)).Msg("Display updated")
}

func (b *Bridge) handleCloudFailure(ctx context.Context, err error) {
	b.mu.Lock()
	b.stats.CloudErrors++
	b.consecutiveFailures++
	failures := b.consecutiveFailures
	b.mu.Unlock()

	event := b.log.Warn()
	if failures >= maxConsecutiveFailures {
		event = b.log.Error()
	}
	event.
		Err(err).
		Str("code", "BRIDGE_4001").
		Int("consecutive_failures", failures).
		Msg("Failed to fetch from cloud API")

	if err := b.showErrorGlyph(ctx); err != nil {
		b.mu.Lock()
		b.stats.DeviceErrors++
		b.mu.Unlock()
		b.log.Warn().Err(err).Msg("Failed to show error glyph on device")
		return
	}

	b.mu.Lock()
	b.stats.GlyphsDisplayed++
	b.mu.Unlock()
}

// Statistics returns a snapshot of the relay counters.
func (b *Bridge) Statistics() Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Run executes relay cycles on the configured interval until the context is
// cancelled. The first cycle runs immediately so the display does not stay
// blank for a full interval after startup.
func (b *Bridge) Run(ctx context.Context) error {
	b.log.Info().
		Str("cloud_url", b.cfg.CloudURL).
		Str("device_url", b.deviceURL()).
		Dur("poll_interval", b.cfg.PollInterval()).
		Msg("Starting bridge")

	b.RunOnce(ctx)

	c := cron.New()
	spec := fmt.Sprintf("@every %ds", b.cfg.PollIntervalSeconds)
	if _, err := c.AddFunc(spec, func() { b.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule relay cycle: %w", err)
	}
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()

	stats := b.Statistics()
	b.log.Info().
		Int("cycles", stats.Cycles).
		Int("cloud_errors", stats.CloudErrors).
		Int("device_errors", stats.DeviceErrors).
		Int("glyphs_displayed", stats.GlyphsDisplayed).
		Msg("Bridge stopped")
	return nil
}
