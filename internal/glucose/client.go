// Package glucose owns the single source of truth for the last known
// glucose reading. It wraps the upstream source with rate limiting and an
// in-memory cache so concurrent callers always get a usable value without
// exceeding the source's polling ceiling.
package glucose

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/glucotrix/internal/domain"
)

// Minimum interval between upstream API calls (the source publishes a new
// value every 5 minutes; polling faster is wasted quota).
const MinAPIInterval = 300 * time.Second

const (
	// Readings requested per fetch; two are needed for the delta.
	readingsCount = 2
	// Window covered by a fetch, in minutes.
	readingsWindowMinutes = 30
)

// Source is the upstream glucose capability. Implementations return zero,
// one or two time-ordered readings (most recent first) or an error.
type Source interface {
	Readings(ctx context.Context, minutes, maxCount int) ([]domain.Reading, error)
	Latest(ctx context.Context) (*domain.Reading, error)
}

// Result is the outcome of a GetCurrentReading call. Callers branch on
// FromCache rather than on error types: a fresh fetch reports Progress 0,
// a cache hit reports how far the rate-limit window has advanced.
type Result struct {
	Reading   *domain.Reading
	Progress  int // 0-100 toward the next permitted upstream call
	FromCache bool
}

// Statistics is a read-only snapshot of the client's counters.
type Statistics struct {
	TotalAPICalls int     `json:"total_api_calls"`
	CacheHits     int     `json:"cache_hits"`
	APIErrors     int     `json:"api_errors"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	HasCachedData bool    `json:"has_cached_data"`
	LastError     *string `json:"last_error"`
	LastErrorTime *string `json:"last_error_time"`
}

// Client is a thread-safe, rate-limited wrapper around a Source.
//
// The cache entry (reading + fetch instant) is committed atomically under
// the mutex; the upstream fetch itself runs outside the lock so a slow
// source never blocks readers of cached data.
type Client struct {
	source Source
	log    zerolog.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastAPICall time.Time // zero means no successful fetch yet
	cached      *domain.Reading

	totalAPICalls int
	cacheHits     int
	apiErrors     int
	lastError     string
	lastErrorTime time.Time
}

// NewClient creates a rate-limited data client over an upstream source.
func NewClient(source Source, log zerolog.Logger) *Client {
	return &Client{
		source: source,
		log:    log.With().Str("component", "glucose-client").Logger(),
		now:    time.Now,
	}
}

// GetCurrentReading returns the current reading, serving the cache while
// the rate-limit window is open and fetching upstream otherwise.
//
// Failure policy: an upstream no-data answer and an authentication
// rejection always surface; any other fetch failure degrades to the cached
// reading when one exists and is fatal only on a cold start.
func (c *Client) GetCurrentReading(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if !c.canCallLocked() {
		if c.cached != nil {
			c.cacheHits++
			res := Result{
				Reading:   c.cached,
				Progress:  c.refreshProgressLocked(),
				FromCache: true,
			}
			remaining := c.secondsUntilNextCallLocked()
			c.mu.Unlock()

			c.log.Debug().
				Int("seconds_remaining", remaining).
				Int("progress_percent", res.Progress).
				Int("cached_value", res.Reading.Value).
				Msg("Rate limited, returning cached reading")
			return res, nil
		}
		// Rate limited with nothing to serve: allow the call anyway.
		c.log.Warn().Msg("Rate limited but no cached reading available, allowing upstream call")
	}
	c.mu.Unlock()

	reading, err := c.fetch(ctx)
	if err != nil {
		return c.handleFetchError(err)
	}

	c.mu.Lock()
	c.cached = reading
	c.lastAPICall = c.now()
	c.lastError = ""
	c.lastErrorTime = time.Time{}
	c.totalAPICalls++
	c.mu.Unlock()

	event := c.log.Info().Int("value", reading.Value).Str("trend_arrow", reading.TrendArrow)
	if reading.Delta != nil {
		event = event.Int("delta", *reading.Delta)
	}
	event.Msg("Fetched glucose reading")

	return Result{Reading: reading, Progress: 0}, nil
}

// fetch performs one upstream round trip: two recent readings, falling
// back to the single latest value when the window comes back empty.
func (c *Client) fetch(ctx context.Context) (*domain.Reading, error) {
	readings, err := c.source.Readings(ctx, readingsWindowMinutes, readingsCount)
	if err != nil {
		return nil, err
	}

	if len(readings) == 0 {
		c.log.Info().Msg("Readings window empty, trying latest value")
		latest, err := c.source.Latest(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			// Advance the clock so a broken sensor does not get hammered
			// on every incoming request.
			c.mu.Lock()
			c.lastAPICall = c.now()
			c.mu.Unlock()
			return nil, fmt.Errorf("%w: readings window and latest value both empty", domain.ErrNoData)
		}
		readings = []domain.Reading{*latest}
	}

	current := readings[0]
	if len(readings) > 1 {
		current = current.WithDelta(readings[1].Value)
	}
	return &current, nil
}

// handleFetchError applies the degradation policy for a failed fetch.
func (c *Client) handleFetchError(err error) (Result, error) {
	if errors.Is(err, domain.ErrNoData) || errors.Is(err, domain.ErrAuthFailed) {
		return Result{}, err
	}

	c.mu.Lock()
	c.lastError = err.Error()
	c.lastErrorTime = c.now()
	c.apiErrors++
	cached := c.cached
	progress := c.refreshProgressLocked()
	c.mu.Unlock()

	if cached != nil {
		c.log.Warn().
			Err(err).
			Int("cached_value", cached.Value).
			Msg("Upstream fetch failed, returning cached reading")
		return Result{Reading: cached, Progress: progress, FromCache: true}, nil
	}

	c.log.Error().Err(err).Msg("Upstream fetch failed with no cached reading")
	return Result{}, fmt.Errorf("%w: %v", domain.ErrNoCachedFallback, err)
}

// SecondsUntilNextCall returns how long the rate-limit window stays closed
// (0 when an upstream call is allowed now).
func (c *Client) SecondsUntilNextCall() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secondsUntilNextCallLocked()
}

// RefreshProgress returns progress toward the next permitted upstream call
// as a percentage. 100 means a call is allowed, 0 means just refreshed.
func (c *Client) RefreshProgress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshProgressLocked()
}

// Statistics returns a consistent snapshot of the client's counters.
func (c *Client) Statistics() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Statistics{
		TotalAPICalls: c.totalAPICalls,
		CacheHits:     c.cacheHits,
		APIErrors:     c.apiErrors,
		HasCachedData: c.cached != nil,
	}
	if total := c.totalAPICalls + c.cacheHits; total > 0 {
		stats.CacheHitRate = float64(c.cacheHits) / float64(total)
	}
	if c.lastError != "" {
		msg := c.lastError
		at := c.lastErrorTime.Format(time.RFC3339)
		stats.LastError = &msg
		stats.LastErrorTime = &at
	}
	return stats
}

func (c *Client) canCallLocked() bool {
	if c.lastAPICall.IsZero() {
		return true
	}
	return c.now().Sub(c.lastAPICall) >= MinAPIInterval
}

func (c *Client) refreshProgressLocked() int {
	if c.lastAPICall.IsZero() {
		return 100
	}
	elapsed := c.now().Sub(c.lastAPICall)
	progress := int(elapsed * 100 / MinAPIInterval)
	if progress > 100 {
		progress = 100
	}
	return progress
}

func (c *Client) secondsUntilNextCallLocked() int {
	if c.lastAPICall.IsZero() {
		return 0
	}
	remaining := MinAPIInterval - c.now().Sub(c.lastAPICall)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}
