// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default glucose thresholds (mg/dL).
const (
	DefaultCriticalLow = 55
	DefaultLow         = 70
	DefaultHigh        = 180
	DefaultVeryHigh    = 240
)

// Default delta thresholds for arrow selection.
const (
	DefaultStableThreshold = 5  // up to ±5: stable arrow
	DefaultRapidThreshold  = 15 // beyond ±15: vertical arrows
)

// Config holds application configuration. It is validated once at startup
// and treated as immutable afterwards.
type Config struct {
	// Dexcom credentials
	DexcomUsername  string
	DexcomPassword  string
	DexcomAccountID string
	DexcomRegion    string // us, ous, or jp

	// Cache / upstream
	CacheTTLSeconds    int
	HTTPTimeoutSeconds int

	// AWTRIX display
	AwtrixIcon     string
	AwtrixDuration int
	AwtrixLifetime int

	// Server
	Port     int
	LogLevel string
	DevMode  bool

	// Glucose thresholds (mg/dL)
	GlucoseCriticalLow int
	GlucoseLow         int
	GlucoseHigh        int
	GlucoseVeryHigh    int

	// Delta thresholds for arrow selection
	DeltaStableThreshold int
	DeltaRapidThreshold  int

	// Display colors, "R,G,B" strings
	ColorCriticalLow string
	ColorLow         string
	ColorNormal      string
	ColorHigh        string
	ColorVeryHigh    string
	ColorDelta       string
	ColorProgressBar string
	ColorProgressBG  string

	// Refresh indicator dot
	IndicatorDotEnabled  bool
	IndicatorDotColor    string
	IndicatorDotColorDim string
	IndicatorDotX        int
	IndicatorDotY        int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DexcomUsername:  getEnv("DEXCOM_USERNAME", ""),
		DexcomPassword:  getEnv("DEXCOM_PASSWORD", ""),
		DexcomAccountID: getEnv("DEXCOM_ACCOUNT_ID", ""),
		DexcomRegion:    strings.ToLower(getEnv("DEXCOM_REGION", "us")),

		CacheTTLSeconds:    getEnvAsInt("CACHE_TTL_SECONDS", 90),
		HTTPTimeoutSeconds: getEnvAsInt("HTTP_TIMEOUT_SECONDS", 10),

		AwtrixIcon:     getEnv("AWTRIX_ICON", ""),
		AwtrixDuration: getEnvAsInt("AWTRIX_DURATION", 10),
		AwtrixLifetime: getEnvAsInt("AWTRIX_LIFETIME", 120),

		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		GlucoseCriticalLow: getEnvAsInt("GLUCOSE_CRITICAL_LOW", DefaultCriticalLow),
		GlucoseLow:         getEnvAsInt("GLUCOSE_LOW", DefaultLow),
		GlucoseHigh:        getEnvAsInt("GLUCOSE_HIGH", DefaultHigh),
		GlucoseVeryHigh:    getEnvAsInt("GLUCOSE_VERY_HIGH", DefaultVeryHigh),

		DeltaStableThreshold: getEnvAsInt("DELTA_STABLE_THRESHOLD", DefaultStableThreshold),
		DeltaRapidThreshold:  getEnvAsInt("DELTA_RAPID_THRESHOLD", DefaultRapidThreshold),

		ColorCriticalLow: getEnv("COLOR_CRITICAL_LOW", "255,0,0"),
		ColorLow:         getEnv("COLOR_LOW", "255,0,0"),
		ColorNormal:      getEnv("COLOR_NORMAL", "0,255,0"),
		ColorHigh:        getEnv("COLOR_HIGH", "255,255,0"),
		ColorVeryHigh:    getEnv("COLOR_VERY_HIGH", "255,128,0"),
		ColorDelta:       getEnv("COLOR_DELTA", "255,255,255"),
		ColorProgressBar: getEnv("COLOR_PROGRESS_BAR", "0,255,255"),
		ColorProgressBG:  getEnv("COLOR_PROGRESS_BG", "32,32,32"),

		IndicatorDotEnabled:  getEnvAsBool("INDICATOR_DOT_ENABLED", true),
		IndicatorDotColor:    getEnv("INDICATOR_DOT_COLOR", "0,255,255"),
		IndicatorDotColorDim: getEnv("INDICATOR_DOT_COLOR_DIM", "0,128,128"),
		IndicatorDotX:        getEnvAsInt("INDICATOR_DOT_X", 31),
		IndicatorDotY:        getEnvAsInt("INDICATOR_DOT_Y", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks credentials, threshold ordering, color formats and dot
// position. It runs once at startup so render-time code never revalidates.
func (c *Config) Validate() error {
	if c.DexcomUsername == "" && c.DexcomAccountID == "" {
		return fmt.Errorf("either DEXCOM_USERNAME or DEXCOM_ACCOUNT_ID must be provided")
	}
	if c.DexcomPassword == "" {
		return fmt.Errorf("DEXCOM_PASSWORD is required")
	}

	switch c.DexcomRegion {
	case "us", "ous", "jp":
	default:
		return fmt.Errorf("invalid region %q: must be one of us, ous, jp", c.DexcomRegion)
	}

	// Glucose thresholds must be strictly ascending
	if c.GlucoseCriticalLow >= c.GlucoseLow {
		return fmt.Errorf("glucose_critical_low (%d) must be less than glucose_low (%d)",
			c.GlucoseCriticalLow, c.GlucoseLow)
	}
	if c.GlucoseLow >= c.GlucoseHigh {
		return fmt.Errorf("glucose_low (%d) must be less than glucose_high (%d)",
			c.GlucoseLow, c.GlucoseHigh)
	}
	if c.GlucoseHigh >= c.GlucoseVeryHigh {
		return fmt.Errorf("glucose_high (%d) must be less than glucose_very_high (%d)",
			c.GlucoseHigh, c.GlucoseVeryHigh)
	}

	// Delta thresholds: positive and ascending
	if c.DeltaStableThreshold <= 0 || c.DeltaStableThreshold >= c.DeltaRapidThreshold {
		return fmt.Errorf("delta_stable_threshold (%d) must be positive and less than delta_rapid_threshold (%d)",
			c.DeltaStableThreshold, c.DeltaRapidThreshold)
	}

	colors := map[string]string{
		"COLOR_CRITICAL_LOW":      c.ColorCriticalLow,
		"COLOR_LOW":               c.ColorLow,
		"COLOR_NORMAL":            c.ColorNormal,
		"COLOR_HIGH":              c.ColorHigh,
		"COLOR_VERY_HIGH":         c.ColorVeryHigh,
		"COLOR_DELTA":             c.ColorDelta,
		"COLOR_PROGRESS_BAR":      c.ColorProgressBar,
		"COLOR_PROGRESS_BG":       c.ColorProgressBG,
		"INDICATOR_DOT_COLOR":     c.IndicatorDotColor,
		"INDICATOR_DOT_COLOR_DIM": c.IndicatorDotColorDim,
	}
	for name, value := range colors {
		if _, err := ParseColor(value); err != nil {
			return fmt.Errorf("invalid color for %s: %w", name, err)
		}
	}

	if c.IndicatorDotX < 0 || c.IndicatorDotX > 31 {
		return fmt.Errorf("indicator_dot_x must be 0-31, got %d", c.IndicatorDotX)
	}
	if c.IndicatorDotY < 0 || c.IndicatorDotY > 7 {
		return fmt.Errorf("indicator_dot_y must be 0-7, got %d", c.IndicatorDotY)
	}

	if c.CacheTTLSeconds < 1 {
		return fmt.Errorf("cache_ttl_seconds must be at least 1, got %d", c.CacheTTLSeconds)
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("http_timeout_seconds must be at least 1, got %d", c.HTTPTimeoutSeconds)
	}

	return nil
}

// ParseColor parses an "R,G,B" string into an RGB triple.
func ParseColor(s string) ([3]int, error) {
	var rgb [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return rgb, fmt.Errorf("color %q must have exactly 3 components", s)
	}
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return rgb, fmt.Errorf("color %q component %d is not an integer", s, i+1)
		}
		if value < 0 || value > 255 {
			return rgb, fmt.Errorf("color %q component %d must be 0-255, got %d", s, i+1, value)
		}
		rgb[i] = value
	}
	return rgb, nil
}

// Color returns a validated "R,G,B" string as an RGB triple. Config values
// have already passed Validate, so a malformed string resolves to black
// rather than adding an error path at render time.
func (c *Config) Color(s string) [3]int {
	rgb, _ := ParseColor(s)
	return rgb
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
