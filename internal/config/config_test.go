package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	return &Config{
		DexcomUsername: "user@example.com",
		DexcomPassword: "secret",
		DexcomRegion:   "us",

		CacheTTLSeconds:    90,
		HTTPTimeoutSeconds: 10,

		GlucoseCriticalLow: 55,
		GlucoseLow:         70,
		GlucoseHigh:        180,
		GlucoseVeryHigh:    240,

		DeltaStableThreshold: 5,
		DeltaRapidThreshold:  15,

		ColorCriticalLow: "255,0,0",
		ColorLow:         "255,0,0",
		ColorNormal:      "0,255,0",
		ColorHigh:        "255,255,0",
		ColorVeryHigh:    "255,128,0",
		ColorDelta:       "255,255,255",
		ColorProgressBar: "0,255,255",
		ColorProgressBG:  "32,32,32",

		IndicatorDotColor:    "0,255,255",
		IndicatorDotColorDim: "0,128,128",
		IndicatorDotX:        31,
		IndicatorDotY:        0,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "account id alone is enough",
			mutate: func(c *Config) {
				c.DexcomUsername = ""
				c.DexcomAccountID = "1234-5678"
			},
		},
		{
			name: "missing credentials",
			mutate: func(c *Config) {
				c.DexcomUsername = ""
				c.DexcomAccountID = ""
			},
			wantErr: "DEXCOM_USERNAME or DEXCOM_ACCOUNT_ID",
		},
		{
			name:    "missing password",
			mutate:  func(c *Config) { c.DexcomPassword = "" },
			wantErr: "DEXCOM_PASSWORD",
		},
		{
			name:    "unknown region",
			mutate:  func(c *Config) { c.DexcomRegion = "eu" },
			wantErr: "invalid region",
		},
		{
			name:    "thresholds must ascend",
			mutate:  func(c *Config) { c.GlucoseLow = 200 },
			wantErr: "glucose_low",
		},
		{
			name:    "critical low must be below low",
			mutate:  func(c *Config) { c.GlucoseCriticalLow = 70 },
			wantErr: "glucose_critical_low",
		},
		{
			name:    "stable threshold below rapid",
			mutate:  func(c *Config) { c.DeltaStableThreshold = 20 },
			wantErr: "delta_stable_threshold",
		},
		{
			name:    "malformed color",
			mutate:  func(c *Config) { c.ColorNormal = "0,255" },
			wantErr: "COLOR_NORMAL",
		},
		{
			name:    "color component out of range",
			mutate:  func(c *Config) { c.ColorDelta = "0,300,0" },
			wantErr: "COLOR_DELTA",
		},
		{
			name:    "dot x out of range",
			mutate:  func(c *Config) { c.IndicatorDotX = 32 },
			wantErr: "indicator_dot_x",
		},
		{
			name:    "dot y out of range",
			mutate:  func(c *Config) { c.IndicatorDotY = 8 },
			wantErr: "indicator_dot_y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	rgb, err := ParseColor("255, 128, 0")
	require.NoError(t, err)
	assert.Equal(t, [3]int{255, 128, 0}, rgb)

	_, err = ParseColor("255,128")
	assert.Error(t, err)

	_, err = ParseColor("255,abc,0")
	assert.Error(t, err)

	_, err = ParseColor("-1,0,0")
	assert.Error(t, err)
}

func TestColor_IgnoresErrorAfterValidation(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, [3]int{0, 255, 0}, cfg.Color(cfg.ColorNormal))
	assert.Equal(t, [3]int{0, 0, 0}, cfg.Color("not-a-color"))
}
