package display

import "github.com/aristath/glucotrix/internal/config"

// ColorFor maps a glucose value to its band color. The bands partition the
// whole integer line:
//
//	value < criticalLow            critical-low color
//	criticalLow <= value < low     low color
//	low <= value <= high           normal color
//	high < value <= veryHigh       high color
//	value > veryHigh               very-high color
func ColorFor(value int, cfg *config.Config) [3]int {
	switch {
	case value < cfg.GlucoseCriticalLow:
		return cfg.Color(cfg.ColorCriticalLow)
	case value < cfg.GlucoseLow:
		return cfg.Color(cfg.ColorLow)
	case value <= cfg.GlucoseHigh:
		return cfg.Color(cfg.ColorNormal)
	case value <= cfg.GlucoseVeryHigh:
		return cfg.Color(cfg.ColorHigh)
	default:
		return cfg.Color(cfg.ColorVeryHigh)
	}
}

// BackgroundFor returns the alert background for out-of-range values.
// The second return is false for everything between criticalLow and
// veryHigh inclusive.
func BackgroundFor(value int, cfg *config.Config) ([3]int, bool) {
	switch {
	case value < cfg.GlucoseCriticalLow:
		return CriticalLowBackground, true
	case value > cfg.GlucoseVeryHigh:
		return CriticalHighBackground, true
	default:
		return [3]int{}, false
	}
}
