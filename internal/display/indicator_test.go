package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorDots_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.IndicatorDotEnabled = false
	assert.Nil(t, IndicatorDots(50, cfg))
}

func TestIndicatorDots_GrowthSteps(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		progress int
		dotCount int
		dimColor bool
	}{
		{"fresh fetch shows one dot", 0, 1, false},
		{"step 1 is dim", 10, 2, true},
		{"step 2 is bright", 25, 3, false},
		{"midway", 50, 6, true},
		{"step 9 reaches final shape", 95, 12, true},
		{"full progress keeps final shape", 100, 12, false},
		{"negative progress clamps to first step", -10, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dots := IndicatorDots(tt.progress, cfg)
			require.Len(t, dots, tt.dotCount)

			expectedColor := "#00ffff"
			if tt.dimColor {
				expectedColor = "#008080"
			}
			for _, dot := range dots {
				assert.Equal(t, "dp", dot.Op)
				assert.Equal(t, expectedColor, dot.Args[2])
			}
		})
	}
}

func TestIndicatorDots_AnchoredAtConfiguredPosition(t *testing.T) {
	cfg := testConfig()

	dots := IndicatorDots(0, cfg)
	require.Len(t, dots, 1)
	assert.Equal(t, []any{31, 0, "#00ffff"}, dots[0].Args)

	cfg.IndicatorDotX = 15
	cfg.IndicatorDotY = 3
	dots = IndicatorDots(0, cfg)
	require.Len(t, dots, 1)
	assert.Equal(t, []any{15, 3, "#00ffff"}, dots[0].Args)
}

// Each growth step must spatially contain the previous one so the shape only
// ever grows as progress advances.
func TestIndicatorGrowth_Monotonic(t *testing.T) {
	for i := 1; i < len(indicatorGrowth); i++ {
		prev := map[[2]int]bool{}
		for _, off := range indicatorGrowth[i-1] {
			prev[off] = true
		}
		current := map[[2]int]bool{}
		for _, off := range indicatorGrowth[i] {
			current[off] = true
		}
		for off := range prev {
			assert.True(t, current[off], "step %d lost offset %v from step %d", i, off, i-1)
		}
		assert.Greater(t, len(current), len(prev), "step %d did not grow", i)
	}
}
