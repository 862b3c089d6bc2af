package display

import "github.com/aristath/glucotrix/internal/config"

// Refresh progress is split into 10% growth steps; the dot gains pixels at
// each step so the display shows how close the next upstream fetch is.
const indicatorStepSize = 10

// indicatorGrowth holds the (dx, dy) offsets from the anchor at each growth
// step. Every entry spatially contains the previous one; the shape only
// grows. Steps 9 and 10 share the final 12-pixel shape.
var indicatorGrowth = [][][2]int{
	{{0, 0}},
	{{0, 0}, {0, 1}},
	{{0, 0}, {0, 1}, {-1, 0}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}, {0, 2}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}, {0, 2}, {-1, 2}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}, {0, 2}, {-1, 2}, {-2, 0}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}, {0, 2}, {-1, 2}, {-2, 0}, {-2, 1}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}, {0, 2}, {-1, 2}, {-2, 0}, {-2, 1}, {-2, 2}},
	{{0, 0}, {0, 1}, {-1, 0}, {-1, 1}, {0, 2}, {-1, 2}, {-2, 0}, {-2, 1}, {-2, 2},
		{0, 3}, {-1, 3}, {-2, 3}},
}

// growthStep maps refresh progress (0-100) to a growth step (0-10).
func growthStep(progress int) int {
	if progress < 0 {
		return 0
	}
	return progress / indicatorStepSize
}

// indicatorColor alternates bright (even step) and dim (odd step), a blink
// effect tied to growth rather than wall-clock time.
func indicatorColor(step int, cfg *config.Config) string {
	if step%2 == 0 {
		return rgbToHex(cfg.Color(cfg.IndicatorDotColor))
	}
	return rgbToHex(cfg.Color(cfg.IndicatorDotColorDim))
}

// IndicatorDots renders the growing refresh indicator anchored at the
// configured position (top-right corner by default). Returns nil when the
// indicator is disabled.
func IndicatorDots(progress int, cfg *config.Config) []Primitive {
	if !cfg.IndicatorDotEnabled {
		return nil
	}

	step := growthStep(progress)
	color := indicatorColor(step, cfg)

	idx := step
	if idx > len(indicatorGrowth)-1 {
		idx = len(indicatorGrowth) - 1
	}
	offsets := indicatorGrowth[idx]

	dots := make([]Primitive, 0, len(offsets))
	for _, off := range offsets {
		dots = append(dots, Point(cfg.IndicatorDotX+off[0], cfg.IndicatorDotY+off[1], color))
	}
	return dots
}
