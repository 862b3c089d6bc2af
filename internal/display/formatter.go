package display

import (
	"strconv"

	"github.com/aristath/glucotrix/internal/config"
	"github.com/aristath/glucotrix/internal/domain"
)

// Format composes a complete display command for a reading: the value text,
// trend arrow, signed delta and refresh indicator, laid out left to right
// with one pixel of gap between elements.
//
// Primitive order is fixed as [value, arrow, delta?, indicator dots...] —
// devices paint in sequence. An absent delta is omitted entirely, leaving
// no gap in the sequence. Formatting is total: out-of-range values degrade
// to the boundary color bands and wider text, never to an error.
func Format(reading *domain.Reading, cfg *config.Config, refreshProgress int) *Command {
	glucoseColor := ColorFor(reading.Value, cfg)
	glucoseHex := rgbToHex(glucoseColor)
	deltaHex := rgbToHex(cfg.Color(cfg.ColorDelta))

	valueText := strconv.Itoa(reading.Value)
	deltaText := FormatDelta(reading.Delta)

	arrowX := TextWidth(valueText) + 1
	arrowDraw, arrowWidth := Arrow(reading.Delta, cfg.DeltaStableThreshold, cfg.DeltaRapidThreshold, glucoseHex, arrowX)
	deltaX := arrowX + arrowWidth + 1

	draw := []Primitive{Text(0, 0, valueText, glucoseHex)}
	draw = append(draw, arrowDraw...)
	if deltaText != "" {
		draw = append(draw, Text(deltaX, 0, deltaText, deltaHex))
	}
	draw = append(draw, IndicatorDots(refreshProgress, cfg)...)

	var icon *string
	if cfg.AwtrixIcon != "" {
		iconName := cfg.AwtrixIcon
		icon = &iconName
	}

	cmd := &Command{
		Text:       "", // rendered through the draw array instead
		Color:      glucoseColor,
		Icon:       icon,
		Duration:   cfg.AwtrixDuration,
		NoScroll:   true,
		Center:     false,
		Lifetime:   cfg.AwtrixLifetime,
		Draw:       draw,
		Progress:   refreshProgress,
		ProgressC:  cfg.Color(cfg.ColorProgressBar),
		ProgressBC: cfg.Color(cfg.ColorProgressBG),
	}

	if background, ok := BackgroundFor(reading.Value, cfg); ok {
		cmd.Background = &background
	}
	if reading.Value < cfg.GlucoseCriticalLow {
		cmd.BlinkText = CriticalBlinkIntervalMS
	}

	return cmd
}
