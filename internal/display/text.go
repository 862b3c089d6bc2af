package display

import (
	"fmt"
	"strings"
)

// Character widths for the AWTRIX3 default font, used for proportional
// layout estimation.
const (
	charWidthNarrow  = 2 // 1 i l :
	charWidthSpace   = 2
	charWidthMedium  = 4 // + -
	charWidthDefault = 4
	charSpacing      = 1
)

const (
	narrowChars = "1il:"
	mediumChars = "+-"
)

// TextWidth estimates the pixel width of text in the device's default font.
// One pixel of spacing is counted between glyphs but not after the last.
func TextWidth(text string) int {
	if text == "" {
		return 0
	}

	width := 0
	for _, ch := range text {
		switch {
		case strings.ContainsRune(narrowChars, ch):
			width += charWidthNarrow
		case ch == ' ':
			width += charWidthSpace
		case strings.ContainsRune(mediumChars, ch):
			width += charWidthMedium
		default:
			width += charWidthDefault
		}
		width += charSpacing
	}

	return width - charSpacing
}

// FormatDelta renders a delta with an explicit sign: "+5", "-3", "+0".
// A missing delta renders as the empty string.
func FormatDelta(delta *int) string {
	if delta == nil {
		return ""
	}
	if *delta >= 0 {
		return fmt.Sprintf("+%d", *delta)
	}
	return fmt.Sprintf("%d", *delta)
}
