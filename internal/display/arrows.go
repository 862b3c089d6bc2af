package display

// ArrowKind classifies a glucose delta for arrow selection.
type ArrowKind int

const (
	ArrowStable   ArrowKind = iota // horizontal (→)
	ArrowDiagonal                  // diagonal (↗ ↘)
	ArrowRapid                     // vertical (↑ ↓)
)

// Arrow glyph dimensions. Width is constant across kinds so layout code
// never special-cases stable vs. rapid arrows.
const (
	ArrowWidth  = 5
	ArrowHeight = 7
)

// arrowPixel is one pixel or line of an arrow glyph, with offsets relative
// to the glyph's left edge. Only the x offsets are translated at render
// time; arrows always anchor to the same vertical band.
type arrowPixel struct {
	op      string // "dp" or "dl"
	offsets []int  // x, y for dp; x1, y1, x2, y2 for dl
}

// Stable arrow (→)
var stableArrowPattern = []arrowPixel{
	{"dl", []int{0, 3, 3, 3}}, // horizontal stem
	{"dp", []int{4, 3}},       // tip
	{"dp", []int{3, 2}},       // head top
	{"dp", []int{3, 4}},       // head bottom
}

// Rapid rise arrow (↑)
var upArrowPattern = []arrowPixel{
	{"dl", []int{2, 2, 2, 6}}, // stem
	{"dp", []int{2, 1}},       // tip
	{"dp", []int{1, 2}},       // head left inner
	{"dp", []int{3, 2}},       // head right inner
	{"dp", []int{0, 3}},       // head left outer
	{"dp", []int{4, 3}},       // head right outer
}

// Rapid fall arrow (↓)
var downArrowPattern = []arrowPixel{
	{"dl", []int{2, 0, 2, 5}}, // stem
	{"dp", []int{2, 6}},       // tip
	{"dp", []int{1, 5}},       // head left inner
	{"dp", []int{3, 5}},       // head right inner
	{"dp", []int{0, 4}},       // head left outer
	{"dp", []int{4, 4}},       // head right outer
}

// Diagonal up-right arrow (↗)
var diagonalUpPattern = []arrowPixel{
	{"dp", []int{0, 5}},
	{"dp", []int{1, 4}},
	{"dp", []int{2, 3}},
	{"dp", []int{3, 2}},
	{"dp", []int{4, 1}},
	{"dp", []int{4, 0}}, // tip top
	{"dp", []int{3, 0}}, // head left
	{"dp", []int{4, 2}}, // head down
}

// Diagonal down-right arrow (↘)
var diagonalDownPattern = []arrowPixel{
	{"dp", []int{0, 1}},
	{"dp", []int{1, 2}},
	{"dp", []int{2, 3}},
	{"dp", []int{3, 4}},
	{"dp", []int{4, 5}},
	{"dp", []int{4, 6}}, // tip bottom
	{"dp", []int{3, 6}}, // head left
	{"dp", []int{4, 4}}, // head up
}

// Kind classifies a delta against the stable/rapid thresholds. A missing
// delta reads as stable.
func Kind(delta *int, stableThreshold, rapidThreshold int) ArrowKind {
	if delta == nil {
		return ArrowStable
	}

	abs := *delta
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs <= stableThreshold:
		return ArrowStable
	case abs > rapidThreshold:
		return ArrowRapid
	default:
		return ArrowDiagonal
	}
}

// arrowPattern picks the glyph for a kind and direction. Direction is the
// sign of the delta; a missing or zero delta is treated as not rising.
func arrowPattern(kind ArrowKind, delta *int) []arrowPixel {
	if kind == ArrowStable {
		return stableArrowPattern
	}

	rising := delta != nil && *delta > 0

	if kind == ArrowRapid {
		if rising {
			return upArrowPattern
		}
		return downArrowPattern
	}

	if rising {
		return diagonalUpPattern
	}
	return diagonalDownPattern
}

// renderArrowPattern translates a glyph to baseX and substitutes the color.
func renderArrowPattern(pattern []arrowPixel, baseX int, hexColor string) []Primitive {
	out := make([]Primitive, 0, len(pattern))
	for _, px := range pattern {
		switch px.op {
		case "dp":
			out = append(out, Point(baseX+px.offsets[0], px.offsets[1], hexColor))
		case "dl":
			out = append(out, Line(baseX+px.offsets[0], px.offsets[1], baseX+px.offsets[2], px.offsets[3], hexColor))
		}
	}
	return out
}

// Arrow renders the trend arrow for a delta at the given left edge and
// returns the draw primitives plus the arrow's layout width.
func Arrow(delta *int, stableThreshold, rapidThreshold int, hexColor string, x int) ([]Primitive, int) {
	kind := Kind(delta, stableThreshold, rapidThreshold)
	pattern := arrowPattern(kind, delta)
	return renderArrowPattern(pattern, x, hexColor), ArrowWidth
}
