// Package display converts glucose readings into AWTRIX3 custom-app
// commands with pixel-level drawing for trend arrows and the refresh
// indicator.
package display

import (
	"encoding/json"
	"fmt"
)

// Display dimensions (AWTRIX3 standard, 32x8 matrix).
const (
	Width  = 32
	Height = 8
)

// Blink interval applied to critical-low values (milliseconds).
const CriticalBlinkIntervalMS = 500

// Fixed alert backgrounds for out-of-range values.
var (
	CriticalLowBackground  = [3]int{64, 0, 0}  // dim red
	CriticalHighBackground = [3]int{64, 32, 0} // dim orange
)

// Primitive is a single draw instruction for the device. It marshals to the
// one-key object form AWTRIX expects, e.g. {"dp": [x, y, "#rrggbb"]}.
// Devices paint primitives in sequence, so ordering matters.
type Primitive struct {
	Op   string
	Args []any
}

// MarshalJSON implements json.Marshaler.
func (p Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{p.Op: p.Args})
}

// UnmarshalJSON implements json.Unmarshaler for round-tripping commands.
func (p *Primitive) UnmarshalJSON(data []byte) error {
	var raw map[string][]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("draw primitive must have exactly one key, got %d", len(raw))
	}
	for op, args := range raw {
		p.Op = op
		p.Args = args
	}
	return nil
}

// Point builds a pixel-draw primitive.
func Point(x, y int, color string) Primitive {
	return Primitive{Op: "dp", Args: []any{x, y, color}}
}

// Line builds a line-draw primitive.
func Line(x1, y1, x2, y2 int, color string) Primitive {
	return Primitive{Op: "dl", Args: []any{x1, y1, x2, y2, color}}
}

// Text builds a text-draw primitive.
func Text(x, y int, text, color string) Primitive {
	return Primitive{Op: "dt", Args: []any{x, y, text, color}}
}

// Command is a complete AWTRIX3 custom-app payload.
type Command struct {
	Text       string      `json:"text"`
	Color      [3]int      `json:"color"`
	Icon       *string     `json:"icon"`
	Duration   int         `json:"duration"`
	NoScroll   bool        `json:"noScroll"`
	Center     bool        `json:"center"`
	Lifetime   int         `json:"lifetime"`
	Draw       []Primitive `json:"draw"`
	Background *[3]int     `json:"background,omitempty"`
	BlinkText  int         `json:"blinkText,omitempty"`
	Progress   int         `json:"progress"`
	ProgressC  [3]int      `json:"progressC"`
	ProgressBC [3]int      `json:"progressBC"`
}

// rgbToHex converts an RGB triple to the hex string used by draw commands.
func rgbToHex(rgb [3]int) string {
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
