// Package domain holds the core glucose data model shared by the HTTP
// service and the local relay. It is pure: no transport, no storage.
package domain

// Reading is a point-in-time glucose observation. Value is always present;
// Delta and PreviousValue are set together when a prior reading was
// available, and never independently. The trend fields are descriptive
// passthrough from the upstream source and play no part in layout logic.
type Reading struct {
	Value            int     `json:"value"`
	MmolL            float64 `json:"mmol_l,omitempty"`
	Trend            int     `json:"trend,omitempty"`
	TrendDirection   string  `json:"trend_direction,omitempty"`
	TrendDescription string  `json:"trend_description,omitempty"`
	TrendArrow       string  `json:"trend_arrow,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty"`
	Delta            *int    `json:"delta"`
	PreviousValue    *int    `json:"previous_value"`
}

// WithDelta returns a copy of the reading annotated with the change from a
// previous value. Both fields are set atomically so the Delta/PreviousValue
// pairing invariant holds.
func (r Reading) WithDelta(previous int) Reading {
	delta := r.Value - previous
	r.Delta = &delta
	r.PreviousValue = &previous
	return r
}
