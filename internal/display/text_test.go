package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextWidth(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"1", 2},
		{"8", 4},
		{"11", 5},       // 2 + 1 + 2
		{"149", 12},     // 2 + 1 + 4 + 1 + 4
		{"888", 14},     // 4 + 1 + 4 + 1 + 4
		{"+5", 9},       // 4 + 1 + 4
		{"-11", 10},     // 4 + 1 + 2 + 1 + 2
		{"il:", 8},      // 2 + 1 + 2 + 1 + 2
		{"a b", 12},     // 4 + 1 + 2 + 1 + 4 (space is narrow)
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, TextWidth(tt.text))
		})
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name     string
		delta    *int
		expected string
	}{
		{"nil renders empty", nil, ""},
		{"zero gets explicit plus", intPtr(0), "+0"},
		{"positive gets explicit plus", intPtr(7), "+7"},
		{"negative keeps its sign", intPtr(-12), "-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDelta(tt.delta))
		})
	}
}
