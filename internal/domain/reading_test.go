package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDelta(t *testing.T) {
	r := Reading{Value: 149}.WithDelta(160)

	require.NotNil(t, r.Delta)
	assert.Equal(t, -11, *r.Delta)
	require.NotNil(t, r.PreviousValue)
	assert.Equal(t, 160, *r.PreviousValue)
}

func TestWithDelta_DoesNotMutateReceiver(t *testing.T) {
	original := Reading{Value: 100}
	_ = original.WithDelta(95)
	assert.Nil(t, original.Delta)
	assert.Nil(t, original.PreviousValue)
}

// Delta must serialize as an explicit null when unknown, so API consumers
// can distinguish "no change" from "no previous reading".
func TestReading_DeltaSerializesAsNull(t *testing.T) {
	data, err := json.Marshal(Reading{Value: 110})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"delta":null`)
	assert.Contains(t, string(data), `"previous_value":null`)
}
