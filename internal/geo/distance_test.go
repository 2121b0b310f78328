package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestHaversineKM_KnownDistance(t *testing.T) {
	// Marseille -> Utrecht area, the reference scenario used across the
	// scoring tests. Expected roughly 1065 km.
	d := HaversineKM(43.2965, 5.3698, floatPtr(52.0), floatPtr(5.0))
	require.NotNil(t, d)
	assert.InDelta(t, 1065.0, *d, 15.0)
}

func TestHaversineKM_SamePoint(t *testing.T) {
	d := HaversineKM(43.2965, 5.3698, floatPtr(43.2965), floatPtr(5.3698))
	require.NotNil(t, d)
	assert.InDelta(t, 0.0, *d, 0.001)
}

func TestHaversineKM_MissingCoordinates(t *testing.T) {
	assert.Nil(t, HaversineKM(43.2965, 5.3698, nil, floatPtr(5.0)))
	assert.Nil(t, HaversineKM(43.2965, 5.3698, floatPtr(52.0), nil))
	assert.Nil(t, HaversineKM(43.2965, 5.3698, nil, nil))
}
