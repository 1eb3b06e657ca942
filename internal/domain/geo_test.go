package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	t.Run("identical points are zero", func(t *testing.T) {
		assert.Equal(t, 0.0, HaversineKm(14.5995, 120.9842, 14.5995, 120.9842))
		assert.Equal(t, 0.0, HaversineKm(0, 0, 0, 0))
		assert.Equal(t, 0.0, HaversineKm(-33.8688, 151.2093, -33.8688, 151.2093))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := HaversineKm(14.5995, 120.9842, 14.5547, 121.0244)
		d2 := HaversineKm(14.5547, 121.0244, 14.5995, 120.9842)
		assert.Equal(t, d1, d2)
	})

	t.Run("known distances", func(t *testing.T) {
		// Luneta to the Makati CBD, ~6.6 km.
		assert.InDelta(t, 6.5978, HaversineKm(14.5995, 120.9842, 14.5547, 121.0244), 0.001)
		// Quarter of the equator.
		assert.InDelta(t, 10007.543, HaversineKm(0, 0, 0, 90), 0.01)
	})

	t.Run("out of range inputs still compute", func(t *testing.T) {
		// No domain validation: garbage in, finite number out.
		d := HaversineKm(400, -720, -250, 1000)
		assert.False(t, d != d, "distance must not be NaN")
	})
}
