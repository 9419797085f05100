package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var posadas = Bounds{North: -27.35, South: -27.40, East: -55.85, West: -55.95}

func TestBoundsContains(t *testing.T) {
	cases := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"center", -27.37, -55.90, true},
		{"north edge", -27.35, -55.90, true},
		{"west edge", -27.37, -55.95, true},
		{"origin", 0, 0, false},
		{"north of box", -27.30, -55.90, false},
		{"east of box", -27.37, -55.80, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, posadas.Contains(tc.lat, tc.lng))
		})
	}
}

func TestDistanceKm(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(-27.37, -55.90, -27.37, -55.90))

	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.01)

	// Buenos Aires -> Posadas, roughly 835 km.
	assert.InDelta(t, 835, DistanceKm(-34.6037, -58.3816, -27.3671, -55.8961), 20)

	assert.InDelta(t, DistanceKm(-27.36, -55.91, -27.39, -55.88), DistanceKm(-27.39, -55.88, -27.36, -55.91), 1e-9)
}
