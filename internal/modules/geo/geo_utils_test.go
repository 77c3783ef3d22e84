package geo

import (
	"math"
	"testing"

	"dispatch/internal/types"
)

func TestMilesBetween(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 34.0522, Lng: -118.2437},
			b:         types.Point{Lat: 34.0522, Lng: -118.2437},
			want:      0,
			tolerance: 0.001,
		},
		{
			name:      "downtown LA to Beverly Hills",
			a:         types.Point{Lat: 34.0522, Lng: -118.2437},
			b:         types.Point{Lat: 34.0736, Lng: -118.4004},
			want:      9.1,
			tolerance: 0.5,
		},
		{
			name:      "LA to Ridgecrest",
			a:         types.Point{Lat: 34.0522, Lng: -118.2437},
			b:         types.Point{Lat: 35.6225, Lng: -117.6709},
			want:      112,
			tolerance: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MilesBetween(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MilesBetween() = %.2f, want %.2f ± %.2f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestMilesBetweenSymmetric(t *testing.T) {
	a := types.Point{Lat: 34.0522, Lng: -118.2437}
	b := types.Point{Lat: 35.6225, Lng: -117.6709}
	if d1, d2 := MilesBetween(a, b), MilesBetween(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}
