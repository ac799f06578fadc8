package detection

import (
	"image"
	"math"
	"testing"
)

func TestHarris_FindsCrossing(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 100, 100))
	Line{Rho: 40, Theta: 0}.Draw(m, 2)
	Line{Rho: 60, Theta: math.Pi / 2}.Draw(m, 2)

	centroids := Harris(m, 2, 0.04).Centroids(0.5)
	if len(centroids) == 0 {
		t.Fatal("no corner found at the crossing")
	}
	for _, c := range centroids {
		if math.Abs(c.X-40.5) > 4 || math.Abs(c.Y-60.5) > 4 {
			t.Errorf("corner at %v, want near (40,60)", c)
		}
	}
}

func TestHarris_Uniform(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 30, 30))
	r := Harris(m, 3, 0.04)
	if r.Max != 0 {
		t.Errorf("uniform image max response: got %f", r.Max)
	}
	if len(r.Points(0.5)) != 0 {
		t.Error("uniform image should have no corners")
	}
}
