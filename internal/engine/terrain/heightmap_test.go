package terrain

import (
	"math"
	"testing"
)

func slope(t *testing.T) *Heightmap {
	t.Helper()
	// Height rises 1 unit per grid step along X, flat along Z.
	h := New(4, 4, 2.0)
	for z := 0; z < 4; z++ {
		for x := 0; x < 4; x++ {
			h.Set(x, z, float32(x))
		}
	}
	return h
}

func TestHeightAtGridPoints(t *testing.T) {
	h := slope(t)
	for x := 0; x < 4; x++ {
		got := h.HeightAt(float32(x)*2.0, 2.0)
		if math.Abs(float64(got-float32(x))) > 1e-4 {
			t.Errorf("grid point x=%d: got %v, want %d", x, got, x)
		}
	}
}

func TestHeightAtInterpolates(t *testing.T) {
	h := slope(t)

	// Halfway between grid x=1 (h=1) and x=2 (h=2) is world x=3.
	if got := h.HeightAt(3.0, 1.0); math.Abs(float64(got-1.5)) > 1e-4 {
		t.Errorf("expected interpolated height 1.5, got %v", got)
	}

	// A planar slope interpolates exactly everywhere on it.
	if got := h.HeightAt(1.2, 4.4); math.Abs(float64(got-0.6)) > 1e-4 {
		t.Errorf("expected height 0.6 on plane, got %v", got)
	}
}

func TestHeightAtClampsOutside(t *testing.T) {
	h := slope(t)

	if got := h.HeightAt(-10, -10); math.Abs(float64(got)) > 1e-4 {
		t.Errorf("before the grid should clamp to edge height 0, got %v", got)
	}
	if got := h.HeightAt(100, 100); math.Abs(float64(got-3)) > 1e-4 {
		t.Errorf("past the grid should clamp to edge height 3, got %v", got)
	}
}

func TestHeightAtEmpty(t *testing.T) {
	h := &Heightmap{}
	if got := h.HeightAt(1, 1); got != 0 {
		t.Errorf("empty heightmap should read 0, got %v", got)
	}
}

func TestSetIgnoresOutOfRange(t *testing.T) {
	h := New(2, 2, 1)
	h.Set(-1, 0, 9)
	h.Set(0, 5, 9)
	for z := 0; z < 2; z++ {
		for x := 0; x < 2; x++ {
			if h.At(x, z) != 0 {
				t.Fatalf("out-of-range Set leaked into (%d,%d)", x, z)
			}
		}
	}
}
