package geometry

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCentroid(t *testing.T) {
	got := Centroid(Box{X1: 0, Y1: 0, X2: 100, Y2: 50})
	if !almostEqual(got.X, 50) || !almostEqual(got.Y, 25) {
		t.Fatalf("centroid = %+v, want (50, 25)", got)
	}
}

func TestRectDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{"overlapping", Box{0, 0, 10, 10}, Box{5, 5, 15, 15}, 0},
		{"touching edges", Box{0, 0, 10, 10}, Box{10, 0, 20, 10}, 0},
		{"horizontal gap", Box{0, 0, 10, 10}, Box{200, 0, 210, 10}, 190},
		{"vertical gap", Box{0, 0, 10, 10}, Box{0, 40, 10, 50}, 30},
		{"diagonal gap", Box{0, 0, 10, 10}, Box{13, 14, 20, 20}, 5},
		{"contained", Box{0, 0, 100, 100}, Box{10, 10, 20, 20}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RectDistance(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Fatalf("RectDistance = %v, want %v", got, tt.want)
			}
			// Distance is symmetric.
			if got := RectDistance(tt.b, tt.a); !almostEqual(got, tt.want) {
				t.Fatalf("RectDistance reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointInRect(t *testing.T) {
	b := Box{X1: 10, Y1: 10, X2: 20, Y2: 20}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"interior", Point{15, 15}, true},
		{"boundary corner", Point{10, 10}, true},
		{"boundary edge", Point{20, 15}, true},
		{"outside", Point{21, 15}, false},
	}
	for _, tt := range tests {
		if got := PointInRect(tt.p, b); got != tt.want {
			t.Fatalf("%s: PointInRect = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPointRectDistance(t *testing.T) {
	b := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	if got := PointRectDistance(Point{5, 5}, b); !almostEqual(got, 0) {
		t.Fatalf("interior point distance = %v, want 0", got)
	}
	if got := PointRectDistance(Point{13, 14}, b); !almostEqual(got, 5) {
		t.Fatalf("diagonal point distance = %v, want 5", got)
	}
	if got := PointRectDistance(Point{5, 30}, b); !almostEqual(got, 20) {
		t.Fatalf("below point distance = %v, want 20", got)
	}
}

func TestCoverageRadius(t *testing.T) {
	// A 100px wide box at scale 5 covers a 500px radius.
	if got := CoverageRadius(Box{0, 0, 100, 100}, 5); !almostEqual(got, 500) {
		t.Fatalf("CoverageRadius = %v, want 500", got)
	}
	// Radius follows width, not height; no aspect ratio assumption.
	if got := CoverageRadius(Box{0, 0, 40, 400}, 5); !almostEqual(got, 200) {
		t.Fatalf("CoverageRadius tall box = %v, want 200", got)
	}
}

func TestPixelsToMeters(t *testing.T) {
	if got := PixelsToMeters(250, 0.1); !almostEqual(got, 25) {
		t.Fatalf("PixelsToMeters = %v, want 25", got)
	}
}

func TestExpand(t *testing.T) {
	got := Expand(Box{10, 10, 20, 20}, 5, 2)
	want := Box{5, 8, 25, 22}
	if got != want {
		t.Fatalf("Expand = %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	if err := (Box{0, 0, 10, 10}).Validate(); err != nil {
		t.Fatalf("valid box rejected: %v", err)
	}
	err := (Box{10, 0, 0, 10}).Validate()
	if !errors.Is(err, ErrInvalidBox) {
		t.Fatalf("expected ErrInvalidBox, got %v", err)
	}
}
