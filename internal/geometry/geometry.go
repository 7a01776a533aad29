// Package geometry provides the axis-aligned box predicates used by the
// compliance rules. All functions are pure; distances are in pixel space.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBox reports a bounding box that does not satisfy x1<=x2, y1<=y2.
var ErrInvalidBox = errors.New("invalid bounding box")

// Box is an axis-aligned bounding box in pixel coordinates.
// Invariant: X1 <= X2 and Y1 <= Y2.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Point is a location in pixel space. Centroids land between pixels, so
// coordinates are floats.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Validate checks the box invariant.
func (b Box) Validate() error {
	if b.X1 > b.X2 || b.Y1 > b.Y2 {
		return fmt.Errorf("%w: (%d,%d,%d,%d)", ErrInvalidBox, b.X1, b.Y1, b.X2, b.Y2)
	}
	return nil
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return float64(b.X2 - b.X1) }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return float64(b.Y2 - b.Y1) }

// Centroid returns the midpoint of the box.
func Centroid(b Box) Point {
	return Point{
		X: float64(b.X1+b.X2) / 2,
		Y: float64(b.Y1+b.Y2) / 2,
	}
}

// Corners returns the four corner points of the box.
func Corners(b Box) [4]Point {
	return [4]Point{
		{X: float64(b.X1), Y: float64(b.Y1)},
		{X: float64(b.X2), Y: float64(b.Y1)},
		{X: float64(b.X2), Y: float64(b.Y2)},
		{X: float64(b.X1), Y: float64(b.Y2)},
	}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// RectDistance returns the distance between two filled rectangles: 0 when
// they overlap or touch, otherwise the Euclidean distance between their
// nearest edges.
func RectDistance(a, b Box) float64 {
	dx := axisGap(a.X1, a.X2, b.X1, b.X2)
	dy := axisGap(a.Y1, a.Y2, b.Y1, b.Y2)
	return math.Hypot(dx, dy)
}

// axisGap returns the gap between intervals [a1,a2] and [b1,b2] on one
// axis, or 0 when they overlap or touch.
func axisGap(a1, a2, b1, b2 int) float64 {
	if b1 > a2 {
		return float64(b1 - a2)
	}
	if a1 > b2 {
		return float64(a1 - b2)
	}
	return 0
}

// PointInRect reports whether p lies inside b, boundary included.
func PointInRect(p Point, b Box) bool {
	return p.X >= float64(b.X1) && p.X <= float64(b.X2) &&
		p.Y >= float64(b.Y1) && p.Y <= float64(b.Y2)
}

// PointRectDistance returns the distance from p to the filled rectangle b;
// 0 when p is inside or on the boundary.
func PointRectDistance(p Point, b Box) float64 {
	dx := math.Max(math.Max(float64(b.X1)-p.X, 0), p.X-float64(b.X2))
	dy := math.Max(math.Max(float64(b.Y1)-p.Y, 0), p.Y-float64(b.Y2))
	return math.Hypot(dx, dy)
}

// Expand grows the box by dx on the left/right and dy on the top/bottom.
func Expand(b Box, dx, dy int) Box {
	return Box{X1: b.X1 - dx, Y1: b.Y1 - dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// CoverageRadius returns the heuristic operational radius of a box: its
// width times scale. The scale factor is configuration, not a constant;
// the conventional default of 5 is an uncalibrated heuristic.
func CoverageRadius(b Box, scale float64) float64 {
	return b.Width() * scale
}

// PixelsToMeters converts a pixel distance using a configured
// pixels-per-meter ratio (meters represented by one pixel).
func PixelsToMeters(distancePx, ratio float64) float64 {
	return distancePx * ratio
}
