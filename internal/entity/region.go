package entity

import "math"

// NormalizedRegion is a rectangle in unit [0,1] coordinates with the origin
// at the bottom-left, used both for page regions and bounding boxes.
type NormalizedRegion struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the region.
func (r NormalizedRegion) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point (x, y) lies inside the region.
func (r NormalizedRegion) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Overlaps reports whether the two regions intersect.
func (r NormalizedRegion) Overlaps(other NormalizedRegion) bool {
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

// ApproxEqual reports whether two regions are equal within tolerance.
// Used when re-attributing classifier results to their source observation.
func (r NormalizedRegion) ApproxEqual(other NormalizedRegion, tolerance float64) bool {
	return math.Abs(r.X-other.X) <= tolerance &&
		math.Abs(r.Y-other.Y) <= tolerance &&
		math.Abs(r.Width-other.Width) <= tolerance &&
		math.Abs(r.Height-other.Height) <= tolerance
}
