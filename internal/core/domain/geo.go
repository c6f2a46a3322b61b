package domain

import "fmt"

// Bounds is a geographic bounding box (WGS 84 degrees).
// South must be strictly less than North and West strictly less than East;
// inverted or antimeridian-crossing boxes are rejected, not normalised.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Validate checks the box invariants. The returned error wraps
// ErrInvalidBounds so callers can classify it with errors.Is.
func (b Bounds) Validate() error {
	if b.North < -90 || b.North > 90 || b.South < -90 || b.South > 90 {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrInvalidBounds)
	}
	if b.East < -180 || b.East > 180 || b.West < -180 || b.West > 180 {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrInvalidBounds)
	}
	if b.South >= b.North {
		return fmt.Errorf("%w: south (%.4f) must be less than north (%.4f)", ErrInvalidBounds, b.South, b.North)
	}
	if b.West >= b.East {
		return fmt.Errorf("%w: west (%.4f) must be less than east (%.4f)", ErrInvalidBounds, b.West, b.East)
	}
	return nil
}

// Contains reports whether the point falls inside the box, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
