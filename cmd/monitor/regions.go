package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/pkg/geospatial"
)

// Region is one monitored area. Either an explicit bounding box or a
// center point with a radius; the radius form is expanded into a box
// at load time.
type Region struct {
	Name         string           `json:"name"`
	Disease      string           `json:"disease,omitempty"`
	Bounds       *domain.Bounds   `json:"bounds,omitempty"`
	Center       *domain.GeoPoint `json:"center,omitempty"`
	RadiusMeters float64          `json:"radius_meters,omitempty"`
}

type regionManifest struct {
	Regions []Region `json:"regions"`
}

// maxRegionSpanMeters flags manifests that accidentally cover a
// continent; assessments still run, but the engine output for such a
// box is rarely meaningful.
const maxRegionSpanMeters = 2_000_000

// loadRegions reads the manifest and resolves every region to a
// validated bounding box.
func loadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest regionManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(manifest.Regions) == 0 {
		return nil, fmt.Errorf("manifest %s defines no regions", path)
	}

	for i := range manifest.Regions {
		r := &manifest.Regions[i]
		if r.Name == "" {
			return nil, fmt.Errorf("region %d has no name", i)
		}
		if r.Bounds == nil {
			if r.Center == nil || r.RadiusMeters <= 0 {
				return nil, fmt.Errorf("region %q needs bounds or center+radius_meters", r.Name)
			}
			minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(r.Center.Lat, r.Center.Lng, r.RadiusMeters)
			r.Bounds = &domain.Bounds{North: maxLat, South: minLat, East: maxLon, West: minLon}
		}
		if err := r.Bounds.Validate(); err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Name, err)
		}
		span := geospatial.Haversine(r.Bounds.South, r.Bounds.West, r.Bounds.North, r.Bounds.East)
		if span > maxRegionSpanMeters {
			slog.Warn("region spans an unusually large area",
				"region", r.Name, "diagonalKm", int(span/1000))
		}
	}

	return manifest.Regions, nil
}
