package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadRegionsExplicitBounds(t *testing.T) {
	path := writeManifest(t, `{"regions":[
		{"name":"Delhi NCR","disease":"dengue",
		 "bounds":{"north":29.0,"south":28.0,"east":78.0,"west":76.5}}
	]}`)

	regions, err := loadRegions(path)
	if err != nil {
		t.Fatalf("loadRegions: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}

	r := regions[0]
	if r.Name != "Delhi NCR" || r.Disease != "dengue" {
		t.Errorf("unexpected region %+v", r)
	}
	if r.Bounds == nil || r.Bounds.North != 29.0 || r.Bounds.West != 76.5 {
		t.Errorf("bounds not preserved: %+v", r.Bounds)
	}
}

func TestLoadRegionsCenterRadius(t *testing.T) {
	path := writeManifest(t, `{"regions":[
		{"name":"Mumbai","center":{"lat":19.076,"lng":72.8777},"radius_meters":50000}
	]}`)

	regions, err := loadRegions(path)
	if err != nil {
		t.Fatalf("loadRegions: %v", err)
	}

	b := regions[0].Bounds
	if b == nil {
		t.Fatal("expected derived bounds")
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("derived bounds invalid: %v", err)
	}
	if !b.Contains(19.076, 72.8777) {
		t.Errorf("derived bounds %+v do not contain the center", b)
	}
	// 50 km radius is roughly 0.45 degrees of latitude.
	if got := b.North - b.South; got < 0.8 || got > 1.0 {
		t.Errorf("latitude span = %.3f, want ~0.9", got)
	}
}

func TestLoadRegionsRejectsIncomplete(t *testing.T) {
	cases := map[string]string{
		"no name":           `{"regions":[{"bounds":{"north":1,"south":0,"east":1,"west":0}}]}`,
		"no bounds or ring": `{"regions":[{"name":"x"}]}`,
		"zero radius":       `{"regions":[{"name":"x","center":{"lat":1,"lng":1},"radius_meters":0}]}`,
		"inverted bounds":   `{"regions":[{"name":"x","bounds":{"north":0,"south":1,"east":1,"west":0}}]}`,
		"empty manifest":    `{"regions":[]}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadRegions(writeManifest(t, content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadRegionsMissingFile(t *testing.T) {
	if _, err := loadRegions(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
