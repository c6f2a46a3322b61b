package usecases_test

import (
	"reflect"
	"testing"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/usecases"
)

func TestSynthesizeAlerts_GroupsByDisease(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "dengue", Cases: 10, Lat: 19.0, Lng: 72.8},
		{Disease: "dengue", Cases: 5, Lat: 19.1, Lng: 72.9},
		{Disease: "malaria", Cases: 7, Lat: 19.0, Lng: 72.8},
	}
	areas := []domain.RiskArea{
		{Name: "Thane", Lat: 19.2, Lng: 73.0, DaysUntilSpread: 4, Probability: 0.6},
	}

	alerts := usecases.SynthesizeAlerts(outbreaks, areas)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts (one per disease), got %d: %v", len(alerts), alerts)
	}

	want := "dengue detected (15 cases). High risk of spread to Thane in next 4 days (60% probability)"
	if alerts[0] != want {
		t.Errorf("dengue alert mismatch:\n got %q\nwant %q", alerts[0], want)
	}
	want = "malaria detected (7 cases). High risk of spread to Thane in next 4 days (60% probability)"
	if alerts[1] != want {
		t.Errorf("malaria alert mismatch:\n got %q\nwant %q", alerts[1], want)
	}
}

func TestSynthesizeAlerts_ProximityTest(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "cholera", Cases: 3, Lat: 19.0, Lng: 72.8},
	}
	areas := []domain.RiskArea{
		// Both deltas < 0.5 — affected.
		{Name: "Near", Lat: 19.3, Lng: 73.1, DaysUntilSpread: 2, Probability: 0.5},
		// Delta >= 0.5 on both axes — not affected.
		{Name: "Far", Lat: 20.0, Lng: 74.0, DaysUntilSpread: 1, Probability: 0.9},
	}

	alerts := usecases.SynthesizeAlerts(outbreaks, areas)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	want := "cholera detected (3 cases). High risk of spread to Near in next 2 days (50% probability)"
	if alerts[0] != want {
		t.Errorf("got %q, want %q", alerts[0], want)
	}
}

func TestSynthesizeAlerts_BoundaryDeltaNotAffected(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "measles", Cases: 2, Lat: 10.0, Lng: 50.0},
	}
	// Exactly 0.5 away on one axis: the strict < comparison excludes it.
	areas := []domain.RiskArea{
		{Name: "Edge", Lat: 10.5, Lng: 50.1, DaysUntilSpread: 1, Probability: 0.8},
	}

	alerts := usecases.SynthesizeAlerts(outbreaks, areas)
	if len(alerts) != 1 {
		t.Fatalf("expected fallback alert, got %d alerts", len(alerts))
	}
	want := "1 areas identified at high risk for disease spread. Enhanced monitoring recommended."
	if alerts[0] != want {
		t.Errorf("got %q, want %q", alerts[0], want)
	}
}

func TestSynthesizeAlerts_CapsAffectedAreasAtThree(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "dengue", Cases: 20, Lat: 19.0, Lng: 72.8},
	}
	areas := []domain.RiskArea{
		{Name: "A", Lat: 19.1, Lng: 72.9, DaysUntilSpread: 5, Probability: 0.4},
		{Name: "B", Lat: 19.2, Lng: 72.7, DaysUntilSpread: 3, Probability: 0.6},
		{Name: "C", Lat: 18.9, Lng: 72.6, DaysUntilSpread: 7, Probability: 0.5},
		{Name: "D", Lat: 19.0, Lng: 72.8, DaysUntilSpread: 1, Probability: 0.9},
	}

	alerts := usecases.SynthesizeAlerts(outbreaks, areas)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	// First three areas in rank order; min days 3; avg prob 0.5 → 50%.
	want := "dengue detected (20 cases). High risk of spread to A, B, C in next 3 days (50% probability)"
	if alerts[0] != want {
		t.Errorf("got %q, want %q", alerts[0], want)
	}
}

func TestSynthesizeAlerts_FallbackCount(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "typhoid", Cases: 4, Lat: 0.0, Lng: 0.0},
	}
	areas := []domain.RiskArea{
		{Name: "X", Lat: 40.0, Lng: 40.0},
		{Name: "Y", Lat: 41.0, Lng: 41.0},
		{Name: "Z", Lat: 42.0, Lng: 42.0},
	}

	alerts := usecases.SynthesizeAlerts(outbreaks, areas)
	want := []string{"3 areas identified at high risk for disease spread. Enhanced monitoring recommended."}
	if !reflect.DeepEqual(alerts, want) {
		t.Errorf("got %v, want %v", alerts, want)
	}
}

func TestSynthesizeAlerts_EmptyWhenNothingMatches(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "dengue", Cases: 1, Lat: 0, Lng: 0},
	}
	if alerts := usecases.SynthesizeAlerts(outbreaks, nil); alerts == nil || len(alerts) != 0 {
		t.Errorf("expected empty non-nil alert list with no high-risk areas, got %#v", alerts)
	}
	if alerts := usecases.SynthesizeAlerts(nil, nil); alerts == nil || len(alerts) != 0 {
		t.Errorf("expected empty non-nil alert list with no input, got %#v", alerts)
	}
}

func TestSynthesizeAlerts_Deterministic(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "dengue", Cases: 10, Lat: 19.0, Lng: 72.8},
		{Disease: "malaria", Cases: 7, Lat: 19.1, Lng: 72.9},
		{Disease: "dengue", Cases: 5, Lat: 19.2, Lng: 72.7},
	}
	areas := []domain.RiskArea{
		{Name: "Thane", Lat: 19.2, Lng: 73.0, DaysUntilSpread: 4, Probability: 0.62},
		{Name: "Kalyan", Lat: 19.3, Lng: 73.1, DaysUntilSpread: 6, Probability: 0.31},
	}

	first := usecases.SynthesizeAlerts(outbreaks, areas)
	second := usecases.SynthesizeAlerts(outbreaks, areas)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("synthesize is not deterministic:\n first %v\nsecond %v", first, second)
	}
	if len(first) != 2 || first[0][:6] != "dengue" || first[1][:7] != "malaria" {
		t.Errorf("expected disease-first-occurrence ordering, got %v", first)
	}
}
