package domain

import (
	"fmt"
	"time"
)

// OutbreakReport is a geotagged disease outbreak report read from storage.
// The prediction pipeline treats it as an immutable snapshot.
type OutbreakReport struct {
	ID         string    `json:"id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Cases      uint      `json:"cases"`
	Disease    string    `json:"disease"`
	Severity   int       `json:"severity"` // 1 (mild) .. 5 (critical)
	ReportedAt time.Time `json:"reported_at"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Validate checks a report before it is persisted.
func (r *OutbreakReport) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("lat must be within [-90, 90], got %.4f", r.Lat)
	}
	if r.Lng < -180 || r.Lng > 180 {
		return fmt.Errorf("lng must be within [-180, 180], got %.4f", r.Lng)
	}
	if r.Disease == "" {
		return fmt.Errorf("disease is required")
	}
	if r.Severity < 1 || r.Severity > 5 {
		return fmt.Errorf("severity must be 1-5, got %d", r.Severity)
	}
	return nil
}

// RiskArea is a named location the prediction engine flagged for likely
// disease spread. Opaque to the pipeline except for the fields below.
type RiskArea struct {
	Name            string  `json:"name"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	RiskScore       float64 `json:"risk_score"`  // 0..10
	Probability     float64 `json:"probability"` // 0.0..1.0
	EstimatedCases  uint    `json:"estimated_cases"`
	DaysUntilSpread uint    `json:"days_until_spread"`
}

// RiskGridCell is one sample of the engine's dense risk surface.
// Passed through to clients untouched.
type RiskGridCell struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Risk float64 `json:"risk"`
}

// RiskClassification is the typed result of one prediction engine call.
type RiskClassification struct {
	HighRiskAreas   []RiskArea     `json:"high_risk_areas"`
	MediumRiskAreas []RiskArea     `json:"medium_risk_areas"`
	LowRiskAreas    []RiskArea     `json:"low_risk_areas"`
	RiskGrid        []RiskGridCell `json:"risk_grid"`
}

// SpreadPrediction is the assembled spread-risk assessment for a region.
// It is a value recomputed on every request; nothing here outlives the
// request that produced it.
type SpreadPrediction struct {
	CurrentOutbreaks []OutbreakReport `json:"current_outbreaks"`
	HighRiskAreas    []RiskArea       `json:"high_risk_areas"`
	MediumRiskAreas  []RiskArea       `json:"medium_risk_areas"`
	LowRiskAreas     []RiskArea       `json:"low_risk_areas"`
	RiskGrid         []RiskGridCell   `json:"risk_grid"`
	GeneratedAt      time.Time        `json:"generated_at"`
	AlertSummary     []string         `json:"alert_summary"`
}
