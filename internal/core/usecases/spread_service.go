package usecases

import (
	"context"
	"time"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/ports"
)

// DefaultRecencyDays is the maximum age of an outbreak report eligible
// for a spread prediction.
const DefaultRecencyDays = 14

// NoOutbreaksMessage is the terminal alert for a region with no active
// outbreaks. Distinct from an empty alert list after synthesis.
const NoOutbreaksMessage = "No active outbreaks detected in the region"

// SpreadService runs the spread prediction pipeline:
// fetch active outbreaks, classify risk via the external engine,
// synthesize alerts, assemble the result. Stateless and safe to share
// across concurrent requests.
type SpreadService struct {
	outbreaks ports.OutbreakRepository
	engine    ports.PredictionGateway
	now       func() time.Time
}

// NewSpreadService creates a new SpreadService.
func NewSpreadService(outbreaks ports.OutbreakRepository, engine ports.PredictionGateway) *SpreadService {
	return &SpreadService{outbreaks: outbreaks, engine: engine, now: time.Now}
}

// PredictSpread computes a spread-risk assessment for the given bounds,
// optionally restricted to one disease. Repository and engine failures
// propagate unchanged; the empty-outbreak case is a valid terminal
// result, not an error.
func (s *SpreadService) PredictSpread(ctx context.Context, bounds domain.Bounds, disease string) (*domain.SpreadPrediction, error) {
	reports, err := s.outbreaks.FetchActive(ctx, bounds, disease, DefaultRecencyDays)
	if err != nil {
		return nil, err
	}

	if len(reports) == 0 {
		return &domain.SpreadPrediction{
			CurrentOutbreaks: []domain.OutbreakReport{},
			HighRiskAreas:    []domain.RiskArea{},
			MediumRiskAreas:  []domain.RiskArea{},
			LowRiskAreas:     []domain.RiskArea{},
			RiskGrid:         []domain.RiskGridCell{},
			GeneratedAt:      s.now().UTC(),
			AlertSummary:     []string{NoOutbreaksMessage},
		}, nil
	}

	classification, err := s.engine.ClassifyRisk(ctx, reports, bounds)
	if err != nil {
		return nil, err
	}

	return &domain.SpreadPrediction{
		CurrentOutbreaks: reports,
		HighRiskAreas:    emptyIfNil(classification.HighRiskAreas),
		MediumRiskAreas:  emptyIfNil(classification.MediumRiskAreas),
		LowRiskAreas:     emptyIfNil(classification.LowRiskAreas),
		RiskGrid:         emptyGridIfNil(classification.RiskGrid),
		GeneratedAt:      s.now().UTC(),
		AlertSummary:     SynthesizeAlerts(reports, classification.HighRiskAreas),
	}, nil
}

// EngineHealthy reports whether the prediction engine answers its
// liveness probe.
func (s *SpreadService) EngineHealthy(ctx context.Context) bool {
	return s.engine.HealthCheck(ctx)
}

func emptyIfNil(areas []domain.RiskArea) []domain.RiskArea {
	if areas == nil {
		return []domain.RiskArea{}
	}
	return areas
}

func emptyGridIfNil(grid []domain.RiskGridCell) []domain.RiskGridCell {
	if grid == nil {
		return []domain.RiskGridCell{}
	}
	return grid
}
