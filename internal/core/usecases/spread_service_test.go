package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/epiwatch/epiwatch/internal/core/domain"
	"github.com/epiwatch/epiwatch/internal/core/usecases"
)

// --- Mock OutbreakRepository ---

type mockOutbreakRepo struct {
	fetchActiveFn  func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error)
	insertFn       func(ctx context.Context, report *domain.OutbreakReport) error
	getByIDFn      func(ctx context.Context, id string) (*domain.OutbreakReport, error)
	listInBoundsFn func(ctx context.Context, bounds domain.Bounds, disease string, limit, offset int) ([]domain.OutbreakReport, int, error)
	findNearbyFn   func(ctx context.Context, lat, lng, radius float64, limit int) ([]domain.OutbreakReport, error)
}

func (m *mockOutbreakRepo) FetchActive(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
	if m.fetchActiveFn != nil {
		return m.fetchActiveFn(ctx, bounds, disease, recencyDays)
	}
	return nil, nil
}

func (m *mockOutbreakRepo) Insert(ctx context.Context, report *domain.OutbreakReport) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, report)
	}
	return nil
}

func (m *mockOutbreakRepo) InsertBatch(ctx context.Context, reports []domain.OutbreakReport) error {
	return nil
}

func (m *mockOutbreakRepo) GetByID(ctx context.Context, id string) (*domain.OutbreakReport, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockOutbreakRepo) ListInBounds(ctx context.Context, bounds domain.Bounds, disease string, limit, offset int) ([]domain.OutbreakReport, int, error) {
	if m.listInBoundsFn != nil {
		return m.listInBoundsFn(ctx, bounds, disease, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockOutbreakRepo) FindNearby(ctx context.Context, lat, lng, radius float64, limit int) ([]domain.OutbreakReport, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lng, radius, limit)
	}
	return nil, nil
}

// --- Mock PredictionGateway ---

type mockGateway struct {
	classifyFn func(ctx context.Context, outbreaks []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error)
	healthFn   func(ctx context.Context) bool
	calls      int
}

func (m *mockGateway) ClassifyRisk(ctx context.Context, outbreaks []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error) {
	m.calls++
	if m.classifyFn != nil {
		return m.classifyFn(ctx, outbreaks, bounds)
	}
	return &domain.RiskClassification{}, nil
}

func (m *mockGateway) HealthCheck(ctx context.Context) bool {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return true
}

var testBounds = domain.Bounds{North: 29.0, South: 28.0, East: 78.0, West: 76.5}

// --- Tests ---

func TestPredictSpread_EmptyRegionShortCircuits(t *testing.T) {
	repo := &mockOutbreakRepo{
		fetchActiveFn: func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
			if recencyDays != usecases.DefaultRecencyDays {
				t.Errorf("expected recency window %d, got %d", usecases.DefaultRecencyDays, recencyDays)
			}
			return nil, nil
		},
	}
	gw := &mockGateway{}
	svc := usecases.NewSpreadService(repo, gw)

	result, err := svc.PredictSpread(context.Background(), testBounds, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gw.calls != 0 {
		t.Errorf("engine must not be called for an empty region, got %d calls", gw.calls)
	}
	if len(result.AlertSummary) != 1 || result.AlertSummary[0] != usecases.NoOutbreaksMessage {
		t.Errorf("expected [%q], got %v", usecases.NoOutbreaksMessage, result.AlertSummary)
	}
	if result.HighRiskAreas == nil || len(result.HighRiskAreas) != 0 {
		t.Errorf("expected empty non-nil high risk areas, got %#v", result.HighRiskAreas)
	}
	if result.RiskGrid == nil || len(result.RiskGrid) != 0 {
		t.Errorf("expected empty non-nil risk grid, got %#v", result.RiskGrid)
	}
	if result.GeneratedAt.IsZero() {
		t.Error("expected generated_at to be set")
	}
}

func TestPredictSpread_InvalidBoundsFailBeforeEngine(t *testing.T) {
	repo := &mockOutbreakRepo{
		fetchActiveFn: func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
			if err := bounds.Validate(); err != nil {
				return nil, err
			}
			return nil, nil
		},
	}
	gw := &mockGateway{}
	svc := usecases.NewSpreadService(repo, gw)

	inverted := domain.Bounds{North: 28.0, South: 29.0, East: 78.0, West: 76.5}
	_, err := svc.PredictSpread(context.Background(), inverted, "")
	if !errors.Is(err, domain.ErrInvalidBounds) {
		t.Fatalf("expected ErrInvalidBounds, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("engine must not be called for invalid bounds, got %d calls", gw.calls)
	}
}

func TestPredictSpread_EngineErrorPropagates(t *testing.T) {
	repo := &mockOutbreakRepo{
		fetchActiveFn: func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
			return []domain.OutbreakReport{{Disease: "dengue", Cases: 5, Lat: 28.6, Lng: 77.2}}, nil
		},
	}
	engineErr := &domain.PredictionEngineError{Cause: errors.New("connection refused")}
	gw := &mockGateway{
		classifyFn: func(ctx context.Context, outbreaks []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error) {
			return nil, engineErr
		},
	}
	svc := usecases.NewSpreadService(repo, gw)

	_, err := svc.PredictSpread(context.Background(), testBounds, "")
	var pe *domain.PredictionEngineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PredictionEngineError to propagate unchanged, got %v", err)
	}
}

func TestPredictSpread_RepositoryErrorPropagates(t *testing.T) {
	repo := &mockOutbreakRepo{
		fetchActiveFn: func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
			return nil, domain.ErrRepositoryUnavailable
		},
	}
	svc := usecases.NewSpreadService(repo, &mockGateway{})

	_, err := svc.PredictSpread(context.Background(), testBounds, "")
	if !errors.Is(err, domain.ErrRepositoryUnavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
	}
}

func TestPredictSpread_NoAlertsYieldsEmptySummary(t *testing.T) {
	repo := &mockOutbreakRepo{
		fetchActiveFn: func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
			return []domain.OutbreakReport{{Disease: "dengue", Cases: 8, Lat: 28.6, Lng: 77.2}}, nil
		},
	}
	// Medium risk only: outbreaks present, nothing to alert on.
	gw := &mockGateway{
		classifyFn: func(ctx context.Context, outbreaks []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error) {
			return &domain.RiskClassification{
				MediumRiskAreas: []domain.RiskArea{{Name: "Noida", Lat: 28.5, Lng: 77.4, DaysUntilSpread: 9, Probability: 0.3}},
			}, nil
		},
	}
	svc := usecases.NewSpreadService(repo, gw)

	result, err := svc.PredictSpread(context.Background(), testBounds, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlertSummary == nil || len(result.AlertSummary) != 0 {
		t.Errorf("expected empty non-nil alert summary, got %#v", result.AlertSummary)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"alert_summary":[]`) {
		t.Errorf("alert summary must serialize as an empty array, got %s", data)
	}
}

func TestPredictSpread_EndToEnd(t *testing.T) {
	outbreaks := []domain.OutbreakReport{
		{Disease: "dengue", Cases: 12, Lat: 28.6, Lng: 77.2},
	}
	repo := &mockOutbreakRepo{
		fetchActiveFn: func(ctx context.Context, bounds domain.Bounds, disease string, recencyDays int) ([]domain.OutbreakReport, error) {
			return outbreaks, nil
		},
	}
	gw := &mockGateway{
		classifyFn: func(ctx context.Context, got []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error) {
			if len(got) != 1 {
				t.Errorf("expected 1 outbreak forwarded to engine, got %d", len(got))
			}
			return &domain.RiskClassification{
				HighRiskAreas: []domain.RiskArea{
					{Name: "Ghaziabad", Lat: 28.9, Lng: 77.5, DaysUntilSpread: 3, Probability: 0.7},
				},
				RiskGrid: []domain.RiskGridCell{{Lat: 28.5, Lng: 77.0, Risk: 0.4}},
			}, nil
		},
	}
	svc := usecases.NewSpreadService(repo, gw)

	result, err := svc.PredictSpread(context.Background(), testBounds, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.CurrentOutbreaks) != 1 {
		t.Errorf("expected current outbreaks echoed back, got %d", len(result.CurrentOutbreaks))
	}
	if len(result.HighRiskAreas) != 1 || len(result.RiskGrid) != 1 {
		t.Errorf("expected engine output passed through, got %d areas %d cells",
			len(result.HighRiskAreas), len(result.RiskGrid))
	}
	if result.MediumRiskAreas == nil || result.LowRiskAreas == nil {
		t.Error("expected medium/low lists to be empty, not nil")
	}

	want := "dengue detected (12 cases). High risk of spread to Ghaziabad in next 3 days (70% probability)"
	if len(result.AlertSummary) != 1 || result.AlertSummary[0] != want {
		t.Errorf("alert mismatch:\n got %v\nwant %q", result.AlertSummary, want)
	}
}
