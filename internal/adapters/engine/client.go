// Package engine talks to the external spread-prediction engine over HTTP.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

// Client implements ports.PredictionGateway against the prediction
// engine's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a prediction engine client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type predictRequest struct {
	Outbreaks []outbreakPayload `json:"outbreaks"`
	Bounds    boundsPayload     `json:"bounds"`
}

type outbreakPayload struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Cases    uint    `json:"cases"`
	Disease  string  `json:"disease"`
	Severity int     `json:"severity"`
}

type boundsPayload struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

type predictResponse struct {
	HighRiskAreas   []riskAreaPayload `json:"high_risk_areas"`
	MediumRiskAreas []riskAreaPayload `json:"medium_risk_areas"`
	LowRiskAreas    []riskAreaPayload `json:"low_risk_areas"`
	RiskGrid        []gridCellPayload `json:"risk_grid"`
}

type riskAreaPayload struct {
	Name            string  `json:"name"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	RiskScore       float64 `json:"risk_score"`
	Probability     float64 `json:"probability"`
	EstimatedCases  uint    `json:"estimated_cases"`
	DaysUntilSpread uint    `json:"days_until_spread"`
}

type gridCellPayload struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Risk float64 `json:"risk"`
}

// ClassifyRisk sends the active outbreaks to the engine and returns its
// risk classification. Every failure mode — transport, non-200 status,
// malformed or unexpected body — surfaces as a PredictionEngineError.
func (c *Client) ClassifyRisk(ctx context.Context, outbreaks []domain.OutbreakReport, bounds domain.Bounds) (*domain.RiskClassification, error) {
	payload := predictRequest{
		Outbreaks: make([]outbreakPayload, 0, len(outbreaks)),
		Bounds: boundsPayload{
			North: bounds.North,
			South: bounds.South,
			East:  bounds.East,
			West:  bounds.West,
		},
	}
	for _, o := range outbreaks {
		payload.Outbreaks = append(payload.Outbreaks, outbreakPayload{
			Lat:      o.Lat,
			Lng:      o.Lng,
			Cases:    o.Cases,
			Disease:  o.Disease,
			Severity: o.Severity,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.PredictionEngineError{Cause: fmt.Errorf("marshal request: %w", err)}
	}

	url := c.baseURL + "/predict/spread"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.PredictionEngineError{Cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.PredictionEngineError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("prediction engine returned non-200",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)))
		return nil, &domain.PredictionEngineError{
			Cause: fmt.Errorf("engine returned status %d", resp.StatusCode),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	var engineResp predictResponse
	if err := dec.Decode(&engineResp); err != nil {
		return nil, &domain.PredictionEngineError{Cause: fmt.Errorf("decode response: %w", err)}
	}

	return &domain.RiskClassification{
		HighRiskAreas:   toRiskAreas(engineResp.HighRiskAreas),
		MediumRiskAreas: toRiskAreas(engineResp.MediumRiskAreas),
		LowRiskAreas:    toRiskAreas(engineResp.LowRiskAreas),
		RiskGrid:        toGrid(engineResp.RiskGrid),
	}, nil
}

// HealthCheck probes GET /health and reports whether the engine
// answered healthy. Never returns an error: an unreachable engine is a
// false, not a failure.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false
	}
	return status.Status == "healthy"
}

func toRiskAreas(payloads []riskAreaPayload) []domain.RiskArea {
	areas := make([]domain.RiskArea, 0, len(payloads))
	for _, p := range payloads {
		areas = append(areas, domain.RiskArea{
			Name:            p.Name,
			Lat:             p.Lat,
			Lng:             p.Lng,
			RiskScore:       p.RiskScore,
			Probability:     p.Probability,
			EstimatedCases:  p.EstimatedCases,
			DaysUntilSpread: p.DaysUntilSpread,
		})
	}
	return areas
}

func toGrid(payloads []gridCellPayload) []domain.RiskGridCell {
	grid := make([]domain.RiskGridCell, 0, len(payloads))
	for _, p := range payloads {
		grid = append(grid, domain.RiskGridCell{Lat: p.Lat, Lng: p.Lng, Risk: p.Risk})
	}
	return grid
}
