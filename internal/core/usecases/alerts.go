package usecases

import (
	"fmt"
	"math"
	"strings"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

const (
	// proximityDelta is the per-axis degree delta under which an outbreak
	// counts as affecting a risk area. A cheap coordinate-local box test,
	// not geodesic distance; kept for behavioural compatibility with the
	// deployed alert wording.
	proximityDelta = 0.5

	// maxAffectedAreas caps how many risk areas one disease alert names.
	maxAffectedAreas = 3
)

// SynthesizeAlerts builds ranked, human-readable spread alerts by matching
// outbreak disease groups against high-risk areas. Pure and deterministic:
// identical input yields an identical alert list. The result is never nil,
// so an empty summary serializes as [] like the other prediction lists.
func SynthesizeAlerts(outbreaks []domain.OutbreakReport, highRiskAreas []domain.RiskArea) []string {
	// Group outbreaks by disease, preserving first-occurrence order so the
	// output ordering is stable.
	var order []string
	groups := make(map[string][]domain.OutbreakReport)
	for _, o := range outbreaks {
		if _, seen := groups[o.Disease]; !seen {
			order = append(order, o.Disease)
		}
		groups[o.Disease] = append(groups[o.Disease], o)
	}

	alerts := []string{}
	for _, disease := range order {
		group := groups[disease]

		var totalCases uint
		for _, o := range group {
			totalCases += o.Cases
		}

		affected := affectedAreas(group, highRiskAreas)
		if len(affected) == 0 {
			continue
		}

		names := make([]string, 0, len(affected))
		minDays := affected[0].DaysUntilSpread
		var probSum float64
		for _, a := range affected {
			names = append(names, a.Name)
			if a.DaysUntilSpread < minDays {
				minDays = a.DaysUntilSpread
			}
			probSum += a.Probability
		}
		probPct := int(math.Round(probSum / float64(len(affected)) * 100))

		alerts = append(alerts, fmt.Sprintf(
			"%s detected (%d cases). High risk of spread to %s in next %d days (%d%% probability)",
			disease, totalCases, strings.Join(names, ", "), minDays, probPct,
		))
	}

	if len(alerts) == 0 && len(highRiskAreas) > 0 {
		alerts = append(alerts, fmt.Sprintf(
			"%d areas identified at high risk for disease spread. Enhanced monitoring recommended.",
			len(highRiskAreas),
		))
	}

	return alerts
}

// affectedAreas returns the first maxAffectedAreas risk areas, in their
// pre-existing rank order, that lie within proximityDelta degrees of any
// outbreak in the group on both axes.
func affectedAreas(group []domain.OutbreakReport, areas []domain.RiskArea) []domain.RiskArea {
	var affected []domain.RiskArea
	for _, area := range areas {
		for _, o := range group {
			if math.Abs(o.Lat-area.Lat) < proximityDelta && math.Abs(o.Lng-area.Lng) < proximityDelta {
				affected = append(affected, area)
				break
			}
		}
		if len(affected) == maxAffectedAreas {
			break
		}
	}
	return affected
}
