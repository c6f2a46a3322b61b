package domain

import "time"

// RegionalAlert is a spread-risk alert recorded for a monitored region.
type RegionalAlert struct {
	ID          string     `json:"id"`
	Region      string     `json:"region"`
	Message     string     `json:"message"`
	RiskLevel   string     `json:"risk_level"` // "high" | "medium" | "low"
	GeneratedAt time.Time  `json:"generated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}
