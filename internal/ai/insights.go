package ai

import (
	"math"
	"time"
)

// Insights is the operator-facing analysis snapshot for one lead.
//
// Mutation rules (enforced by the Orchestrator):
// - Updated only by successful analysis responses.
// - Frozen on failure: stale values are retained, never blanked.
type Insights struct {
	// ConversionProbability is a 0-100 integer for display.
	// The model returns a 0.0-1.0 fraction; scaling happens exactly once, here.
	ConversionProbability int `json:"conversion_probability"`

	RecommendedStrategy string   `json:"recommended_strategy,omitempty"`
	RiskAssessment      Risk     `json:"risk_assessment,omitempty"`
	FollowUps           []string `json:"follow_ups,omitempty"`

	// Fallback marks insights derived from a locally known prior score rather
	// than a fresh model response.
	Fallback  bool      `json:"fallback,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// ScaleProbability converts a 0.0-1.0 model fraction into the 0-100 display
// integer. Displaying the raw fraction as a percentage is a correctness bug,
// so every consumer must go through this.
func ScaleProbability(fraction float64) int {
	if math.IsNaN(fraction) {
		return 0
	}
	p := int(math.Round(fraction * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// RiskFor maps a 0-100 probability to a risk band.
// Thresholds are the contract: >80 low, 60-80 medium, <60 high.
func RiskFor(probability int) Risk {
	switch {
	case probability > 80:
		return RiskLow
	case probability >= 60:
		return RiskMedium
	default:
		return RiskHigh
	}
}
