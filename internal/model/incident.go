package model

import "time"

// Incident is the persisted record of a failed inspection. Appended by the
// caller after a fail decision; never mutated, removed only by an explicit
// operator clear.
type Incident struct {
	ID             string           `json:"id"`
	Timestamp      time.Time        `json:"timestamp"`
	BagNumber      int              `json:"bag_number"`
	Violations     []Violation      `json:"violations"`
	Severity       Severity         `json:"severity"`
	Action         Action           `json:"action"`
	EstimatedCost  float64          `json:"estimated_cost"`
	RiskLevel      RiskLevel        `json:"risk_level"`
	Recommendation string           `json:"recommendation"`
	Reasoning      string           `json:"reasoning"`
	Confidence     float64          `json:"confidence"`
	Extracted      *ExtractedRecord `json:"extracted,omitempty"`
}

// IncidentStats aggregates the store by severity and action.
type IncidentStats struct {
	Total     int `json:"total"`
	Critical  int `json:"critical"`
	Moderate  int `json:"moderate"`
	Minor     int `json:"minor"`
	StopLine  int `json:"stop_line"`
	AlertQA   int `json:"alert_qa"`
	HoldBatch int `json:"hold_batch"`
}

// IncidentFromDecision builds the incident record for a fail decision. The
// caller assigns the ID and timestamp at append time.
func IncidentFromDecision(d *AgentDecision, bagNumber int) Incident {
	inc := Incident{
		BagNumber:  bagNumber,
		Violations: d.Violations,
		Severity:   d.Severity,
		Confidence: d.Confidence,
		Extracted:  d.Extracted,
	}
	if d.Reasoning != nil {
		inc.Action = d.Reasoning.Action
		inc.EstimatedCost = d.Reasoning.BusinessImpact.EstimatedCost
		inc.RiskLevel = d.Reasoning.BusinessImpact.RiskLevel
		inc.Recommendation = d.Reasoning.BusinessImpact.Recommendation
		inc.Reasoning = d.Reasoning.Reasoning
	}
	return inc
}
