package model

// Action is the operational response chosen by the decision stage.
type Action string

const (
	ActionContinue  Action = "continue"
	ActionAlertQA   Action = "alert_qa"
	ActionStopLine  Action = "stop_line"
	ActionHoldBatch Action = "hold_batch"
)

// AllActions lists every valid action.
func AllActions() []Action {
	return []Action{ActionContinue, ActionAlertQA, ActionStopLine, ActionHoldBatch}
}

// ValidAction reports whether s names a known action.
func ValidAction(s string) bool {
	for _, a := range AllActions() {
		if string(a) == s {
			return true
		}
	}
	return false
}

// RiskLevel grades the business exposure of an action.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// BusinessImpact is the cost/risk estimate attached to an action.
type BusinessImpact struct {
	EstimatedCost  float64   `json:"estimated_cost"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
	PlantInfo      string    `json:"plant_info,omitempty"`
}

// AgentReasoning explains the chosen action. Fail decisions carry the full
// block with impact and history context; pass decisions carry a minimal
// continue block.
type AgentReasoning struct {
	Action            Action         `json:"action"`
	Reasoning         string         `json:"reasoning"`
	Confidence        float64        `json:"confidence"`
	BusinessImpact    BusinessImpact `json:"business_impact"`
	HistoricalContext string         `json:"historical_context,omitempty"`
}

// DecisionStatus is the pass/fail verdict of a run.
type DecisionStatus string

const (
	DecisionPass DecisionStatus = "pass"
	DecisionFail DecisionStatus = "fail"
)

// AgentDecision is the terminal artifact of a pipeline run. Exactly one is
// emitted per successful run; it is immutable once emitted.
type AgentDecision struct {
	Status     DecisionStatus   `json:"status"`
	Confidence float64          `json:"confidence"`
	Violations []Violation      `json:"violations"`
	Severity   Severity         `json:"severity,omitempty"`
	Reason     string           `json:"reason"`
	Extracted  *ExtractedRecord `json:"extracted,omitempty"`
	Reasoning  *AgentReasoning  `json:"agent_reasoning,omitempty"`
}
