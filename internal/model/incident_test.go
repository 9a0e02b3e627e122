package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidentFromDecision(t *testing.T) {
	record := &ExtractedRecord{PlantCode: "37", Positioning: PositioningOnMark}
	decision := &AgentDecision{
		Status:     DecisionFail,
		Confidence: 0.9,
		Violations: []Violation{ViolationCodeDateOnMark},
		Severity:   SeverityCritical,
		Extracted:  record,
		Reasoning: &AgentReasoning{
			Action:     ActionStopLine,
			Reasoning:  "seal overlap",
			Confidence: 0.9,
			BusinessImpact: BusinessImpact{
				EstimatedCost:  15000,
				RiskLevel:      RiskCritical,
				Recommendation: "stop now",
			},
		},
	}

	inc := IncidentFromDecision(decision, 7)

	assert.Equal(t, 7, inc.BagNumber)
	assert.Equal(t, SeverityCritical, inc.Severity)
	assert.Equal(t, ActionStopLine, inc.Action)
	assert.Equal(t, 15000.0, inc.EstimatedCost)
	assert.Equal(t, RiskCritical, inc.RiskLevel)
	assert.Equal(t, "stop now", inc.Recommendation)
	assert.Equal(t, "seal overlap", inc.Reasoning)
	require.Same(t, record, inc.Extracted)

	// Identity is assigned by the store, not here.
	assert.Empty(t, inc.ID)
	assert.True(t, inc.Timestamp.IsZero())
}

func TestIncidentFromDecisionWithoutReasoning(t *testing.T) {
	decision := &AgentDecision{
		Status:     DecisionFail,
		Confidence: 0.8,
		Violations: []Violation{ViolationMissingTime},
		Severity:   SeverityMinor,
	}

	inc := IncidentFromDecision(decision, 3)

	assert.Equal(t, 3, inc.BagNumber)
	assert.Empty(t, inc.Action)
	assert.Zero(t, inc.EstimatedCost)
}
