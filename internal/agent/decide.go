package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/config"
	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

const decisionSystemPrompt = `You are the decision module of a production line quality agent. You weigh rule violations, business impact estimates, and incident history, then choose exactly one action. Respond with JSON only.`

const decisionPromptTemplate = `A packaging quality violation was detected. Choose the operational response.

Violations (%s severity):
%s

Business impact estimates:
- stop_line: $%.0f, risk %s
- alert_qa: $%.0f, risk %s

Incident history (last %d days): %d total incidents, %d critical. Pattern: %s. %s

Choose ONE action: continue | alert_qa | stop_line | hold_batch

Return JSON:
{
  "action": "chosen action",
  "reasoning": "one or two sentences",
  "confidence": 0.0-1.0
}`

// decisionInput carries everything the synthesis stage needs: the validator
// verdict plus the tool outputs gathered earlier in the run.
type decisionInput struct {
	Violations  []model.Violation
	Severity    model.Severity
	Quality     model.PrintQuality
	StopImpact  model.BusinessImpact
	AlertImpact model.BusinessImpact
	History     *HistoryReport
	HistoryDays int
}

// Synthesize asks the text model to choose an action given the violations,
// impact estimates, and history. Any failure, request error, unparsable
// reply, or unknown action string, falls back to the deterministic ladder;
// synthesis never fails the run.
func Synthesize(ctx context.Context, ai anthropic.Client, cfg config.AnthropicConfig, in decisionInput) *model.AgentReasoning {
	prompt := buildDecisionPrompt(in)

	resp, err := ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     cfg.TextModel,
		MaxTokens: cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(decisionSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		zap.L().Warn("decide: synthesis request failed, using fallback", zap.Error(err))
		return fallbackDecision(in)
	}
	resp.Usage.LogCost(cfg.TextModel, "decision_synthesis")

	reasoning, err := parseDecision(extractText(resp))
	if err != nil {
		zap.L().Warn("decide: synthesis reply not parsable, using fallback",
			zap.String("raw", extractText(resp)),
			zap.Error(err),
		)
		return fallbackDecision(in)
	}

	attachImpact(reasoning, in)
	return reasoning
}

func buildDecisionPrompt(in decisionInput) string {
	var lines []string
	for _, v := range in.Violations {
		lines = append(lines, "- "+model.Describe(v, in.Quality))
	}
	historyNote := ""
	if in.History != nil {
		historyNote = in.History.Recommendation
	}
	total, critical, pattern := 0, 0, PatternNone
	if in.History != nil {
		total = in.History.TotalIncidents
		critical = in.History.RecentCritical
		pattern = in.History.Pattern
	}
	return fmt.Sprintf(decisionPromptTemplate,
		in.Severity,
		strings.Join(lines, "\n"),
		in.StopImpact.EstimatedCost, in.StopImpact.RiskLevel,
		in.AlertImpact.EstimatedCost, in.AlertImpact.RiskLevel,
		in.HistoryDays, total, critical, pattern, historyNote,
	)
}

// parseDecision recovers the action/reasoning/confidence triple from raw
// model text. An action string outside the known set is an error so the
// caller falls back deterministically.
func parseDecision(text string) (*model.AgentReasoning, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		Action     string  `json:"action"`
		Reasoning  string  `json:"reasoning"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "decide: parse decision JSON")
	}

	action := strings.ToLower(strings.TrimSpace(raw.Action))
	if !model.ValidAction(action) {
		return nil, eris.Errorf("decide: unknown action %q", raw.Action)
	}
	if raw.Confidence < 0 || raw.Confidence > 1 {
		return nil, eris.Errorf("decide: confidence %v out of range", raw.Confidence)
	}

	return &model.AgentReasoning{
		Action:     model.Action(action),
		Reasoning:  raw.Reasoning,
		Confidence: raw.Confidence,
	}, nil
}

// fallbackDecision is the deterministic ladder used when synthesis is
// unavailable. Severity dominates; a moderate violation escalates to a line
// stop when the recent history holds a critical incident.
func fallbackDecision(in decisionInput) *model.AgentReasoning {
	recentCritical := 0
	if in.History != nil {
		recentCritical = in.History.RecentCritical
	}

	reasoning := &model.AgentReasoning{}
	switch {
	case in.Severity == model.SeverityCritical:
		reasoning.Action = model.ActionStopLine
		reasoning.Confidence = 0.9
		reasoning.Reasoning = "Critical violation detected - stopping line per standard protocol"
	case in.Severity == model.SeverityModerate && recentCritical > 0:
		reasoning.Action = model.ActionStopLine
		reasoning.Confidence = 0.85
		reasoning.Reasoning = "Moderate violation with recent critical incidents - stopping line as precaution"
	case in.Severity == model.SeverityModerate:
		reasoning.Action = model.ActionAlertQA
		reasoning.Confidence = 0.8
		reasoning.Reasoning = "Moderate violation - alerting QA for review"
	default:
		reasoning.Action = model.ActionAlertQA
		reasoning.Confidence = 0.75
		reasoning.Reasoning = "Minor violation - alerting QA for routine check"
	}

	attachImpact(reasoning, in)
	return reasoning
}

// attachImpact binds the impact estimate matching the chosen action. A line
// stop carries the stop estimate; every other action carries the QA alert
// estimate.
func attachImpact(reasoning *model.AgentReasoning, in decisionInput) {
	if reasoning.Action == model.ActionStopLine {
		reasoning.BusinessImpact = in.StopImpact
	} else {
		reasoning.BusinessImpact = in.AlertImpact
	}
	if in.History != nil {
		reasoning.HistoricalContext = fmt.Sprintf("%d incidents in window, %d critical (%s)",
			in.History.TotalIncidents, in.History.RecentCritical, in.History.Pattern)
	}
}

// passDecision is the short-circuit verdict for a clean validation pass:
// action continue, zero cost, low risk.
func passDecision(record *model.ExtractedRecord) *model.AgentDecision {
	return &model.AgentDecision{
		Status:     model.DecisionPass,
		Confidence: 0.95,
		Violations: []model.Violation{model.ViolationNone},
		Reason:     "All quality standards met: positioning correct, print quality good, all components present.",
		Extracted:  record,
		Reasoning: &model.AgentReasoning{
			Action:         model.ActionContinue,
			Reasoning:      "No violations detected",
			Confidence:     0.95,
			BusinessImpact: EstimateImpact(model.ActionContinue, model.SeverityMinor, record.PlantCode),
		},
	}
}

// failDecision assembles the terminal fail verdict from the validator output
// and the synthesized reasoning.
func failDecision(record *model.ExtractedRecord, violations []model.Violation, severity model.Severity, reasoning *model.AgentReasoning) *model.AgentDecision {
	return &model.AgentDecision{
		Status:     model.DecisionFail,
		Confidence: reasoning.Confidence,
		Violations: violations,
		Severity:   severity,
		Reason:     renderFailReason(violations, severity, record.PrintQuality, reasoning.Action),
		Extracted:  record,
		Reasoning:  reasoning,
	}
}

// renderFailReason builds the operator-facing one-line summary, e.g.
// "CRITICAL: Code date overlapping quality seal. Action: STOP LINE".
func renderFailReason(violations []model.Violation, severity model.Severity, quality model.PrintQuality, action model.Action) string {
	descs := make([]string, 0, len(violations))
	for _, v := range violations {
		descs = append(descs, model.Describe(v, quality))
	}
	actionLabel := strings.ToUpper(strings.ReplaceAll(string(action), "_", " "))
	return fmt.Sprintf("%s: %s. Action: %s",
		strings.ToUpper(string(severity)),
		strings.Join(descs, "; "),
		actionLabel,
	)
}
