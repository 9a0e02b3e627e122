// Package agent runs the code date inspection pipeline: vision extraction,
// deterministic rule validation, the business tools, and the final decision.
// Callers observe progress through synchronous step callbacks and receive
// exactly one decision per run.
package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/config"
	"github.com/sells-group/lineguard/internal/incident"
	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

// Callbacks observe pipeline progress. Both are optional and are invoked
// synchronously on the run's goroutine; a slow callback slows the run.
type Callbacks struct {
	OnStep     func(model.Step)
	OnDecision func(*model.AgentDecision)
}

// Agent owns one inspection pipeline configuration. Safe for sequential
// reuse; each Run is independent.
type Agent struct {
	ai    anthropic.Client
	store incident.Store
	cfg   *config.Config
	cb    Callbacks
}

// New builds an Agent. store may be nil, in which case the history tool
// reports an empty window and fail decisions are not persisted.
func New(ai anthropic.Client, store incident.Store, cfg *config.Config, cb Callbacks) *Agent {
	return &Agent{ai: ai, store: store, cfg: cfg, cb: cb}
}

// impactEstimates is the tool-impact step result: both candidate action
// estimates, computed before the action is chosen.
type impactEstimates struct {
	StopLine model.BusinessImpact `json:"stop_line"`
	AlertQA  model.BusinessImpact `json:"alert_qa"`
}

// Run executes one inspection of a bag image. Vision extraction failure
// aborts the run; every later stage degrades instead. The returned decision
// is also delivered through OnDecision before Run returns.
func (a *Agent) Run(ctx context.Context, image []byte, meta model.CallerMetadata) (*model.AgentDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Vision extraction. The only stage whose error aborts the run.
	step := a.begin(StepVisionExtraction)
	record, err := ExtractVision(ctx, a.ai, a.cfg.Anthropic, image)
	if err != nil {
		step.Reasoning = err.Error()
		a.finish(step, model.StepStatusError)
		return nil, err
	}
	step.Extracted = record
	step.Reasoning = "Extracted code date components from bag image"
	a.finish(step, model.StepStatusCompleted)

	if err := a.pace(ctx); err != nil {
		return nil, err
	}

	// Deterministic rule validation. Violations flag the step, never abort.
	step = a.begin(StepValidation)
	violations, severity := Validate(record, meta)
	if len(violations) == 0 {
		step.Reasoning = "All quality rules satisfied"
		a.finish(step, model.StepStatusCompleted)

		if err := a.pace(ctx); err != nil {
			return nil, err
		}

		// Clean bag: skip the tool stages but still close the trace with a
		// decision step.
		decision := passDecision(record)
		step = a.begin(StepDecision)
		step.Reasoning = "No violations detected"
		a.finish(step, model.StepStatusCompleted)

		a.decide(decision)
		return decision, nil
	}
	step.Reasoning = renderViolationSummary(violations, severity, record.PrintQuality)
	a.finish(step, model.StepStatusFlagged)

	if err := a.pace(ctx); err != nil {
		return nil, err
	}

	// Tool sequence: impact, history, log. Fixed order.
	step = a.begin(StepToolImpact)
	impacts := impactEstimates{
		StopLine: EstimateImpact(model.ActionStopLine, severity, record.PlantCode),
		AlertQA:  EstimateImpact(model.ActionAlertQA, severity, record.PlantCode),
	}
	step.ToolResult = impacts
	a.finish(step, model.StepStatusCompleted)

	if err := a.pace(ctx); err != nil {
		return nil, err
	}

	step = a.begin(StepToolHistory)
	history := a.queryHistory(ctx)
	step.ToolResult = history
	a.finish(step, model.StepStatusCompleted)

	if err := a.pace(ctx); err != nil {
		return nil, err
	}

	step = a.begin(StepToolLog)
	step.ToolResult = LogViolation(violations[0], severity, meta.BagNumber)
	a.finish(step, model.StepStatusCompleted)

	if err := a.pace(ctx); err != nil {
		return nil, err
	}

	// Decision synthesis. Falls back deterministically inside Synthesize.
	step = a.begin(StepDecision)
	reasoning := Synthesize(ctx, a.ai, a.cfg.Anthropic, decisionInput{
		Violations:  violations,
		Severity:    severity,
		Quality:     record.PrintQuality,
		StopImpact:  impacts.StopLine,
		AlertImpact: impacts.AlertQA,
		History:     history,
		HistoryDays: a.cfg.Agent.HistoryDays,
	})
	decision := failDecision(record, violations, severity, reasoning)
	step.Reasoning = reasoning.Reasoning
	a.finish(step, model.StepStatusCompleted)

	a.decide(decision)
	return decision, nil
}

// queryHistory runs the history tool, degrading to an empty window on store
// errors so a flaky store never aborts an inspection.
func (a *Agent) queryHistory(ctx context.Context) *HistoryReport {
	if a.store == nil {
		return emptyHistory()
	}
	report, err := QueryHistory(ctx, a.store, a.cfg.Agent.HistoryDays)
	if err != nil {
		zap.L().Warn("agent: history query failed, using empty window", zap.Error(err))
		return emptyHistory()
	}
	return report
}

func emptyHistory() *HistoryReport {
	return &HistoryReport{
		LastCriticalDate: "None",
		Pattern:          PatternNone,
		Recommendation:   "Continue standard monitoring",
	}
}

func renderViolationSummary(violations []model.Violation, severity model.Severity, quality model.PrintQuality) string {
	summary := "Found " + string(severity) + " violations:"
	for _, v := range violations {
		summary += " " + model.Describe(v, quality) + ";"
	}
	return summary[:len(summary)-1]
}

// begin creates a step from the catalog entry and emits it in running state.
func (a *Agent) begin(id string) model.Step {
	spec := catalogSpec(id)
	step := model.Step{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		NodeType:    spec.NodeType,
		ParentID:    spec.ParentID,
		Status:      model.StepStatusRunning,
		Timestamp:   time.Now().UTC(),
	}
	a.emitStep(step)
	return step
}

// finish emits the step's terminal transition with its measured duration.
func (a *Agent) finish(step model.Step, status model.StepStatus) {
	step.Status = status
	step.Duration = time.Since(step.Timestamp).Milliseconds()
	a.emitStep(step)
}

func (a *Agent) emitStep(step model.Step) {
	if a.cb.OnStep != nil {
		a.cb.OnStep(step)
	}
}

func (a *Agent) decide(decision *model.AgentDecision) {
	if a.cb.OnDecision != nil {
		a.cb.OnDecision(decision)
	}
	zap.L().Info("agent: decision",
		zap.String("status", string(decision.Status)),
		zap.Float64("confidence", decision.Confidence),
		zap.Int("violations", len(decision.Violations)),
	)
}

// pace inserts the configured inter-step delay, used by the demo to make the
// stream watchable. Zero delay is a no-op.
func (a *Agent) pace(ctx context.Context) error {
	if a.cfg.Agent.StepDelayMS <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(a.cfg.Agent.StepDelayMS) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
