package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/lineguard/internal/incident"
	"github.com/sells-group/lineguard/internal/model"
)

// Business rates used by the impact estimator. Costs are USD; the line stop
// rate is per hour.
const (
	lineStopCost      = 15000.0
	qaAlertCost       = 50.0
	holdBatchFraction = 0.25
	violationFineRisk = 50000.0
)

// plantNames maps PMO plant codes to site labels. Unknown codes get a
// placeholder label, never an error.
var plantNames = map[string]string{
	"13": "Killingly, CT",
	"37": "Frankfort, IN",
	"87": "Casa Grande, AZ",
	"92": "Perry, GA",
}

// usd renders dollar amounts with digit grouping.
var usd = message.NewPrinter(language.AmericanEnglish)

// EstimateImpact is the business impact tool: a deterministic lookup of the
// cost and risk of taking an action at the given severity. Pure function;
// identical inputs always yield identical output.
func EstimateImpact(action model.Action, severity model.Severity, plantCode string) model.BusinessImpact {
	impact := model.BusinessImpact{}

	switch action {
	case model.ActionStopLine:
		impact.EstimatedCost = lineStopCost
		impact.RiskLevel = model.RiskHigh
		if severity == model.SeverityCritical {
			impact.RiskLevel = model.RiskCritical
		}
		impact.Recommendation = usd.Sprintf("Line stop costs $%.0f/hr but prevents potential $%.0f fine", lineStopCost, violationFineRisk)
	case model.ActionAlertQA:
		impact.EstimatedCost = qaAlertCost
		impact.RiskLevel = model.RiskMedium
		if severity == model.SeverityCritical {
			impact.RiskLevel = model.RiskHigh
		}
		impact.Recommendation = usd.Sprintf("QA alert is cost-effective at $%.0f, suitable for non-critical issues", qaAlertCost)
	case model.ActionHoldBatch:
		impact.EstimatedCost = lineStopCost * holdBatchFraction
		impact.RiskLevel = model.RiskMedium
		impact.Recommendation = "Batch hold balances cost vs risk for moderate violations"
	default:
		impact.EstimatedCost = 0
		impact.RiskLevel = model.RiskLow
		impact.Recommendation = "No action needed, product meets standards"
	}

	name, ok := plantNames[plantCode]
	if !ok {
		name = "Unknown Plant"
	}
	impact.PlantInfo = fmt.Sprintf("%s (Code: %s)", name, plantCode)

	return impact
}

// HistoryReport is the output of the incident history tool.
type HistoryReport struct {
	TotalIncidents   int               `json:"total_incidents"`
	RecentCritical   int               `json:"recent_critical"`
	Pattern          string            `json:"pattern"`
	LastCriticalDate string            `json:"last_critical_date"`
	Recommendation   string            `json:"recommendation"`
	Incidents        []IncidentSummary `json:"incidents"`
}

// IncidentSummary is a compact view of one past incident.
type IncidentSummary struct {
	Date     time.Time      `json:"date"`
	Type     string         `json:"type"`
	Action   model.Action   `json:"action"`
	Severity model.Severity `json:"severity"`
}

// Qualitative history pattern labels.
const (
	PatternRecurringCritical  = "recurring critical"
	PatternOccasionalCritical = "occasional critical"
	PatternMultipleMinor      = "multiple minor - monitor"
	PatternNone               = "no pattern"
)

// QueryHistory reads the incident store over a trailing day window and
// summarizes counts, the qualitative pattern, and the most recent critical.
// Read-only; never mutates the store.
func QueryHistory(ctx context.Context, store incident.Store, daysBack int) (*HistoryReport, error) {
	incidents, err := store.Query(ctx, daysBack)
	if err != nil {
		return nil, err
	}

	report := &HistoryReport{
		TotalIncidents:   len(incidents),
		LastCriticalDate: "None",
	}

	var lastCritical *model.Incident
	for i := range incidents {
		if incidents[i].Severity == model.SeverityCritical {
			report.RecentCritical++
			lastCritical = &incidents[i]
		}
	}
	if lastCritical != nil {
		report.LastCriticalDate = lastCritical.Timestamp.Format(time.RFC3339)
	}

	switch {
	case report.RecentCritical > 2:
		report.Pattern = PatternRecurringCritical
	case report.RecentCritical > 0:
		report.Pattern = PatternOccasionalCritical
	case report.TotalIncidents > 5:
		report.Pattern = PatternMultipleMinor
	default:
		report.Pattern = PatternNone
	}

	if report.RecentCritical > 1 {
		report.Recommendation = "Multiple critical violations - recommend line maintenance check"
	} else {
		report.Recommendation = "Continue standard monitoring"
	}

	// Up to the 5 most recent incidents, newest last.
	start := len(incidents) - 5
	if start < 0 {
		start = 0
	}
	for _, inc := range incidents[start:] {
		types := make([]string, 0, len(inc.Violations))
		for _, v := range inc.Violations {
			types = append(types, string(v))
		}
		report.Incidents = append(report.Incidents, IncidentSummary{
			Date:     inc.Timestamp,
			Type:     strings.Join(types, ", "),
			Action:   inc.Action,
			Severity: inc.Severity,
		})
	}

	return report, nil
}

// LogAck acknowledges a violation log-intent entry. Logging happens before
// the action is decided; the caller persists the full incident record after
// the final decision, once the chosen action and cost are known. The two
// phases are deliberately separate.
type LogAck struct {
	Success   bool      `json:"success"`
	LogID     string    `json:"log_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
}

// LogViolation is the violation logger tool. It synthesizes a log id and
// returns an acknowledgment; it does not itself persist anything.
func LogViolation(violation model.Violation, severity model.Severity, bagNumber int) LogAck {
	now := time.Now().UTC()
	ack := LogAck{
		Success:   true,
		LogID:     fmt.Sprintf("LOG-%d", now.UnixMilli()),
		Timestamp: now,
		Message:   fmt.Sprintf("Logged to QMS: %s (%s)", violation, severity),
		Database:  "LineGuard-QMS-Production",
	}
	zap.L().Debug("tools: violation logged",
		zap.String("log_id", ack.LogID),
		zap.String("violation", string(violation)),
		zap.String("severity", string(severity)),
		zap.Int("bag_number", bagNumber),
	)
	return ack
}
