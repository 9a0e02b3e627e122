// Package incident owns the violation history consumed by the agent's
// history tool. The store is append-only from the caller's perspective:
// records are added after a fail decision, read back by a trailing
// day-count window, and removed only by an explicit operator clear.
package incident

import (
	"context"

	"github.com/sells-group/lineguard/internal/model"
)

// Store defines the persistence interface for incidents.
type Store interface {
	// Append persists a new incident, assigning its ID and timestamp.
	Append(ctx context.Context, inc model.Incident) (*model.Incident, error)
	// Query returns incidents newer than daysBack days, oldest first.
	Query(ctx context.Context, daysBack int) ([]model.Incident, error)
	// Stats aggregates the whole store by severity and action.
	Stats(ctx context.Context) (*model.IncidentStats, error)
	// Clear removes every incident. Operator action only.
	Clear(ctx context.Context) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func tally(stats *model.IncidentStats, inc model.Incident) {
	stats.Total++
	switch inc.Severity {
	case model.SeverityCritical:
		stats.Critical++
	case model.SeverityModerate:
		stats.Moderate++
	case model.SeverityMinor:
		stats.Minor++
	}
	switch inc.Action {
	case model.ActionStopLine:
		stats.StopLine++
	case model.ActionAlertQA:
		stats.AlertQA++
	case model.ActionHoldBatch:
		stats.HoldBatch++
	}
}
