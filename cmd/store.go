package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/incident"
	"github.com/sells-group/lineguard/internal/model"
)

// openStore builds the incident store named by config and runs migrations.
func openStore(ctx context.Context) (incident.Store, error) {
	var (
		store incident.Store
		err   error
	)

	switch cfg.Store.Driver {
	case "memory":
		store = incident.NewMemory()
	case "sqlite":
		store, err = incident.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		store, err = incident.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	zap.L().Debug("incident store ready", zap.String("driver", cfg.Store.Driver))
	return store, nil
}

// persistIfFailed appends the incident record for a fail decision. The agent
// never persists on its own; the caller owns the store write so the incident
// carries the final chosen action and cost.
func persistIfFailed(ctx context.Context, store incident.Store, decision *model.AgentDecision, bagNumber int) {
	if decision == nil || decision.Status != model.DecisionFail {
		return
	}

	saved, err := store.Append(ctx, model.IncidentFromDecision(decision, bagNumber))
	if err != nil {
		zap.L().Error("persist incident failed",
			zap.Int("bag_number", bagNumber),
			zap.Error(err),
		)
		return
	}
	zap.L().Info("incident recorded",
		zap.String("incident_id", saved.ID),
		zap.Int("bag_number", bagNumber),
		zap.String("severity", string(saved.Severity)),
		zap.String("action", string(saved.Action)),
	)
}
