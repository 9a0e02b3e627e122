package incident

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lineguard/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLite(filepath.Join(t.TempDir(), "incidents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	inc := testIncident(model.SeverityCritical, model.ActionStopLine)
	inc.EstimatedCost = 15000
	inc.RiskLevel = model.RiskCritical
	inc.Reasoning = "seal overlap"
	inc.Extracted = &model.ExtractedRecord{PlantCode: "37", Positioning: model.PositioningOnMark}

	saved, err := store.Append(ctx, inc)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := store.Query(ctx, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, 42, got[0].BagNumber)
	assert.Equal(t, model.SeverityCritical, got[0].Severity)
	assert.Equal(t, model.ActionStopLine, got[0].Action)
	assert.Equal(t, 15000.0, got[0].EstimatedCost)
	assert.Equal(t, "seal overlap", got[0].Reasoning)
	require.NotNil(t, got[0].Extracted)
	assert.Equal(t, "37", got[0].Extracted.PlantCode)
}

func TestSQLiteStoreQueryOrderAndWindow(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	first, err := store.Append(ctx, testIncident(model.SeverityMinor, model.ActionAlertQA))
	require.NoError(t, err)
	second, err := store.Append(ctx, testIncident(model.SeverityModerate, model.ActionAlertQA))
	require.NoError(t, err)

	got, err := store.Query(ctx, 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	got, err = store.Query(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStoreStatsAndClear(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	_, err := store.Append(ctx, testIncident(model.SeverityCritical, model.ActionStopLine))
	require.NoError(t, err)
	_, err = store.Append(ctx, testIncident(model.SeverityMinor, model.ActionAlertQA))
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Critical)
	assert.Equal(t, 1, stats.StopLine)

	require.NoError(t, store.Clear(ctx))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestSQLiteStoreMigrateIdempotent(t *testing.T) {
	store := newTestSQLite(t)

	// Re-running migrations against an existing schema is a no-op.
	assert.NoError(t, store.Migrate(context.Background()))
}
