package incident

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lineguard/internal/model"
)

func newTestPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStoreMigrate(t *testing.T) {
	store, mock := newTestPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS incidents").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppend(t *testing.T) {
	store, mock := newTestPostgres(t)

	mock.ExpectExec("INSERT INTO incidents").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 42, "critical", "stop_line", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := store.Append(context.Background(), testIncident(model.SeverityCritical, model.ActionStopLine))
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreQuery(t *testing.T) {
	store, mock := newTestPostgres(t)

	inc := testIncident(model.SeverityModerate, model.ActionAlertQA)
	inc.ID = "inc-1"
	record, err := json.Marshal(inc)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT record FROM incidents WHERE occurred_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(record))

	got, err := store.Query(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inc-1", got[0].ID)
	assert.Equal(t, model.SeverityModerate, got[0].Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreStats(t *testing.T) {
	store, mock := newTestPostgres(t)

	critical, err := json.Marshal(testIncident(model.SeverityCritical, model.ActionStopLine))
	require.NoError(t, err)
	minor, err := json.Marshal(testIncident(model.SeverityMinor, model.ActionAlertQA))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT record FROM incidents").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(critical).AddRow(minor))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Critical)
	assert.Equal(t, 1, stats.Minor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreClear(t *testing.T) {
	store, mock := newTestPostgres(t)

	mock.ExpectExec("DELETE FROM incidents").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
