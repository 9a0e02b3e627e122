package incident

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lineguard/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS incidents (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	bag_number  INTEGER NOT NULL,
	severity    TEXT NOT NULL,
	action      TEXT NOT NULL,
	record      JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_incidents_occurred_at ON incidents(occurred_at);
CREATE INDEX IF NOT EXISTS idx_incidents_severity ON incidents(severity);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, inc model.Incident) (*model.Incident, error) {
	inc.ID = uuid.New().String()
	inc.Timestamp = time.Now().UTC()

	recordJSON, err := json.Marshal(inc)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal incident")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO incidents (id, occurred_at, bag_number, severity, action, record) VALUES ($1, $2, $3, $4, $5, $6)`,
		inc.ID, inc.Timestamp, inc.BagNumber, string(inc.Severity), string(inc.Action), recordJSON,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert incident")
	}

	return &inc, nil
}

func (s *PostgresStore) Query(ctx context.Context, daysBack int) ([]model.Incident, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	rows, err := s.pool.Query(ctx,
		`SELECT record FROM incidents WHERE occurred_at >= $1 ORDER BY occurred_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query incidents")
	}
	defer rows.Close()

	var out []model.Incident
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "postgres: scan incident")
		}
		var inc model.Incident
		if err := json.Unmarshal(record, &inc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal incident")
		}
		out = append(out, inc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate incidents")
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.IncidentStats, error) {
	rows, err := s.pool.Query(ctx, `SELECT record FROM incidents`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query stats")
	}
	defer rows.Close()

	stats := &model.IncidentStats{}
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stats")
		}
		var inc model.Incident
		if err := json.Unmarshal(record, &inc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal stats")
		}
		tally(stats, inc)
	}
	return stats, eris.Wrap(rows.Err(), "postgres: iterate stats")
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM incidents`)
	return eris.Wrap(err, "postgres: clear incidents")
}
