package incident

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lineguard/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS incidents (
	id          TEXT PRIMARY KEY,
	occurred_at DATETIME NOT NULL,
	bag_number  INTEGER NOT NULL,
	severity    TEXT NOT NULL,
	action      TEXT NOT NULL,
	record      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_incidents_occurred_at ON incidents(occurred_at);
CREATE INDEX IF NOT EXISTS idx_incidents_severity ON incidents(severity);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, inc model.Incident) (*model.Incident, error) {
	inc.ID = uuid.New().String()
	inc.Timestamp = time.Now().UTC()

	recordJSON, err := json.Marshal(inc)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal incident")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO incidents (id, occurred_at, bag_number, severity, action, record) VALUES (?, ?, ?, ?, ?, ?)`,
		inc.ID, inc.Timestamp, inc.BagNumber, string(inc.Severity), string(inc.Action), string(recordJSON),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert incident")
	}

	return &inc, nil
}

func (s *SQLiteStore) Query(ctx context.Context, daysBack int) ([]model.Incident, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM incidents WHERE occurred_at >= ? ORDER BY occurred_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query incidents")
	}
	defer rows.Close()

	var out []model.Incident
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan incident")
		}
		var inc model.Incident
		if err := json.Unmarshal([]byte(record), &inc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal incident")
		}
		out = append(out, inc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate incidents")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.IncidentStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM incidents`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query stats")
	}
	defer rows.Close()

	stats := &model.IncidentStats{}
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stats")
		}
		var inc model.Incident
		if err := json.Unmarshal([]byte(record), &inc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
		tally(stats, inc)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: iterate stats")
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM incidents`)
	return eris.Wrap(err, "sqlite: clear incidents")
}
