package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
	"github.com/m-mizutani/metgate/pkg/domain/model"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as Unix nanoseconds so that SQL comparison and
// ordering always agree with time order, down to sub-second precision.
const schema = `
CREATE TABLE IF NOT EXISTS forecast_snapshots (
    id            TEXT PRIMARY KEY,
    forecast_type TEXT NOT NULL,
    latitude      REAL NOT NULL,
    longitude     REAL NOT NULL,
    retrieved_at  INTEGER NOT NULL,
    payload       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_type_time
    ON forecast_snapshots(forecast_type, retrieved_at);

CREATE TABLE IF NOT EXISTS gate_runs (
    id           TEXT PRIMARY KEY,
    owner        TEXT NOT NULL,
    repo         TEXT NOT NULL,
    commit_sha   TEXT NOT NULL,
    prev_version TEXT NOT NULL,
    curr_version TEXT NOT NULL,
    released     INTEGER NOT NULL,
    tag          TEXT NOT NULL,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gate_runs_time ON gate_runs(created_at);
`

// Store implements interfaces.Store on SQLite via the pure-Go driver
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies the schema
func New(path string) (interfaces.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database",
			goerr.V("path", path))
	}

	// WAL keeps concurrent poller writes from blocking readers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to enable WAL mode")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to apply schema")
	}

	return &Store{db: db}, nil
}

// SaveSnapshot stores a fetched forecast response
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *model.ForecastSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forecast_snapshots(id, forecast_type, latitude, longitude, retrieved_at, payload)
         VALUES(?,?,?,?,?,?)`,
		snapshot.ID,
		string(snapshot.Type),
		snapshot.Latitude,
		snapshot.Longitude,
		snapshot.RetrievedAt.UnixNano(),
		snapshot.Payload,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert forecast snapshot")
	}
	return nil
}

// LatestSnapshot returns the newest snapshot for the given forecast type
func (s *Store) LatestSnapshot(ctx context.Context, forecastType model.ForecastType) (*model.ForecastSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, forecast_type, latitude, longitude, retrieved_at, payload
         FROM forecast_snapshots
         WHERE forecast_type = ?
         ORDER BY retrieved_at DESC LIMIT 1`,
		string(forecastType),
	)

	var snap model.ForecastSnapshot
	var ft string
	var retrievedAt int64
	if err := row.Scan(&snap.ID, &ft, &snap.Latitude, &snap.Longitude, &retrievedAt, &snap.Payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrNoSnapshot
		}
		return nil, goerr.Wrap(err, "failed to query latest snapshot")
	}

	snap.Type = model.ForecastType(ft)
	snap.RetrievedAt = time.Unix(0, retrievedAt).UTC()

	return &snap, nil
}

// PruneSnapshots removes snapshots retrieved before the cutoff
func (s *Store) PruneSnapshots(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM forecast_snapshots WHERE retrieved_at < ?`,
		before.UnixNano(),
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prune snapshots")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count pruned snapshots")
	}
	return n, nil
}

// SaveGateRun appends a gate run audit record
func (s *Store) SaveGateRun(ctx context.Context, run *model.GateRun) error {
	released := 0
	if run.Released {
		released = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gate_runs(id, owner, repo, commit_sha, prev_version, curr_version, released, tag, created_at)
         VALUES(?,?,?,?,?,?,?,?,?)`,
		run.ID,
		run.Owner,
		run.Repo,
		run.CommitSHA,
		run.PrevVersion,
		run.CurrVersion,
		released,
		run.Tag,
		run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert gate run")
	}
	return nil
}

// ListGateRuns returns the newest gate runs, most recent first
func (s *Store) ListGateRuns(ctx context.Context, limit int) ([]*model.GateRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, repo, commit_sha, prev_version, curr_version, released, tag, created_at
         FROM gate_runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query gate runs")
	}
	defer rows.Close()

	var runs []*model.GateRun
	for rows.Next() {
		var run model.GateRun
		var released int
		var createdAt int64
		if err := rows.Scan(&run.ID, &run.Owner, &run.Repo, &run.CommitSHA,
			&run.PrevVersion, &run.CurrVersion, &released, &run.Tag, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan gate run")
		}
		run.Released = released != 0
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate gate runs")
	}

	return runs, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
