package readings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const createReadingsTable = `
CREATE TABLE IF NOT EXISTS readings (
	ts           INTEGER PRIMARY KEY,
	irradiance   REAL NOT NULL,
	cell_temp    REAL NOT NULL,
	ambient_temp REAL NOT NULL,
	demand       REAL NOT NULL
)`

const upsertReading = `
INSERT INTO readings (ts, irradiance, cell_temp, ambient_temp, demand)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(ts) DO UPDATE SET
	irradiance = excluded.irradiance,
	cell_temp = excluded.cell_temp,
	ambient_temp = excluded.ambient_temp,
	demand = excluded.demand`

// SQLiteStore keeps readings in a local SQLite database. Timestamps are
// stored as Unix seconds of the Minute-normalised wall clock.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	logger *zap.SugaredLogger
}

// OpenSQLite opens (creating if needed) the database at dbPath and ensures
// the schema exists.
func OpenSQLite(dbPath string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the readings table if it does not exist
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createReadingsTable); err != nil {
		return fmt.Errorf("failed to create readings table: %w", err)
	}
	return nil
}

// Insert upserts readings in a single transaction and returns how many were
// written.
func (s *SQLiteStore) Insert(ctx context.Context, rs ...Reading) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertReading)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, Minute(r.Time).Unix(), r.Irradiance, r.CellTemperature, r.AmbientTemperature, r.Demand); err != nil {
			return 0, fmt.Errorf("failed to insert reading at %s: %w", r.Time.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit readings: %w", err)
	}
	if s.logger != nil {
		s.logger.Debugf("stored %d readings in %s", len(rs), s.dbPath)
	}
	return len(rs), nil
}

// At implements Source
func (s *SQLiteStore) At(ctx context.Context, t time.Time) (Reading, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ts, irradiance, cell_temp, ambient_temp, demand FROM readings WHERE ts = ?`,
		Minute(t).Unix())

	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Reading{}, fmt.Errorf("%s: %w", Minute(t).Format(CSVTimeLayout), ErrNoReading)
	}
	if err != nil {
		return Reading{}, fmt.Errorf("failed to query reading: %w", err)
	}
	return r, nil
}

// Day implements Source
func (s *SQLiteStore) Day(ctx context.Context, day time.Time) ([]Reading, error) {
	start, end := dayBounds(day)
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, irradiance, cell_temp, ambient_temp, demand FROM readings WHERE ts >= ? AND ts < ? ORDER BY ts`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored readings
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(sc scanner) (Reading, error) {
	var ts int64
	var r Reading
	if err := sc.Scan(&ts, &r.Irradiance, &r.CellTemperature, &r.AmbientTemperature, &r.Demand); err != nil {
		return Reading{}, err
	}
	r.Time = time.Unix(ts, 0).UTC()
	return r, nil
}
