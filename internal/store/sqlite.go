package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
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
CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	pm25        REAL NOT NULL,
	pm10        REAL NOT NULL,
	no2         REAL NOT NULL,
	so2         REAL NOT NULL,
	co          REAL NOT NULL,
	o3          REAL NOT NULL,
	temperature REAL NOT NULL,
	humidity    REAL NOT NULL,
	aqi         REAL NOT NULL,
	category    TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
CREATE INDEX IF NOT EXISTS idx_predictions_category ON predictions(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertPrediction(ctx context.Context, p Prediction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, pm25, pm10, no2, so2, co, o3, temperature, humidity, aqi, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Input.PM25, p.Input.PM10, p.Input.NO2, p.Input.SO2, p.Input.CO, p.Input.O3,
		p.Input.Temperature, p.Input.Humidity, p.AQI, p.Category, p.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert prediction %s", p.ID)
}

func (s *SQLiteStore) ListPredictions(ctx context.Context, filter Filter) ([]Prediction, error) {
	query := `SELECT id, pm25, pm10, no2, so2, co, o3, temperature, humidity, aqi, category, created_at
	          FROM predictions`
	args := []any{}
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list predictions")
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(
			&p.ID, &p.Input.PM25, &p.Input.PM10, &p.Input.NO2, &p.Input.SO2,
			&p.Input.CO, &p.Input.O3, &p.Input.Temperature, &p.Input.Humidity,
			&p.AQI, &p.Category, &p.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prediction")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate predictions")
}
