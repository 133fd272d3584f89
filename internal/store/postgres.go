package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
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
CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	pm25        DOUBLE PRECISION NOT NULL,
	pm10        DOUBLE PRECISION NOT NULL,
	no2         DOUBLE PRECISION NOT NULL,
	so2         DOUBLE PRECISION NOT NULL,
	co          DOUBLE PRECISION NOT NULL,
	o3          DOUBLE PRECISION NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	humidity    DOUBLE PRECISION NOT NULL,
	aqi         DOUBLE PRECISION NOT NULL,
	category    TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
CREATE INDEX IF NOT EXISTS idx_predictions_category ON predictions(category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) InsertPrediction(ctx context.Context, p Prediction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO predictions (id, pm25, pm10, no2, so2, co, o3, temperature, humidity, aqi, category, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Input.PM25, p.Input.PM10, p.Input.NO2, p.Input.SO2, p.Input.CO, p.Input.O3,
		p.Input.Temperature, p.Input.Humidity, p.AQI, p.Category, p.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert prediction %s", p.ID)
}

func (s *PostgresStore) ListPredictions(ctx context.Context, filter Filter) ([]Prediction, error) {
	query := `SELECT id, pm25, pm10, no2, so2, co, o3, temperature, humidity, aqi, category, created_at
	          FROM predictions`
	args := []any{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` WHERE category = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list predictions")
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
			return nil, eris.Wrap(err, "postgres: scan prediction")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate predictions")
}
