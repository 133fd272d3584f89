// Package store persists served predictions: a queryable history store
// (sqlite or postgres) and the append-only CSV prediction log.
package store

import (
	"context"
	"time"

	"github.com/sells-group/aqi-service/internal/aqi"
)

// Prediction is one served prediction: the input reading plus the model
// output and when it was served.
type Prediction struct {
	ID        string      `json:"id"`
	Input     aqi.Reading `json:"input"`
	AQI       float64     `json:"aqi"`
	Category  string      `json:"category"`
	CreatedAt time.Time   `json:"created_at"`
}

// Filter specifies criteria for listing predictions.
type Filter struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Store defines the prediction history persistence interface.
type Store interface {
	InsertPrediction(ctx context.Context, p Prediction) error
	ListPredictions(ctx context.Context, filter Filter) ([]Prediction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
