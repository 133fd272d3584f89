// Package server implements the prediction HTTP API.
package server

import (
	"time"

	"github.com/sells-group/aqi-service/internal/config"
	"github.com/sells-group/aqi-service/internal/forest"
	"github.com/sells-group/aqi-service/internal/store"
)

// App holds the serving state: the immutable-after-load artifact pair,
// the prediction sinks, and server config. A nil scaler or model leaves
// the app in the unready state where predictions fail until the process
// is restarted with artifacts present.
type App struct {
	cfg    config.ServerConfig
	scaler *forest.Scaler
	model  *forest.Regressor
	store  store.Store
	csvLog *store.CSVLog
	now    func() time.Time
}

// NewApp builds the serving state. scaler and model may be nil when the
// artifacts failed to load; st may be nil when no history store is
// configured.
func NewApp(cfg config.ServerConfig, scaler *forest.Scaler, model *forest.Regressor, st store.Store, csvLog *store.CSVLog) *App {
	return &App{
		cfg:    cfg,
		scaler: scaler,
		model:  model,
		store:  st,
		csvLog: csvLog,
		now:    time.Now,
	}
}

// Ready reports whether both artifacts are loaded.
func (a *App) Ready() bool {
	return a.scaler != nil && a.model != nil
}
