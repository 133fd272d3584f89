package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/aqi-service/internal/forest"
	"github.com/sells-group/aqi-service/internal/server"
	"github.com/sells-group/aqi-service/internal/store"
	"github.com/sells-group/aqi-service/internal/train"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// A missing artifact pair is not fatal: the server starts
		// unready and every prediction fails until the operator trains
		// a model and restarts.
		scaler, model := loadArtifacts(cfg.Artifacts.Dir)

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		app := server.NewApp(cfg.Server, scaler, model, st, store.NewCSVLog(cfg.Predictions.CSVPath))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: app.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Bool("model_loaded", app.Ready()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// loadArtifacts loads the persisted scaler and model pair. Either failing
// leaves both nil: the pair is only valid together.
func loadArtifacts(dir string) (*forest.Scaler, *forest.Regressor) {
	scaler, err := forest.LoadScaler(train.ScalerPath(dir))
	if err != nil {
		zap.L().Warn("scaler artifact not loaded; run the train command first", zap.Error(err))
		return nil, nil
	}
	model, err := forest.LoadRegressor(train.ModelPath(dir))
	if err != nil {
		zap.L().Warn("model artifact not loaded; run the train command first", zap.Error(err))
		return nil, nil
	}
	zap.L().Info("model and scaler loaded successfully")
	return scaler, model
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
