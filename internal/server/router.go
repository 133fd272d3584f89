package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router builds the chi router with CORS, panic recovery, the API routes,
// and optional static UI serving.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/api/predict", a.handlePredict)
	r.Get("/api/sample-data", a.handleSampleData)
	r.Get("/api/health", a.handleHealth)
	r.Get("/api/predictions", a.handleListPredictions)

	r.NotFound(a.handleNotFound)

	return r
}

// handleNotFound serves a static file when a UI directory is configured
// and the request is outside the API namespace; everything else gets the
// JSON 404.
func (a *App) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if a.cfg.StaticDir != "" && r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/api/") {
		if path, ok := a.staticFile(r.URL.Path); ok {
			http.ServeFile(w, r, path)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Endpoint not found")
}

// staticFile resolves a request path inside the static dir, falling back
// to index.html for the root. Paths escaping the dir are rejected.
func (a *App) staticFile(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(filepath.Clean("/"+urlPath), "/")
	if rel == "" || rel == "." {
		rel = "index.html"
	}
	path := filepath.Join(a.cfg.StaticDir, rel)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// recoverer converts handler panics into the generic JSON 500 so internal
// faults never leak to the caller.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
