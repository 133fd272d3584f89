package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aqi-service/internal/aqi"
	"github.com/sells-group/aqi-service/internal/config"
	"github.com/sells-group/aqi-service/internal/forest"
	"github.com/sells-group/aqi-service/internal/store"
	"github.com/sells-group/aqi-service/internal/synth"
)

var validBody = map[string]any{
	"pm25": 8.5, "pm10": 15.2, "no2": 12.3, "so2": 2.1,
	"co": 0.4, "o3": 45.2, "temperature": 22.5, "humidity": 55.0,
}

func serverConfig() config.ServerConfig {
	return config.ServerConfig{Port: 0, CORSOrigins: []string{"*"}}
}

// identityScaler passes features through unchanged.
func identityScaler() *forest.Scaler {
	s := &forest.Scaler{
		Features: aqi.FeatureNames,
		Means:    make([]float64, aqi.NumFeatures),
		Stddevs:  make([]float64, aqi.NumFeatures),
	}
	for i := range s.Stddevs {
		s.Stddevs[i] = 1
	}
	return s
}

// stubModel loads a handcrafted single-leaf model artifact that always
// predicts value, exercising the same artifact format the trainer writes.
func stubModel(t *testing.T, value float64) *forest.Regressor {
	t.Helper()
	features, err := json.Marshal(aqi.FeatureNames)
	require.NoError(t, err)
	blob := fmt.Sprintf(`{"features":%s,"trees":[{"nodes":[{"f":-1,"v":%g}]}],"max_depth":1}`, features, value)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	m, err := forest.LoadRegressor(path)
	require.NoError(t, err)
	return m
}

// trainedApp fits a small real forest on synthetic data.
func trainedApp(t *testing.T) *App {
	t.Helper()
	ds := synth.Generate(600, 42)

	scaler, err := forest.FitScaler(ds.Features, aqi.FeatureNames)
	require.NoError(t, err)
	scaled, err := scaler.TransformAll(ds.Features)
	require.NoError(t, err)
	model, err := forest.Fit(scaled, ds.Labels, aqi.FeatureNames, forest.Config{Trees: 10, MaxDepth: 10, Seed: 42})
	require.NoError(t, err)

	return NewApp(serverConfig(), scaler, model, nil, nil)
}

func doRequest(app *App, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	app.Router().ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestPredict_Unready(t *testing.T) {
	app := NewApp(serverConfig(), nil, nil, nil, nil)
	rr := doRequest(app, http.MethodPost, "/api/predict", validBody)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, msgModelNotLoaded, errorMessage(t, rr))
}

func TestPredict_Validation(t *testing.T) {
	app := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), nil, nil)

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		wantMsg string
	}{
		{"missing field", func(m map[string]any) { delete(m, "co") }, "Missing required parameter: co"},
		{"non-numeric", func(m map[string]any) { m["pm25"] = "abc" }, "Invalid value for pm25: must be a number"},
		{"null value", func(m map[string]any) { m["o3"] = nil }, "Invalid value for o3: must be a number"},
		{"negative", func(m map[string]any) { m["so2"] = -1 }, "Invalid value for so2: must be non-negative"},
		{"negative temperature", func(m map[string]any) { m["temperature"] = -5 }, "Invalid value for temperature: must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{}
			for k, v := range validBody {
				body[k] = v
			}
			tt.mutate(body)

			rr := doRequest(app, http.MethodPost, "/api/predict", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rr))
		})
	}
}

func TestPredict_EmptyBody(t *testing.T) {
	app := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(nil))
	rr := httptest.NewRecorder()
	app.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgNoData, errorMessage(t, rr))
}

func TestPredict_NumericStringCoerced(t *testing.T) {
	app := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), nil, nil)

	body := map[string]any{}
	for k, v := range validBody {
		body[k] = v
	}
	body["pm25"] = "8.5"

	rr := doRequest(app, http.MethodPost, "/api/predict", body)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPredict_ClampsModelOutput(t *testing.T) {
	tests := []struct {
		raw     float64
		wantAQI float64
		wantCat string
	}{
		{-10, 0, "Good"},
		{9999, 500, "Hazardous"},
	}
	for _, tt := range tests {
		app := NewApp(serverConfig(), identityScaler(), stubModel(t, tt.raw), nil, nil)
		rr := doRequest(app, http.MethodPost, "/api/predict", validBody)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp predictResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, tt.wantAQI, resp.AQI)
		assert.Equal(t, tt.wantCat, resp.Category)
	}
}

func TestPredict_InternalFault(t *testing.T) {
	// A scaler whose width disagrees with the model surfaces as the
	// generic 500, never a raw error.
	badScaler := &forest.Scaler{
		Features: aqi.FeatureNames[:7],
		Means:    make([]float64, 7),
		Stddevs:  []float64{1, 1, 1, 1, 1, 1, 1},
	}
	app := NewApp(serverConfig(), badScaler, stubModel(t, 42), nil, nil)

	rr := doRequest(app, http.MethodPost, "/api/predict", validBody)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, msgPredictionError, errorMessage(t, rr))
}

func TestPredict_EndToEnd(t *testing.T) {
	app := trainedApp(t)

	rr := doRequest(app, http.MethodPost, "/api/predict", validBody)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp predictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// The formula AQI for this reading is dominated by O3 (45.2 * 1.5);
	// a model trained on formula labels should land near it.
	formula := aqi.Compute(8.5, 15.2, 12.3, 2.1, 0.4, 45.2)
	assert.InDelta(t, formula, resp.AQI, 30)
	assert.Equal(t, aqi.Classify(resp.AQI).Label, resp.Category)
	assert.Equal(t, aqi.Classify(resp.AQI).Color, resp.Color)

	assert.Equal(t, 8.5, resp.InputData.PM25)
	assert.Equal(t, 55.0, resp.InputData.Humidity)
}

func TestPredict_LogsToSinks(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "log.csv")

	st, err := store.NewSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	defer st.Close()

	app := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), st, store.NewCSVLog(csvPath))

	const n = 3
	for i := 0; i < n; i++ {
		rr := doRequest(app, http.MethodPost, "/api/predict", validBody)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, n+1, "header plus one row per prediction")

	preds, err := st.ListPredictions(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Len(t, preds, n)
}

func TestPredict_LogFailureDoesNotFailRequest(t *testing.T) {
	// Point the CSV log at an unwritable path; the prediction must still
	// succeed.
	app := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), nil,
		store.NewCSVLog(filepath.Join(t.TempDir(), "missing-dir", "log.csv")))

	rr := doRequest(app, http.MethodPost, "/api/predict", validBody)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealth(t *testing.T) {
	ready := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), nil, nil)
	rr := doRequest(ready, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "loaded", body["model_status"])

	unready := NewApp(serverConfig(), nil, nil, nil, nil)
	rr = doRequest(unready, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "not loaded", body["model_status"])
}

func TestSampleData(t *testing.T) {
	app := NewApp(serverConfig(), nil, nil, nil, nil)
	rr := doRequest(app, http.MethodGet, "/api/sample-data", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var samples []samplePayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &samples))
	require.Len(t, samples, 4)
	assert.Equal(t, "Good Air Quality", samples[0].Name)
	assert.Equal(t, 8.5, samples[0].Data.PM25)
	assert.Equal(t, "Very Unhealthy Air Quality", samples[3].Name)
}

func TestListPredictions(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	defer st.Close()

	app := NewApp(serverConfig(), identityScaler(), stubModel(t, 42), st, nil)

	rr := doRequest(app, http.MethodPost, "/api/predict", validBody)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(app, http.MethodGet, "/api/predictions", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var preds []store.Prediction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &preds))
	require.Len(t, preds, 1)
	assert.Equal(t, 42.0, preds[0].AQI)

	rr = doRequest(app, http.MethodGet, "/api/predictions?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNotFound(t *testing.T) {
	app := NewApp(serverConfig(), nil, nil, nil, nil)
	rr := doRequest(app, http.MethodGet, "/api/nope", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Endpoint not found", errorMessage(t, rr))
}

func TestStaticFileServing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>aqi</html>"), 0o644))

	cfg := serverConfig()
	cfg.StaticDir = dir
	app := NewApp(cfg, nil, nil, nil, nil)

	rr := doRequest(app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "aqi")

	// API namespace still 404s as JSON even with a static dir.
	rr = doRequest(app, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Endpoint not found", errorMessage(t, rr))

	rr = doRequest(app, http.MethodGet, "/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
