package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/aqi-service/internal/aqi"
	"github.com/sells-group/aqi-service/internal/store"
)

const (
	msgModelNotLoaded  = "Model not loaded. Please ensure model files exist and restart the server."
	msgNoData          = "No data provided"
	msgPredictionError = "An error occurred during prediction"
)

// inputData echoes the validated reading back under display names.
type inputData struct {
	PM25        float64 `json:"PM2.5"`
	PM10        float64 `json:"PM10"`
	NO2         float64 `json:"NO2"`
	SO2         float64 `json:"SO2"`
	CO          float64 `json:"CO"`
	O3          float64 `json:"O3"`
	Temperature float64 `json:"Temperature"`
	Humidity    float64 `json:"Humidity"`
}

type predictResponse struct {
	AQI       float64   `json:"aqi"`
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	InputData inputData `json:"input_data"`
}

func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !a.Ready() {
		writeError(w, http.StatusInternalServerError, msgModelNotLoaded)
		return
	}

	// An absent, empty, or malformed body all count as "no data".
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	reading, verr := parseReading(body)
	if verr != nil {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}

	scaled, err := a.scaler.Transform(reading.Vector())
	if err != nil {
		zap.L().Error("scaling failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgPredictionError)
		return
	}
	raw, err := a.model.Predict(scaled)
	if err != nil {
		zap.L().Error("prediction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgPredictionError)
		return
	}

	score := math.Round(aqi.Clamp(raw)*10) / 10
	cat := aqi.Classify(score)

	zap.L().Info("prediction made",
		zap.Float64("aqi", score),
		zap.String("category", cat.Label),
	)
	a.logPrediction(r, reading, score, cat)

	writeJSON(w, http.StatusOK, predictResponse{
		AQI:      score,
		Category: cat.Label,
		Color:    cat.Color,
		InputData: inputData{
			PM25:        reading.PM25,
			PM10:        reading.PM10,
			NO2:         reading.NO2,
			SO2:         reading.SO2,
			CO:          reading.CO,
			O3:          reading.O3,
			Temperature: reading.Temperature,
			Humidity:    reading.Humidity,
		},
	})
}

// logPrediction appends to the CSV log and the history store. Failures
// are logged and swallowed: the prediction already succeeded, and sink
// trouble should not turn into an API error for the caller.
func (a *App) logPrediction(r *http.Request, reading aqi.Reading, score float64, cat aqi.Category) {
	p := store.Prediction{
		ID:        uuid.New().String(),
		Input:     reading,
		AQI:       score,
		Category:  cat.Label,
		CreatedAt: a.now().UTC(),
	}
	if a.csvLog != nil {
		if err := a.csvLog.Append(p); err != nil {
			zap.L().Error("prediction log append failed", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.InsertPrediction(r.Context(), p); err != nil {
			zap.L().Error("prediction store insert failed", zap.Error(err))
		}
	}
}

// samplePayload is one named example reading for UI prefill.
type samplePayload struct {
	Name string      `json:"name"`
	Data aqi.Reading `json:"data"`
}

var samplePayloads = []samplePayload{
	{"Good Air Quality", aqi.Reading{PM25: 8.5, PM10: 15.2, NO2: 12.3, SO2: 2.1, CO: 0.4, O3: 45.2, Temperature: 22.5, Humidity: 55.0}},
	{"Moderate Air Quality", aqi.Reading{PM25: 25.4, PM10: 45.8, NO2: 35.6, SO2: 8.2, CO: 1.2, O3: 85.3, Temperature: 28.1, Humidity: 68.5}},
	{"Unhealthy Air Quality", aqi.Reading{PM25: 95.6, PM10: 155.2, NO2: 75.4, SO2: 25.1, CO: 8.5, O3: 145.8, Temperature: 35.2, Humidity: 45.3}},
	{"Very Unhealthy Air Quality", aqi.Reading{PM25: 185.3, PM10: 285.7, NO2: 125.8, SO2: 45.6, CO: 15.2, O3: 205.4, Temperature: 38.7, Humidity: 35.8}},
}

func (a *App) handleSampleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, samplePayloads)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	modelStatus := "not loaded"
	if a.Ready() {
		modelStatus = "loaded"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "healthy",
		"model_status": modelStatus,
	})
}

func (a *App) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusInternalServerError, "Prediction history is not configured")
		return
	}

	filter := store.Filter{Category: r.URL.Query().Get("category")}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid value for limit: must be a positive integer")
			return
		}
		filter.Limit = n
	}

	preds, err := a.store.ListPredictions(r.Context(), filter)
	if err != nil {
		zap.L().Error("list predictions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if preds == nil {
		preds = []store.Prediction{}
	}
	writeJSON(w, http.StatusOK, preds)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
