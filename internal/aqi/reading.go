package aqi

// FeatureNames is the fixed column order shared by the synthesizer, the
// scaler/model artifacts, and the prediction API. Changing the order
// invalidates any persisted model.
var FeatureNames = []string{"PM2.5", "PM10", "NO2", "SO2", "CO", "O3", "Temperature", "Humidity"}

// NumFeatures is the width of a feature vector.
const NumFeatures = 8

// Reading is a single observation of the six pollutants plus weather.
type Reading struct {
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	NO2         float64 `json:"no2"`
	SO2         float64 `json:"so2"`
	CO          float64 `json:"co"`
	O3          float64 `json:"o3"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Vector returns the reading as a feature vector in FeatureNames order.
func (r Reading) Vector() []float64 {
	return []float64{r.PM25, r.PM10, r.NO2, r.SO2, r.CO, r.O3, r.Temperature, r.Humidity}
}

// AQI computes the formula AQI for the reading's pollutant concentrations.
// Weather fields do not participate in the formula.
func (r Reading) AQI() float64 {
	return Compute(r.PM25, r.PM10, r.NO2, r.SO2, r.CO, r.O3)
}
