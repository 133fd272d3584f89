package server

import (
	"fmt"
	"strconv"

	"github.com/sells-group/aqi-service/internal/aqi"
)

// requestFields is the request schema: every field is required, numeric
// and non-negative. Order determines both which violation is reported
// first and the feature-vector column order.
var requestFields = []string{"pm25", "pm10", "no2", "so2", "co", "o3", "temperature", "humidity"}

// ValidationError is a client input error reported with a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// parseReading validates the decoded request body against the schema in
// one pass and builds the reading. Numeric strings are coerced the same
// way the API has always accepted them.
func parseReading(body map[string]any) (aqi.Reading, *ValidationError) {
	var values [aqi.NumFeatures]float64
	for i, field := range requestFields {
		raw, ok := body[field]
		if !ok {
			return aqi.Reading{}, &ValidationError{fmt.Sprintf("Missing required parameter: %s", field)}
		}
		v, ok := toFloat(raw)
		if !ok {
			return aqi.Reading{}, &ValidationError{fmt.Sprintf("Invalid value for %s: must be a number", field)}
		}
		if v < 0 {
			return aqi.Reading{}, &ValidationError{fmt.Sprintf("Invalid value for %s: must be non-negative", field)}
		}
		values[i] = v
	}
	return aqi.Reading{
		PM25:        values[0],
		PM10:        values[1],
		NO2:         values[2],
		SO2:         values[3],
		CO:          values[4],
		O3:          values[5],
		Temperature: values[6],
		Humidity:    values[7],
	}, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
