package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aqi-service/internal/aqi"
)

func TestGenerate_Shape(t *testing.T) {
	ds := Generate(200, 42)
	require.Equal(t, 200, ds.Len())
	require.Len(t, ds.Features, 200)
	for _, row := range ds.Features {
		assert.Len(t, row, aqi.NumFeatures)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(100, 42)
	b := Generate(100, 42)
	assert.Equal(t, a.Features, b.Features)
	assert.Equal(t, a.Labels, b.Labels)

	c := Generate(100, 7)
	assert.NotEqual(t, a.Labels, c.Labels, "different seeds should differ")
}

func TestGenerate_Ranges(t *testing.T) {
	ds := Generate(500, 42)
	for i, row := range ds.Features {
		pm25, pm10, no2, so2, co, o3 := row[0], row[1], row[2], row[3], row[4], row[5]
		humidity := row[7]

		// Pollutants are clamped non-negative and capped.
		assert.GreaterOrEqual(t, pm25, 0.0, "row %d pm25", i)
		assert.LessOrEqual(t, pm25, 500.0, "row %d pm25", i)
		assert.LessOrEqual(t, pm10, 600.0, "row %d pm10", i)
		assert.LessOrEqual(t, no2, 200.0, "row %d no2", i)
		assert.LessOrEqual(t, so2, 100.0, "row %d so2", i)
		assert.LessOrEqual(t, co, 50.0, "row %d co", i)
		assert.GreaterOrEqual(t, o3, 0.0, "row %d o3", i)
		assert.LessOrEqual(t, o3, 300.0, "row %d o3", i)

		assert.GreaterOrEqual(t, humidity, 30.0, "row %d humidity", i)
		assert.LessOrEqual(t, humidity, 90.0, "row %d humidity", i)
	}
}

func TestGenerate_LabelsMatchFormula(t *testing.T) {
	ds := Generate(100, 42)
	for i, row := range ds.Features {
		want := aqi.Compute(row[0], row[1], row[2], row[3], row[4], row[5])
		assert.Equal(t, want, ds.Labels[i], "row %d", i)
	}
}
