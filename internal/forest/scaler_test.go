package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestFitScaler_Standardizes(t *testing.T) {
	rows := [][]float64{
		{1, 100},
		{2, 200},
		{3, 300},
		{4, 400},
	}
	s, err := FitScaler(rows, []string{"a", "b"})
	require.NoError(t, err)

	scaled, err := s.TransformAll(rows)
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		col := make([]float64, len(scaled))
		for i := range scaled {
			col[i] = scaled[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-9, "column %d mean", j)
		assert.InDelta(t, 1, std, 1e-9, "column %d stddev", j)
	}
}

func TestFitScaler_ConstantColumn(t *testing.T) {
	rows := [][]float64{{5, 1}, {5, 2}, {5, 3}}
	s, err := FitScaler(rows, []string{"const", "var"})
	require.NoError(t, err)

	scaled, err := s.Transform([]float64{5, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scaled[0], "constant column passes through centered")
}

func TestFitScaler_Errors(t *testing.T) {
	_, err := FitScaler(nil, nil)
	assert.Error(t, err)

	_, err = FitScaler([][]float64{{1, 2}}, []string{"only-one"})
	assert.Error(t, err)
}

func TestScaler_TransformDimensionMismatch(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 2}, {3, 4}}, []string{"a", "b"})
	require.NoError(t, err)

	_, err = s.Transform([]float64{1})
	assert.Error(t, err)
}
