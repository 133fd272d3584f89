package forest

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes each feature column to zero mean and unit variance
// using statistics learned from the training split only.
type Scaler struct {
	Features []string  `json:"features"`
	Means    []float64 `json:"means"`
	Stddevs  []float64 `json:"stddevs"`
}

// FitScaler computes per-column mean and standard deviation over rows.
// Columns with zero spread scale by 1 so constant features pass through.
func FitScaler(rows [][]float64, features []string) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, eris.New("scaler: no rows to fit")
	}
	cols := len(rows[0])
	if cols != len(features) {
		return nil, eris.Errorf("scaler: %d columns but %d feature names", cols, len(features))
	}

	s := &Scaler{
		Features: append([]string(nil), features...),
		Means:    make([]float64, cols),
		Stddevs:  make([]float64, cols),
	}

	col := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Means[j] = mean
		s.Stddevs[j] = std
	}
	return s, nil
}

// Transform returns a standardized copy of vec.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Means) {
		return nil, eris.Errorf("scaler: expected %d features, got %d", len(s.Means), len(vec))
	}
	out := make([]float64, len(vec))
	for j, v := range vec {
		out[j] = (v - s.Means[j]) / s.Stddevs[j]
	}
	return out, nil
}

// TransformAll standardizes every row.
func (s *Scaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
