// Package synth generates the labeled synthetic air-quality dataset the
// trainer fits against. Generation is deterministic for a given seed.
package synth

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sells-group/aqi-service/internal/aqi"
)

// Dataset is a feature matrix with one AQI label per row. Columns follow
// aqi.FeatureNames.
type Dataset struct {
	Features [][]float64
	Labels   []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Labels) }

// Hard ceilings applied after the correlation adjustments, keeping the
// synthetic draws inside physically plausible ranges.
const (
	maxPM25 = 500
	maxPM10 = 600
	maxNO2  = 200
	maxSO2  = 100
	maxCO   = 50
	maxO3   = 300
)

// Generate draws n rows from the fixed synthetic distributions and labels
// each with the formula AQI of its pollutants.
//
// Pollutants are exponential with means chosen to skew toward clean air;
// PM10 tracks PM2.5 scaled by a uniform factor, temperature is normal and
// humidity uniform. Two cross-correlations keep the data realistic: warm
// days boost ozone, humid days boost fine particulates.
func Generate(n int, seed uint64) *Dataset {
	src := rand.NewSource(seed)

	var (
		expPM25 = distuv.Exponential{Rate: 1.0 / 15, Src: src}
		expNO2  = distuv.Exponential{Rate: 1.0 / 20, Src: src}
		expSO2  = distuv.Exponential{Rate: 1.0 / 5, Src: src}
		expCO   = distuv.Exponential{Rate: 1, Src: src}
		expO3   = distuv.Exponential{Rate: 1.0 / 30, Src: src}

		ratioPM  = distuv.Uniform{Min: 1.2, Max: 2.5, Src: src}
		temp     = distuv.Normal{Mu: 25, Sigma: 10, Src: src}
		humidity = distuv.Uniform{Min: 30, Max: 90, Src: src}

		o3Noise = distuv.Normal{Mu: 0, Sigma: 5, Src: src}
		pmNoise = distuv.Normal{Mu: 0, Sigma: 2, Src: src}
	)

	ds := &Dataset{
		Features: make([][]float64, 0, n),
		Labels:   make([]float64, 0, n),
	}

	for i := 0; i < n; i++ {
		pm25 := expPM25.Rand()
		pm10 := pm25 * ratioPM.Rand() // derived before the humidity boost
		no2 := expNO2.Rand()
		so2 := expSO2.Rand()
		co := expCO.Rand()
		o3 := expO3.Rand()
		t := temp.Rand()
		h := humidity.Rand()

		o3 = floor0(o3 + 0.5*t + o3Noise.Rand())
		pm25 = floor0(pm25 + 0.1*h + pmNoise.Rand())

		pm25 = capAt(pm25, maxPM25)
		pm10 = capAt(pm10, maxPM10)
		no2 = capAt(no2, maxNO2)
		so2 = capAt(so2, maxSO2)
		co = capAt(co, maxCO)
		o3 = capAt(o3, maxO3)

		ds.Features = append(ds.Features, []float64{pm25, pm10, no2, so2, co, o3, t, h})
		ds.Labels = append(ds.Labels, aqi.Compute(pm25, pm10, no2, so2, co, o3))
	}

	return ds
}

func floor0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func capAt(v, hi float64) float64 {
	if v > hi {
		return hi
	}
	return v
}
