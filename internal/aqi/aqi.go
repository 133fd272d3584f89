// Package aqi implements the dominant-pollutant Air Quality Index formula
// and the category bands used to present a score.
package aqi

// breakpoint maps one concentration bracket onto one AQI bracket.
type breakpoint struct {
	ConcLo, ConcHi float64
	AQILo, AQIHi   float64
}

// EPA-style breakpoint tables. The final segment of each table is
// open-ended: concentrations beyond the last ConcLo extrapolate linearly
// past an AQI of 500.
var (
	pm25Breakpoints = []breakpoint{
		{0, 12, 0, 50},
		{12, 35.4, 50, 100},
		{35.4, 55.4, 100, 150},
		{55.4, 150.4, 150, 200},
		{150.4, 250.4, 200, 300},
		{250.4, 500.4, 300, 500},
	}
	pm10Breakpoints = []breakpoint{
		{0, 54, 0, 50},
		{54, 154, 50, 100},
		{154, 254, 100, 150},
		{254, 354, 150, 200},
		{354, 424, 200, 300},
		{424, 604, 300, 500},
	}
)

// piecewise interpolates a concentration onto its AQI bracket. Values past
// the last bracket keep the final slope rather than capping at 500.
func piecewise(conc float64, table []breakpoint) float64 {
	for i, bp := range table {
		if conc <= bp.ConcHi || i == len(table)-1 {
			return bp.AQILo + (conc-bp.ConcLo)*(bp.AQIHi-bp.AQILo)/(bp.ConcHi-bp.ConcLo)
		}
	}
	return 0 // unreachable
}

// linearCapped is the simplified sub-index used for the gas pollutants.
func linearCapped(conc, factor float64) float64 {
	if v := conc * factor; v < 500 {
		return v
	}
	return 500
}

// SubIndices returns the six per-pollutant sub-indices in the order
// PM2.5, PM10, NO2, SO2, CO, O3.
func SubIndices(pm25, pm10, no2, so2, co, o3 float64) [6]float64 {
	return [6]float64{
		piecewise(pm25, pm25Breakpoints),
		piecewise(pm10, pm10Breakpoints),
		linearCapped(no2, 2),
		linearCapped(so2, 3),
		linearCapped(co, 50),
		linearCapped(o3, 1.5),
	}
}

// Compute returns the AQI for the given pollutant concentrations: the
// maximum of the six sub-indices, since the index is defined by the worst
// single pollutant rather than an average. Negative inputs are undefined;
// callers validate at the boundary.
func Compute(pm25, pm10, no2, so2, co, o3 float64) float64 {
	max := 0.0
	for _, sub := range SubIndices(pm25, pm10, no2, so2, co, o3) {
		if sub > max {
			max = sub
		}
	}
	return max
}

// Clamp bounds a predicted score to the displayable [0, 500] range.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 500 {
		return 500
	}
	return score
}
