package aqi

// Category is one of the six presentation bands for an AQI score.
type Category struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// band pairs a category with the inclusive upper AQI bound it covers.
type band struct {
	Upper float64
	Cat   Category
}

var bands = []band{
	{50, Category{"Good", "#00E400"}},
	{100, Category{"Moderate", "#FFFF00"}},
	{150, Category{"Unhealthy for Sensitive Groups", "#FF7E00"}},
	{200, Category{"Unhealthy", "#FF0000"}},
	{300, Category{"Very Unhealthy", "#8F3F97"}},
}

var hazardous = Category{"Hazardous", "#7E0023"}

// Classify maps an AQI score to its category band. Bands are inclusive on
// the upper bound, so 50 is Good and 50.1 is Moderate. Scores above 300
// are Hazardous.
func Classify(score float64) Category {
	for _, b := range bands {
		if score <= b.Upper {
			return b.Cat
		}
	}
	return hazardous
}
