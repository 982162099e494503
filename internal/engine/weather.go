package engine

import "math/rand"

// WeatherSystem rolls the day's weather from season-specific tables. Each
// roll is independent; there is no multi-day weather model.
type WeatherSystem struct {
	rng *rand.Rand
}

// NewWeatherSystem creates a weather system with the given seed.
func NewWeatherSystem(seed int64) *WeatherSystem {
	return &WeatherSystem{rng: rand.New(rand.NewSource(seed))}
}

var weatherTables = map[Season][]string{
	Spring: {"sunny", "rainy", "cloudy", "windy"},
	Summer: {"sunny", "sunny", "hot", "cloudy"},
	Fall:   {"cloudy", "rainy", "windy", "sunny"},
	Winter: {"snowy", "cloudy", "freezing", "sunny"},
}

// baseTemp is the season's midpoint in degrees; rolls jitter around it.
var baseTemp = map[Season]float64{
	Spring: 18,
	Summer: 28,
	Fall:   14,
	Winter: 2,
}

// tempAdjust shifts the temperature for extreme conditions.
var tempAdjust = map[string]float64{
	"hot":      6,
	"freezing": -6,
	"snowy":    -3,
	"rainy":    -2,
}

// Roll picks the weather and temperature for a new day in season.
func (w *WeatherSystem) Roll(season Season) (string, float64) {
	table, ok := weatherTables[season]
	if !ok {
		table = weatherTables[Spring]
	}
	condition := table[w.rng.Intn(len(table))]

	temp := baseTemp[season] + (w.rng.Float64()*8 - 4)
	temp += tempAdjust[condition]
	return condition, temp
}
