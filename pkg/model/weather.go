package model

import "sort"

// WeatherCondition is the coarse sky state derived from the rain chance.
type WeatherCondition string

const (
	WeatherClear  WeatherCondition = "clear"
	WeatherCloudy WeatherCondition = "cloudy"
	WeatherRain   WeatherCondition = "rain"
)

// WeatherPoint is a (time offset, rain chance) pair. Rain chance runs
// from 0.0 (clear sky) to 1.0 (heavy rain).
type WeatherPoint struct {
	Time   float64 `json:"time" yaml:"time"`
	Chance float64 `json:"chance" yaml:"chance"`
}

// WeatherTimeline is a scripted rain-chance curve over race time.
// Points are kept sorted by time; values between points interpolate
// linearly.
type WeatherTimeline struct {
	Points []WeatherPoint `json:"points" yaml:"points"`
}

func NewWeatherTimeline(points []WeatherPoint) WeatherTimeline {
	sorted := make([]WeatherPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return WeatherTimeline{Points: sorted}
}

// ChanceAt returns the interpolated rain chance at the given race time
// in seconds.
func (w WeatherTimeline) ChanceAt(t float64) float64 {
	if len(w.Points) == 0 {
		return 0.5 // default to cloudy if no data
	}
	if t <= w.Points[0].Time {
		return w.Points[0].Chance
	}
	last := w.Points[len(w.Points)-1]
	if t >= last.Time {
		return last.Chance
	}
	for i := 0; i < len(w.Points)-1; i++ {
		p1, p2 := w.Points[i], w.Points[i+1]
		if t >= p1.Time && t <= p2.Time {
			ratio := (t - p1.Time) / (p2.Time - p1.Time)
			return p1.Chance + (p2.Chance-p1.Chance)*ratio
		}
	}
	return last.Chance
}

// ConditionFor maps a rain chance to the coarse condition.
func ConditionFor(chance float64) WeatherCondition {
	switch {
	case chance < 0.33:
		return WeatherClear
	case chance < 0.66:
		return WeatherCloudy
	default:
		return WeatherRain
	}
}
