package model

import "github.com/gofrs/uuid/v5"

// TrackPoint is one sample of the track centerline. Curvature is the
// bend angle in radians at that sample.
type TrackPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Curvature float64 `json:"curvature"`
}

// Track holds the static circuit data plus the per-race weather script
// and current wetness.
type Track struct {
	ID          uuid.UUID
	Key         string // stable external identity, e.g. "monza"
	Name        string
	Laps        int
	LapLengthKm float64
	Sampled     []TrackPoint
	Weather     WeatherTimeline
	Wetness     float64 // 0.0 (dry) to 1.0 (soaked)
}

// PointAt returns the sampled track point for a lap fraction in [0,1).
func (t *Track) PointAt(lapRatio float64) TrackPoint {
	if len(t.Sampled) == 0 {
		return TrackPoint{}
	}
	idx := int(lapRatio*float64(len(t.Sampled)) + 0.5)
	return t.Sampled[idx%len(t.Sampled)]
}
