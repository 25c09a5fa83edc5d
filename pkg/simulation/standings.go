package simulation

import (
	"sort"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// Classification order: finished cars first (more laps wins ties on
// group, earlier finish wins ties on laps), then running cars by race
// distance, then retirements by race distance.

func standingsGroup(c *model.Car) int {
	switch c.Status {
	case model.StatusFinished:
		return 0
	case model.StatusDNF:
		return 2
	default:
		return 1
	}
}

// raceDistance is the classification distance in laps, derived from
// lap count and lap fraction each tick. The cumulative odometer is not
// usable for ranking: pit entry parks the car just past the line and
// discards the overshoot from TrackPos but not from TotalDistance, so
// a car that pitted would carry phantom distance for the rest of the
// race.
func raceDistance(c *model.Car) float64 {
	return float64(c.Lap) + c.TrackPos
}

// compareCars reports whether a is classified ahead of b.
func compareCars(a, b *model.Car) bool {
	ga, gb := standingsGroup(a), standingsGroup(b)
	if ga != gb {
		return ga < gb
	}
	if ga == 0 {
		if a.Lap != b.Lap {
			return a.Lap > b.Lap
		}
		return a.FinishedTick < b.FinishedTick
	}
	return raceDistance(a) > raceDistance(b)
}

// recomputeStandings refreshes every car's RacePos. Stable so equal
// cars keep their previous relative order.
func (e *Engine) recomputeStandings() {
	ordered := make([]*model.Car, len(e.cars))
	copy(ordered, e.cars)
	sort.SliceStable(ordered, func(i, j int) bool {
		return compareCars(ordered[i], ordered[j])
	})
	for pos, car := range ordered {
		car.RacePos = pos + 1
	}
}
