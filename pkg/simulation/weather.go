package simulation

import "github.com/tinyracing/race-manager-go/pkg/model"

// Wetness change rates in fraction per second. Heavy rain soaks the
// track in 3 minutes, a clear sky dries a soaked track in 1 minute;
// between the thresholds the track is stable.
const (
	soakRateAtFullRain = 1.0 / 180.0
	soakRateAtOnset    = 1.0 / 600.0
	dryRateAtClear     = 1.0 / 60.0
	dryRateAtBoundary  = 1.0 / 600.0

	rainOnsetChance = 0.66
	dryingMaxChance = 0.5
)

// AdvanceWeather evaluates the weather timeline at the given race time,
// integrates wetness for dt seconds and returns the condition now in
// effect plus whether it differs from the previous one.
func AdvanceWeather(track *model.Track, prev model.WeatherCondition, elapsed, dt float64) (model.WeatherCondition, bool) {
	chance := track.Weather.ChanceAt(elapsed)
	cond := model.ConditionFor(chance)

	switch {
	case chance > rainOnsetChance:
		f := (chance - rainOnsetChance) / (1.0 - rainOnsetChance)
		rate := soakRateAtOnset + (soakRateAtFullRain-soakRateAtOnset)*f
		track.Wetness += rate * dt
	case chance < dryingMaxChance:
		f := chance / dryingMaxChance
		rate := dryRateAtClear + (dryRateAtBoundary-dryRateAtClear)*f
		track.Wetness -= rate * dt
	}
	if track.Wetness < 0 {
		track.Wetness = 0
	} else if track.Wetness > 1 {
		track.Wetness = 1
	}

	return cond, cond != prev
}
