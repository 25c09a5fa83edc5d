package simulation

import (
	"math"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// Pure performance model. All functions are deterministic for a given
// car/track/weather state so ticks can be replayed in tests.

const (
	baseTopSpeedKmh  = 200.0
	topSpeedSpreadKm = 200.0
	pitLaneSpeedKmh  = 30.0
)

func styleSpeedFactor(style model.DrivingStyle) float64 {
	switch style {
	case model.StyleAggressive:
		return 1.05
	case model.StyleRelax:
		return 0.95
	default:
		return 1.0
	}
}

// styleBurnFactor scales tire wear and fuel consumption. Inverse of
// the speed ordering: aggressive burns more, relax burns less.
func styleBurnFactor(style model.DrivingStyle) float64 {
	switch style {
	case model.StyleAggressive:
		return 1.1
	case model.StyleRelax:
		return 0.9
	default:
		return 1.0
	}
}

func tireTypeSpeedFactor(t model.TireType) float64 {
	switch t {
	case model.TireSoft:
		return 1.05
	case model.TireHard:
		return 0.95
	case model.TireIntermediate:
		return 0.9
	case model.TireWet:
		return 0.8
	default: // medium
		return 1.0
	}
}

// wetGripFactor penalizes dry compounds on a wet track. Intermediate
// and wet compounds are exempt; a tolerant driver loses less.
func wetGripFactor(tire model.TireType, wetness float64, driver *model.Driver) float64 {
	if tire.IsWetCompound() {
		return 1.0
	}
	penalty := 0.4 * wetness * (1.0 - 0.5*driver.WeatherTolerance)
	return 1.0 - penalty
}

// wearGripFactor drops linearly with wear and falls off a cliff once
// the tire is fully worn. The car keeps running; it is just slow.
func wearGripFactor(wear float64) float64 {
	factor := 1.0 - wear/1000.0
	if wear >= 100.0 {
		factor *= 0.6
	}
	return factor
}

// MaxSpeed returns the top speed in km/h the car can currently reach.
func MaxSpeed(car *model.Car, wetness float64) float64 {
	switch car.Status {
	case model.StatusPit:
		return pitLaneSpeedKmh
	case model.StatusFinished, model.StatusDNF:
		return 0.0
	}

	base := baseTopSpeedKmh + car.Stats.TopSpeed*topSpeedSpreadKm

	tireFactor := tireTypeSpeedFactor(car.Tire.Type) * wearGripFactor(car.Tire.Wear)
	fuelFactor := 1.0 - car.Fuel/1000.0
	skillFactor := 1.0 + car.Driver.SkillLevel*0.05
	handlingFactor := 0.98 + car.Stats.Handling*0.04

	return base *
		car.BasePerformance *
		tireFactor *
		fuelFactor *
		styleSpeedFactor(car.Style) *
		skillFactor *
		handlingFactor *
		wetGripFactor(car.Tire.Type, wetness, &car.Driver)
}

// Acceleration returns the speed gain in km/h per second.
func Acceleration(car *model.Car) float64 {
	base := 50.0 + car.Stats.Acceleration*100.0
	skillFactor := 1.0 + car.Driver.SkillLevel*0.1
	return base * skillFactor * styleSpeedFactor(car.Style)
}

// CurvatureFactor maps a bend angle (radians) to a speed fraction.
// Straights pass unchanged, the tightest corners cost 85%.
func CurvatureFactor(curvature float64) float64 {
	return math.Max(math.Exp(-4.62*curvature), 0.15)
}
