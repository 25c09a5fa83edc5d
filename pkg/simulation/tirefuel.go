package simulation

import (
	"math"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// Consumable model: fuel burn and tire wear per tick, pit stop timing.

const (
	// Consumption at full speed in % per second, scaled by the stat.
	baseFuelBurnPerSec = 0.0005
	fuelBurnStatSpread = 0.15
	baseTireWearPerSec = 0.0002
	tireWearStatSpread = 0.08

	basePitStopSeconds  = 3.0
	refuelSecondsPerPct = 0.02
)

func tireCompoundWearFactor(t model.TireType) float64 {
	switch t {
	case model.TireSoft:
		return 1.5
	case model.TireHard:
		return 0.7
	case model.TireIntermediate:
		return 1.2
	case model.TireWet:
		return 1.3
	default:
		return 1.0
	}
}

// FuelBurn returns the fuel consumed over dt seconds at the car's
// current speed and driving style.
func FuelBurn(car *model.Car, maxSpeed float64, dt float64) float64 {
	if maxSpeed <= 0 {
		return 0
	}
	speedRatio := car.Speed / maxSpeed
	rate := baseFuelBurnPerSec + car.Stats.FuelConsumption*fuelBurnStatSpread
	return rate * speedRatio * styleBurnFactor(car.Style) * dt
}

// TireWearGain returns the wear accumulated over dt seconds. Wet
// compounds on a dry track overheat and wear faster.
func TireWearGain(car *model.Car, maxSpeed, wetness, dt float64) float64 {
	if maxSpeed <= 0 {
		return 0
	}
	speedRatio := car.Speed / maxSpeed
	rate := baseTireWearPerSec + car.Stats.TireWear*tireWearStatSpread
	compound := tireCompoundWearFactor(car.Tire.Type)
	if car.Tire.Type.IsWetCompound() && wetness < 0.2 {
		compound *= 1.5
	}
	return rate * speedRatio * compound * styleBurnFactor(car.Style) * dt
}

// PitStopTicks returns the number of ticks a stop takes. The duration
// grows with the amount of fuel to add and shrinks with the crew's
// pit efficiency; it is fully determined by the request, never random.
func PitStopTicks(car *model.Car, tickSeconds float64) int {
	refuelDelta := 0.0
	if car.TargetFuel != nil {
		refuelDelta = math.Max(0, *car.TargetFuel-car.Fuel)
	}
	seconds := (basePitStopSeconds + refuelDelta*refuelSecondsPerPct) *
		(1.5 - car.Team.PitEfficiency)
	ticks := int(math.Ceil(seconds / tickSeconds))
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// pitRefuelStep adds an even share of the requested fuel for one pit
// tick so the gauge rises visibly while the car is stationary.
func pitRefuelStep(car *model.Car) {
	if car.TargetFuel == nil {
		return
	}
	delta := math.Max(0, *car.TargetFuel-car.Fuel)
	remaining := car.PitTicksLeft
	if remaining <= 0 {
		remaining = 1
	}
	car.Fuel = math.Min(100.0, car.Fuel+delta/float64(remaining))
}

// finishPitStop applies the staged service: wear always resets, the
// compound changes only when one was requested.
func finishPitStop(car *model.Car) {
	car.Tire.Wear = 0.0
	if car.TargetTire != nil {
		car.Tire.Type = *car.TargetTire
	}
	if car.TargetFuel != nil {
		car.Fuel = math.Min(100.0, math.Max(car.Fuel, *car.TargetFuel))
	}
	car.TargetTire = nil
	car.TargetFuel = nil
	car.PitRequested = false
	car.PitTicksLeft = 0
	car.Status = model.StatusRacing
}
