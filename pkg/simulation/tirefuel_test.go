package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

func TestStyleBurnOrdering(t *testing.T) {
	relax, normal, aggr := testCar(1), testCar(2), testCar(3)
	relax.Style = model.StyleRelax
	aggr.Style = model.StyleAggressive
	for _, c := range []*model.Car{relax, normal, aggr} {
		c.Speed = 200
	}

	const maxSpeed, dt = 250.0, 0.1

	assert.Greater(t, FuelBurn(aggr, maxSpeed, dt), FuelBurn(normal, maxSpeed, dt))
	assert.Greater(t, FuelBurn(normal, maxSpeed, dt), FuelBurn(relax, maxSpeed, dt))

	assert.Greater(t, TireWearGain(aggr, maxSpeed, 0, dt), TireWearGain(normal, maxSpeed, 0, dt))
	assert.Greater(t, TireWearGain(normal, maxSpeed, 0, dt), TireWearGain(relax, maxSpeed, 0, dt))
}

func TestWetCompoundOverheatsWhenDry(t *testing.T) {
	car := testCar(1)
	car.Speed = 200
	car.Tire.Type = model.TireWet

	dryTrack := TireWearGain(car, 250, 0.0, 0.1)
	wetTrack := TireWearGain(car, 250, 0.8, 0.1)

	assert.Greater(t, dryTrack, wetTrack)
}

func TestPitStopTicks(t *testing.T) {
	car := testCar(1)
	car.Fuel = 40
	full := 100.0
	car.TargetFuel = &full

	// Same request always takes the same number of ticks.
	first := PitStopTicks(car, 0.1)
	assert.Equal(t, first, PitStopTicks(car, 0.1))
	require.Positive(t, first)

	// A better crew is quicker.
	slow := testCar(2)
	slow.Fuel = 40
	slow.TargetFuel = &full
	slow.Team.PitEfficiency = 0.1
	assert.Greater(t, PitStopTicks(slow, 0.1), first)

	// Topping off less fuel is quicker than a full refill.
	splash := testCar(3)
	splash.Fuel = 90
	splash.TargetFuel = &full
	assert.Less(t, PitStopTicks(splash, 0.1), first)
}

func TestFinishPitStopAppliesService(t *testing.T) {
	car := testCar(1)
	car.Status = model.StatusPit
	car.Tire = model.Tire{Type: model.TireSoft, Wear: 80}
	car.Fuel = 30
	car.PitRequested = true
	hard := model.TireHard
	full := 100.0
	car.TargetTire = &hard
	car.TargetFuel = &full

	finishPitStop(car)

	assert.Equal(t, model.StatusRacing, car.Status)
	assert.Equal(t, model.TireHard, car.Tire.Type)
	assert.Zero(t, car.Tire.Wear)
	assert.InDelta(t, 100.0, car.Fuel, 1e-9)
	assert.False(t, car.PitRequested)
	assert.Nil(t, car.TargetTire)
	assert.Nil(t, car.TargetFuel)
}

func TestFinishPitStopWithoutTireRequest(t *testing.T) {
	car := testCar(1)
	car.Status = model.StatusPit
	car.Tire = model.Tire{Type: model.TireSoft, Wear: 55}

	finishPitStop(car)

	// Wear resets on every stop; the compound only changes on request.
	assert.Equal(t, model.TireSoft, car.Tire.Type)
	assert.Zero(t, car.Tire.Wear)
}
