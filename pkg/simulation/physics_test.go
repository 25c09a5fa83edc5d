package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

func testCar(num int) *model.Car {
	return &model.Car{
		Number:          num,
		Team:            model.Team{Name: "Test Racing", PitEfficiency: 0.5},
		Driver:          model.Driver{Name: "Test Driver", SkillLevel: 0.5, Stamina: 0.5, Focus: 0.5},
		Stats:           model.DefaultCarStats(),
		Tire:            model.Tire{Type: model.TireMedium},
		Fuel:            100,
		Style:           model.StyleNormal,
		Status:          model.StatusRacing,
		BasePerformance: 1.0,
	}
}

func TestMaxSpeedTireOrdering(t *testing.T) {
	soft, medium, hard := testCar(1), testCar(2), testCar(3)
	soft.Tire.Type = model.TireSoft
	hard.Tire.Type = model.TireHard

	vSoft := MaxSpeed(soft, 0)
	vMed := MaxSpeed(medium, 0)
	vHard := MaxSpeed(hard, 0)

	assert.Greater(t, vSoft, vMed)
	assert.Greater(t, vMed, vHard)
}

func TestMaxSpeedWetTrack(t *testing.T) {
	dry, wet := testCar(1), testCar(2)
	dry.Tire.Type = model.TireSoft
	wet.Tire.Type = model.TireWet

	// On a dry track slicks are quicker.
	assert.Greater(t, MaxSpeed(dry, 0), MaxSpeed(wet, 0))
	// On a soaked track the wet compound comes out ahead.
	assert.Greater(t, MaxSpeed(wet, 1.0), MaxSpeed(dry, 1.0))
}

func TestMaxSpeedWearCliff(t *testing.T) {
	fresh, worn, dead := testCar(1), testCar(2), testCar(3)
	worn.Tire.Wear = 90
	dead.Tire.Wear = 100

	vFresh := MaxSpeed(fresh, 0)
	vWorn := MaxSpeed(worn, 0)
	vDead := MaxSpeed(dead, 0)

	assert.Greater(t, vFresh, vWorn)
	// The fully worn tire loses far more than the linear trend.
	assert.Less(t, vDead, vWorn*0.7)
	assert.Greater(t, vDead, 0.0)
}

func TestMaxSpeedByStatus(t *testing.T) {
	car := testCar(1)

	car.Status = model.StatusPit
	assert.InDelta(t, pitLaneSpeedKmh, MaxSpeed(car, 0), 1e-9)

	car.Status = model.StatusFinished
	assert.Zero(t, MaxSpeed(car, 0))

	car.Status = model.StatusDNF
	assert.Zero(t, MaxSpeed(car, 0))
}

func TestStyleSpeedOrdering(t *testing.T) {
	relax, normal, aggr := testCar(1), testCar(2), testCar(3)
	relax.Style = model.StyleRelax
	aggr.Style = model.StyleAggressive

	assert.Greater(t, MaxSpeed(aggr, 0), MaxSpeed(normal, 0))
	assert.Greater(t, MaxSpeed(normal, 0), MaxSpeed(relax, 0))
	assert.Greater(t, Acceleration(aggr), Acceleration(relax))
}

func TestCurvatureFactor(t *testing.T) {
	assert.InDelta(t, 1.0, CurvatureFactor(0), 1e-9)
	assert.Less(t, CurvatureFactor(0.5), CurvatureFactor(0.1))
	// Hairpins bottom out at the floor instead of stalling the car.
	assert.InDelta(t, 0.15, CurvatureFactor(10), 1e-9)
}
