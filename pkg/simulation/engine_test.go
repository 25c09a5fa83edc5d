package simulation

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

func testTrack(laps int, lapKm float64) *model.Track {
	return &model.Track{
		ID:          uuid.Must(uuid.NewV4()),
		Key:         "testring",
		Name:        "Test Ring",
		Laps:        laps,
		LapLengthKm: lapKm,
		Sampled:     make([]model.TrackPoint, 100),
		Weather:     model.NewWeatherTimeline([]model.WeatherPoint{{Time: 0, Chance: 0}}),
	}
}

func newTestEngine(track *model.Track, cars ...*model.Car) *Engine {
	return NewEngine(uuid.Must(uuid.NewV4()), track, cars, WithRandSeed(1))
}

func hasEvent(e *Engine, t model.EventType) bool {
	return lo.SomeBy(e.Events(), func(ev model.Event) bool { return ev.Type == t })
}

func runUntil(t *testing.T, e *Engine, maxTicks int, done func() bool) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if done() {
			return
		}
		e.Advance()
	}
	require.True(t, done(), "condition not reached within %d ticks", maxTicks)
}

func TestStartTransitions(t *testing.T) {
	e := newTestEngine(testTrack(3, 1.0), testCar(1))

	assert.Equal(t, model.RunPaused, e.RunState())
	e.Start()
	assert.Equal(t, model.RunRunning, e.RunState())
	assert.True(t, hasEvent(e, model.EventStartRace))

	// Starting again is a no-op, not a second event.
	e.Start()
	assert.Len(t, e.Events(), 1)
}

func TestAdvanceMovesCar(t *testing.T) {
	car := testCar(1)
	e := newTestEngine(testTrack(3, 1.0), car)

	// Paused races do not move.
	e.Advance()
	assert.Zero(t, car.TotalDistance)
	assert.Zero(t, e.Tick())

	e.Start()
	for i := 0; i < 50; i++ {
		e.Advance()
	}
	assert.Positive(t, car.Speed)
	assert.Positive(t, car.TotalDistance)
	assert.Less(t, car.Fuel, 100.0)
	assert.Positive(t, car.Tire.Wear)
	assert.Equal(t, uint64(50), e.Tick())

	e.Pause()
	dist := car.TotalDistance
	e.Advance()
	assert.Equal(t, dist, car.TotalDistance)
}

func TestConsumablesMonotonicBetweenStops(t *testing.T) {
	car := testCar(1)
	e := newTestEngine(testTrack(50, 1.0), car)
	e.Start()

	// Tick over tick the tank only drains and the tire only wears.
	prevFuel, prevWear := car.Fuel, car.Tire.Wear
	for i := 0; i < 300; i++ {
		e.Advance()
		require.LessOrEqual(t, car.Fuel, prevFuel, "fuel rose at tick %d", i)
		require.GreaterOrEqual(t, car.Tire.Wear, prevWear, "wear dropped at tick %d", i)
		prevFuel, prevWear = car.Fuel, car.Tire.Wear
	}
	require.Less(t, car.Fuel, 100.0)
	require.Positive(t, car.Tire.Wear)

	// Only a pit stop resets the trend.
	soft := model.TireSoft
	full := 100.0
	car.PitRequested = true
	car.TargetTire = &soft
	car.TargetFuel = &full
	runUntil(t, e, 5000, func() bool { return car.Status == model.StatusPit })
	runUntil(t, e, 500, func() bool { return car.Status == model.StatusRacing })

	assert.Zero(t, car.Tire.Wear)
	assert.Greater(t, car.Fuel, prevFuel)
}

func TestPitEntryAtLapBoundary(t *testing.T) {
	car := testCar(7)
	car.Fuel = 60
	e := newTestEngine(testTrack(10, 0.05), car)
	e.Start()

	hard := model.TireHard
	full := 100.0
	car.PitRequested = true
	car.TargetTire = &hard
	car.TargetFuel = &full

	runUntil(t, e, 500, func() bool { return car.Status == model.StatusPit })

	// The car parked at the line, just inside the new lap.
	assert.InDelta(t, pitEntryTrackPos, car.TrackPos, 1e-9)
	assert.Equal(t, 1, car.Lap)
	assert.Zero(t, car.Speed)
	assert.Positive(t, car.PitTicksLeft)

	runUntil(t, e, 500, func() bool { return car.Status == model.StatusRacing })

	assert.Equal(t, model.TireHard, car.Tire.Type)
	assert.Zero(t, car.Tire.Wear)
	assert.InDelta(t, 100.0, car.Fuel, 1e-9)
	assert.False(t, car.PitRequested)
	require.True(t, hasEvent(e, model.EventPitStop))

	stop, found := lo.Find(e.Events(), func(ev model.Event) bool { return ev.Type == model.EventPitStop })
	require.True(t, found)
	require.NotNil(t, stop.Tire)
	assert.Equal(t, "Hard", *stop.Tire)
	require.NotNil(t, stop.CarNumber)
	assert.Equal(t, 7, *stop.CarNumber)
}

func TestFuelExhaustionDNF(t *testing.T) {
	car := testCar(1)
	car.Fuel = 1e-6
	e := newTestEngine(testTrack(3, 1.0), car)
	e.Start()

	runUntil(t, e, 100, func() bool { return car.Status == model.StatusDNF })

	assert.Zero(t, car.Fuel)
	assert.Positive(t, car.FinishedTick)
	assert.True(t, hasEvent(e, model.EventDNF))
	// Last car out ends the race.
	assert.Equal(t, model.RunFinished, e.RunState())
	assert.True(t, hasEvent(e, model.EventEndRace))
}

func TestFuelExhaustionForcePit(t *testing.T) {
	car := testCar(1)
	car.Fuel = 1e-6
	track := testTrack(3, 1.0)
	e := NewEngine(uuid.Must(uuid.NewV4()), track, []*model.Car{car},
		WithRandSeed(1), WithFuelPolicy(FuelPolicyForcePit))
	e.Start()

	runUntil(t, e, 100, func() bool { return car.PitRequested })

	assert.Equal(t, model.StatusRacing, car.Status)
	require.NotNil(t, car.TargetFuel)
	assert.InDelta(t, 100.0, *car.TargetFuel, 1e-9)
	assert.False(t, hasEvent(e, model.EventDNF))
}

func TestLastLapFinishesSlowerCars(t *testing.T) {
	fast := testCar(1)
	fast.Stats.TopSpeed = 1.0
	fast.Stats.Acceleration = 1.0
	fast.Driver.SkillLevel = 1.0
	fast.Tire.Type = model.TireSoft

	slow := testCar(2)
	slow.Stats.TopSpeed = 0.0
	slow.Stats.Acceleration = 0.0
	slow.Driver.SkillLevel = 0.0
	slow.BasePerformance = 0.9
	slow.Style = model.StyleRelax

	track := testTrack(3, 0.05)
	e := newTestEngine(track, fast, slow)
	e.Start()

	runUntil(t, e, 5000, func() bool { return fast.Status == model.StatusFinished })
	assert.Equal(t, 3, fast.Lap)
	assert.Equal(t, model.RunLastLap, e.RunState())

	runUntil(t, e, 5000, func() bool { return e.Finished() })
	assert.Equal(t, model.StatusFinished, slow.Status)
	assert.Less(t, slow.Lap, track.Laps)

	results := e.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].CarNumber)
	assert.Equal(t, 1, results[0].FinalPosition)
	assert.Equal(t, model.ResultFinished, results[0].Status)
	assert.Equal(t, 2, results[1].CarNumber)
	assert.Equal(t, 2, results[1].FinalPosition)
}

func TestAIPitStrategy(t *testing.T) {
	car := testCar(3)
	car.Tire.Wear = 80
	e := newTestEngine(testTrack(20, 1.0), car)
	e.Start()
	e.Advance()

	// 20 laps left on a dry track: the long-stint compound.
	require.True(t, car.PitRequested)
	require.NotNil(t, car.TargetTire)
	assert.Equal(t, model.TireHard, *car.TargetTire)
	require.NotNil(t, car.TargetFuel)
	assert.InDelta(t, 100.0, *car.TargetFuel, 1e-9)
}

func TestAIPitStrategyWetTrack(t *testing.T) {
	car := testCar(3)
	track := testTrack(20, 1.0)
	track.Wetness = 0.8
	e := newTestEngine(track, car)
	e.Start()
	e.Advance()

	// Slicks on a soaked track force a stop regardless of wear.
	require.True(t, car.PitRequested)
	require.NotNil(t, car.TargetTire)
	assert.Equal(t, model.TireWet, *car.TargetTire)
}

func TestCommandValidation(t *testing.T) {
	owner := "player-1"
	car := testCar(5)
	car.PlayerID = &owner
	e := newTestEngine(testTrack(3, 1.0), car)

	// Pit commands need a running race.
	err := e.apply(Command{Kind: CmdRequestPit, CarNumber: 5})
	assert.ErrorIs(t, err, ErrRaceNotActive)

	e.Start()

	err = e.apply(Command{Kind: CmdRequestPit, CarNumber: 99})
	assert.ErrorIs(t, err, ErrUnknownCar)

	stranger := "player-2"
	err = e.apply(Command{Kind: CmdRequestPit, CarNumber: 5, PlayerID: &stranger})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = e.apply(Command{Kind: CmdCancelPit, CarNumber: 5, PlayerID: &owner})
	assert.ErrorIs(t, err, ErrNoPitStaged)

	bad := 150.0
	err = e.apply(Command{Kind: CmdRequestPit, CarNumber: 5, PlayerID: &owner, Refuel: &bad})
	assert.ErrorIs(t, err, ErrInvalidRefuel)

	soft := model.TireSoft
	ok := 80.0
	require.NoError(t, e.apply(Command{Kind: CmdRequestPit, CarNumber: 5, PlayerID: &owner, Tire: &soft, Refuel: &ok}))
	assert.True(t, car.PitRequested)

	// A later request replaces the staged one.
	wet := model.TireWet
	require.NoError(t, e.apply(Command{Kind: CmdRequestPit, CarNumber: 5, PlayerID: &owner, Tire: &wet}))
	assert.Equal(t, model.TireWet, *car.TargetTire)
	assert.Nil(t, car.TargetFuel)

	require.NoError(t, e.apply(Command{Kind: CmdCancelPit, CarNumber: 5, PlayerID: &owner}))
	assert.False(t, car.PitRequested)

	require.NoError(t, e.apply(Command{Kind: CmdSetDrivingStyle, CarNumber: 5, PlayerID: &owner, Style: model.StyleAggressive}))
	assert.Equal(t, model.StyleAggressive, car.Style)

	// Once the car is being serviced the stop can no longer be canceled.
	car.Status = model.StatusPit
	err = e.apply(Command{Kind: CmdCancelPit, CarNumber: 5, PlayerID: &owner})
	assert.ErrorIs(t, err, ErrAlreadyPitting)
}

func TestWeatherChangeRecorded(t *testing.T) {
	car := testCar(1)
	track := testTrack(100, 1.0)
	track.Weather = model.NewWeatherTimeline([]model.WeatherPoint{
		{Time: 0, Chance: 0.0},
		{Time: 2, Chance: 1.0},
	})
	e := newTestEngine(track, car)
	e.Start()

	runUntil(t, e, 100, func() bool { return e.Weather() == model.WeatherRain })

	assert.True(t, hasEvent(e, model.EventWeatherChange))
	wetBefore := track.Wetness
	e.Advance()
	assert.Greater(t, track.Wetness, wetBefore)
}

func TestSnapshotShape(t *testing.T) {
	owner := "player-1"
	car := testCar(4)
	car.PlayerID = &owner
	track := testTrack(5, 1.0)
	e := newTestEngine(track, car)
	e.Start()
	for i := 0; i < 20; i++ {
		e.Advance()
	}

	snap := e.Snapshot()
	assert.Equal(t, model.RunRunning, snap.RaceStatus)
	assert.Equal(t, 5, snap.TotalLaps)
	assert.Equal(t, track.Name, snap.Track.Name)
	assert.InDelta(t, e.Elapsed(), snap.Track.ElapsedTime, 1e-9)
	require.Len(t, snap.Cars, 1)

	cs := snap.Cars[0]
	assert.Equal(t, 4, cs.CarNumber)
	assert.Equal(t, 1, cs.RacePosition)
	assert.InDelta(t, float64(car.Lap)+car.TrackPos, cs.TrackPosition, 1e-9)
	require.NotNil(t, cs.PlayerUUID)
	assert.Equal(t, owner, *cs.PlayerUUID)

	// The snapshot is detached from live state.
	before := cs.Fuel
	e.Advance()
	assert.Equal(t, before, snap.Cars[0].Fuel)
}
