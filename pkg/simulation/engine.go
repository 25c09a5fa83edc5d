package simulation

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// FuelPolicy decides what happens when a tank runs dry mid-lap.
type FuelPolicy string

const (
	FuelPolicyDNF      FuelPolicy = "dnf"
	FuelPolicyForcePit FuelPolicy = "force-pit"
)

// Cars enter the pit lane at the start/finish line; the epsilon keeps
// the fractional position strictly inside the new lap.
const pitEntryTrackPos = 0.0001

// AI cars stage a stop once consumables cross these thresholds.
const (
	aiPitWearThreshold = 75.0
	aiPitFuelThreshold = 25.0
)

// EventSink receives every event the engine records. Implementations
// must not block; the recorder service hands events to a worker pool.
type EventSink func(model.Event)

// Engine owns the full mutable race state. It is not safe for
// concurrent use: exactly one goroutine (the scheduler) calls into it.
type Engine struct {
	raceID uuid.UUID
	track  *model.Track
	cars   []*model.Car

	carsByNumber map[int]*model.Car

	runState model.RaceRunState
	tick     uint64
	tickSec  float64
	weather  model.WeatherCondition

	fuelPolicy FuelPolicy
	sink       EventSink
	rng        *rand.Rand

	events []model.Event
}

type EngineOption func(*Engine)

func WithFuelPolicy(p FuelPolicy) EngineOption {
	return func(e *Engine) { e.fuelPolicy = p }
}

func WithEventSink(sink EventSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

func WithTickSeconds(sec float64) EngineOption {
	return func(e *Engine) { e.tickSec = sec }
}

func WithRandSeed(seed int64) EngineOption {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) } //nolint:gosec // game randomness
}

func NewEngine(raceID uuid.UUID, track *model.Track, cars []*model.Car, opts ...EngineOption) *Engine {
	e := &Engine{
		raceID:       raceID,
		track:        track,
		cars:         cars,
		carsByNumber: lo.KeyBy(cars, func(c *model.Car) int { return c.Number }),
		runState:     model.RunPaused,
		tickSec:      0.1,
		weather:      model.ConditionFor(track.Weather.ChanceAt(0)),
		fuelPolicy:   FuelPolicyDNF,
		rng:          rand.New(rand.NewSource(42)), //nolint:gosec // game randomness
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) RaceID() uuid.UUID             { return e.raceID }
func (e *Engine) RunState() model.RaceRunState  { return e.runState }
func (e *Engine) Tick() uint64                  { return e.tick }
func (e *Engine) Elapsed() float64              { return float64(e.tick) * e.tickSec }
func (e *Engine) Weather() model.WeatherCondition { return e.weather }
func (e *Engine) Events() []model.Event         { return e.events }

// Car returns the live car with the given number, or nil.
func (e *Engine) Car(number int) *model.Car { return e.carsByNumber[number] }

// Start moves a paused race to running. Idempotent once running.
func (e *Engine) Start() {
	if e.runState != model.RunPaused {
		return
	}
	e.runState = model.RunRunning
	if e.tick == 0 {
		e.record(model.EventStartRace, nil, "race started")
	}
}

// Pause freezes the simulation. Finished races stay finished.
func (e *Engine) Pause() {
	if e.runState == model.RunRunning || e.runState == model.RunLastLap {
		e.runState = model.RunPaused
	}
}

// Finished reports whether every car reached a terminal status.
func (e *Engine) Finished() bool { return e.runState == model.RunFinished }

// Advance runs one simulation step. Commands must have been applied
// before calling; the order within a tick is fixed: weather, cars,
// standings, finish detection.
func (e *Engine) Advance() {
	if e.runState != model.RunRunning && e.runState != model.RunLastLap {
		return
	}
	e.tick++

	cond, changed := AdvanceWeather(e.track, e.weather, e.Elapsed(), e.tickSec)
	if changed {
		e.weather = cond
		e.record(model.EventWeatherChange, nil, fmt.Sprintf("weather changed to %s", cond))
	}

	for _, car := range e.cars {
		e.advanceCar(car)
	}

	e.recomputeStandings()

	if e.allCarsDone() {
		e.runState = model.RunFinished
		e.record(model.EventEndRace, nil, "race finished")
	}
}

func (e *Engine) advanceCar(car *model.Car) {
	switch {
	case car.Status.Terminal():
		return
	case car.Status == model.StatusPit:
		e.advancePitStop(car)
		return
	}

	if !car.HasOwner() {
		e.aiStrategy(car)
	}

	point := e.track.PointAt(car.TrackPos)
	maxSpeed := MaxSpeed(car, e.track.Wetness) * CurvatureFactor(point.Curvature)

	car.Speed += Acceleration(car) * e.tickSec
	if car.Speed > maxSpeed {
		car.Speed = maxSpeed
	}
	e.driverMistake(car)

	distance := car.Speed * e.tickSec / 3600.0
	car.TotalDistance += distance
	car.TrackPos += distance / e.track.LapLengthKm

	car.Fuel -= FuelBurn(car, maxSpeed, e.tickSec)
	car.Tire.Wear += TireWearGain(car, maxSpeed, e.track.Wetness, e.tickSec)
	if car.Tire.Wear > 100 {
		car.Tire.Wear = 100
	}
	e.advanceStress(car)

	if car.Fuel <= 0 {
		car.Fuel = 0
		e.handleEmptyTank(car)
		if car.Status.Terminal() {
			return
		}
	}

	if car.TrackPos >= 1.0 {
		e.crossStartFinish(car)
	}
}

// crossStartFinish handles the lap boundary: finish, pit entry or just
// the next lap, in that priority order.
func (e *Engine) crossStartFinish(car *model.Car) {
	car.TrackPos -= 1.0
	car.Lap++

	if car.Lap >= e.track.Laps || e.runState == model.RunLastLap {
		car.Status = model.StatusFinished
		car.FinishedTick = e.tick
		car.Speed = 0
		car.TrackPos = 0
		e.record(model.EventCarFinished, car,
			fmt.Sprintf("car #%d finished after %d laps", car.Number, car.Lap))
		if e.runState == model.RunRunning {
			e.runState = model.RunLastLap
		}
		return
	}

	if car.PitRequested {
		car.Status = model.StatusPit
		car.TrackPos = pitEntryTrackPos
		car.PitTicksLeft = PitStopTicks(car, e.tickSec)
		car.Speed = 0
	}
}

func (e *Engine) advancePitStop(car *model.Car) {
	pitRefuelStep(car)
	car.PitTicksLeft--
	if car.PitTicksLeft > 0 {
		return
	}
	tire := string(car.Tire.Type)
	if car.TargetTire != nil {
		tire = string(*car.TargetTire)
	}
	finishPitStop(car)
	ev := e.record(model.EventPitStop, car,
		fmt.Sprintf("car #%d completed pit stop", car.Number))
	ev.Tire = &tire
	fuel := car.Fuel
	ev.Fuel = &fuel
	e.emit(ev)
}

func (e *Engine) handleEmptyTank(car *model.Car) {
	if e.fuelPolicy == FuelPolicyForcePit {
		if !car.PitRequested {
			full := 100.0
			car.PitRequested = true
			car.TargetFuel = &full
			e.record(model.EventPitRequest, car,
				fmt.Sprintf("car #%d out of fuel, limping to the pit", car.Number))
		}
		return
	}
	car.Status = model.StatusDNF
	car.FinishedTick = e.tick
	car.Speed = 0
	e.record(model.EventDNF, car, fmt.Sprintf("car #%d ran out of fuel", car.Number))
}

// aiStrategy stages pit stops for computer-controlled cars: worn or
// thirsty cars stop, and a compound from the wrong weather class forces
// a change. The compound pick follows track wetness, then the stint
// length left.
func (e *Engine) aiStrategy(car *model.Car) {
	if car.PitRequested {
		return
	}
	tire := e.aiTirePick(car)
	wrongCompound := tire.IsWetCompound() != car.Tire.Type.IsWetCompound()
	if car.Tire.Wear < aiPitWearThreshold && car.Fuel > aiPitFuelThreshold && !wrongCompound {
		return
	}

	full := 100.0
	car.PitRequested = true
	car.TargetTire = &tire
	car.TargetFuel = &full
	e.record(model.EventPitRequest, car,
		fmt.Sprintf("car #%d pit strategy: %s tires", car.Number, tire))
}

func (e *Engine) aiTirePick(car *model.Car) model.TireType {
	lapsLeft := e.track.Laps - car.Lap
	switch {
	case e.track.Wetness > 0.65:
		return model.TireWet
	case e.track.Wetness > 0.2:
		return model.TireIntermediate
	case lapsLeft > 12:
		return model.TireHard
	case lapsLeft > 6:
		return model.TireMedium
	default:
		return model.TireSoft
	}
}

// advanceStress moves the driver's stress level with the chosen style.
// Aggressive laps pile it on; relaxing sheds it fastest. A focused
// driver builds less and recovers more.
func (e *Engine) advanceStress(car *model.Car) {
	d := &car.Driver
	switch car.Style {
	case model.StyleAggressive:
		d.StressLevel += 0.03 * (1.0 - d.Focus) * e.tickSec
	case model.StyleRelax:
		d.StressLevel -= 0.015 * d.Focus * e.tickSec
	default:
		d.StressLevel -= 0.005 * d.Focus * e.tickSec
	}
	if d.StressLevel < 0 {
		d.StressLevel = 0
	} else if d.StressLevel > 1 {
		d.StressLevel = 1
	}
}

// driverMistake scrubs speed when a stressed, unfocused driver slips.
func (e *Engine) driverMistake(car *model.Car) {
	d := &car.Driver
	if d.StressLevel < 0.8 {
		return
	}
	chancePerSec := (1.0 - d.Focus) * 0.02
	if e.rng.Float64() < chancePerSec*e.tickSec {
		car.Speed *= 0.7
	}
}

func (e *Engine) allCarsDone() bool {
	return lo.EveryBy(e.cars, func(c *model.Car) bool { return c.Status.Terminal() })
}

// record builds, stores and emits an event stamped with the current
// race time. Returns the stored event so callers can enrich it before
// the sink sees a copy via emit; plain callers ignore the return.
func (e *Engine) record(t model.EventType, car *model.Car, desc string) *model.Event {
	ev := model.Event{
		RaceID:            e.raceID,
		Type:              t,
		Description:       desc,
		TimeOffsetSeconds: e.Elapsed(),
	}
	if car != nil {
		num := car.Number
		carID := car.ID
		teamID := car.Team.ID
		driverID := car.Driver.ID
		ev.CarNumber = &num
		ev.CarID = &carID
		ev.TeamID = &teamID
		ev.DriverID = &driverID
	}
	e.events = append(e.events, ev)
	stored := &e.events[len(e.events)-1]
	if t != model.EventPitStop { // pit stops are emitted after enrichment
		e.emit(stored)
	}
	return stored
}

func (e *Engine) emit(ev *model.Event) {
	if e.sink != nil {
		e.sink(*ev)
	}
}

// Results builds the final classification. Valid once Finished.
func (e *Engine) Results() []model.RaceResult {
	ordered := make([]*model.Car, len(e.cars))
	copy(ordered, e.cars)
	sort.SliceStable(ordered, func(i, j int) bool {
		return compareCars(ordered[i], ordered[j])
	})

	results := make([]model.RaceResult, 0, len(ordered))
	for pos, car := range ordered {
		status := model.ResultFinished
		if car.Status == model.StatusDNF {
			status = model.ResultDNF
		}
		results = append(results, model.RaceResult{
			RaceID:          e.raceID,
			CarID:           car.ID,
			DriverID:        car.Driver.ID,
			TeamID:          car.Team.ID,
			CarNumber:       car.Number,
			FinalPosition:   pos + 1,
			RaceTimeSeconds: float64(car.FinishedTick) * e.tickSec,
			Status:          status,
			LapsCompleted:   car.Lap,
			TotalDistanceKm: car.TotalDistance,
		})
	}
	return results
}
