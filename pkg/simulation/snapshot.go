package simulation

import (
	"github.com/gofrs/uuid/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// Snapshot is the immutable per-tick view that goes out on the wire.
// It copies every mutable value so the broadcast path never touches
// live engine state.
type Snapshot struct {
	Track      TrackSnapshot      `json:"track"`
	Cars       []CarSnapshot      `json:"cars"`
	RaceStatus model.RaceRunState `json:"race_status"`
	CurrentLap int                `json:"current_lap"`
	TotalLaps  int                `json:"total_laps"`
}

type TrackSnapshot struct {
	ID             uuid.UUID              `json:"uid"`
	Name           string                 `json:"name"`
	Points         []model.TrackPoint     `json:"points"`
	LapLengthKm    float64                `json:"lap_length_km"`
	CurrentWeather model.WeatherCondition `json:"current_weather"`
	Wetness        float64                `json:"wetness"`
	ElapsedTime    float64                `json:"elapsed_time"`
}

type CarSnapshot struct {
	CarNumber int          `json:"car_number"`
	Driver    model.Driver `json:"driver"`
	Team      model.Team   `json:"team"`

	// TrackPosition is laps completed plus the fractional lap position,
	// so 3.25 means a quarter of the way through lap four.
	TrackPosition float64 `json:"track_position"`
	RacePosition  int     `json:"race_position"`

	Speed float64    `json:"speed"`
	Fuel  float64    `json:"fuel"`
	Tire  model.Tire `json:"tire"`

	Status       model.CarStatus    `json:"status"`
	DrivingStyle model.DrivingStyle `json:"driving_style"`
	PitRequested bool               `json:"pit_requested"`

	PlayerUUID *string `json:"player_uuid"`
}

// Snapshot captures the current race state. Called from the tick loop
// only; the returned value is safe to hand to other goroutines.
func (e *Engine) Snapshot() *Snapshot {
	cars := make([]CarSnapshot, 0, len(e.cars))
	currentLap := 0
	for _, car := range e.cars {
		if car.Lap > currentLap {
			currentLap = car.Lap
		}
		cars = append(cars, CarSnapshot{
			CarNumber:     car.Number,
			Driver:        car.Driver,
			Team:          car.Team,
			TrackPosition: float64(car.Lap) + car.TrackPos,
			RacePosition:  car.RacePos,
			Speed:         car.Speed,
			Fuel:          car.Fuel,
			Tire:          car.Tire,
			Status:        car.Status,
			DrivingStyle:  car.Style,
			PitRequested:  car.PitRequested,
			PlayerUUID:    car.PlayerID,
		})
	}
	return &Snapshot{
		Track: TrackSnapshot{
			ID:             e.track.ID,
			Name:           e.track.Name,
			Points:         e.track.Sampled,
			LapLengthKm:    e.track.LapLengthKm,
			CurrentWeather: e.weather,
			Wetness:        e.track.Wetness,
			ElapsedTime:    e.Elapsed(),
		},
		Cars:       cars,
		RaceStatus: e.runState,
		CurrentLap: currentLap,
		TotalLaps:  e.track.Laps,
	}
}
