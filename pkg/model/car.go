package model

import "github.com/gofrs/uuid/v5"

// CarStatus is the race status of a car.
type CarStatus string

const (
	StatusRacing   CarStatus = "Racing"
	StatusPit      CarStatus = "Pit"
	StatusFinished CarStatus = "Finished"
	StatusDNF      CarStatus = "Dnf"
)

// Terminal reports whether the car takes no further part in the race.
func (s CarStatus) Terminal() bool {
	return s == StatusFinished || s == StatusDNF
}

// CarStats are the chassis attributes. All values are 0.0 to 1.0.
type CarStats struct {
	Handling        float64 `json:"handling" yaml:"handling"`
	Acceleration    float64 `json:"acceleration" yaml:"acceleration"`
	TopSpeed        float64 `json:"top_speed" yaml:"top_speed"`
	Reliability     float64 `json:"reliability" yaml:"reliability"`
	FuelConsumption float64 `json:"fuel_consumption" yaml:"fuel_consumption"`
	TireWear        float64 `json:"tire_wear" yaml:"tire_wear"`
}

// DefaultCarStats is the midfield baseline.
func DefaultCarStats() CarStats {
	return CarStats{
		Handling:        0.5,
		Acceleration:    0.5,
		TopSpeed:        0.5,
		Reliability:     0.5,
		FuelConsumption: 0.5,
		TireWear:        0.5,
	}
}

// Car is the per-car race state. It is mutated only by the scheduler
// during a tick; commands merely stage a pending pit request.
type Car struct {
	ID     uuid.UUID
	Number int
	Team   Team
	Driver Driver
	Stats  CarStats

	Tire  Tire
	Fuel  float64 // 0.0 to 100.0 %
	Style DrivingStyle

	Status   CarStatus
	RacePos  int     // derived ranking, recomputed each tick
	Lap      int     // completed s/f crossings
	TrackPos float64 // fractional position within the lap, [0.0, 1.0)

	TotalDistance float64 // km
	Speed         float64 // km/h
	FinishedTick  uint64  // tick the car finished or retired

	// BasePerformance is a per-car multiplier in [0.9, 1.1].
	BasePerformance float64

	// Staged pit request, applied at the next s/f crossing.
	PitRequested bool
	TargetTire   *TireType
	TargetFuel   *float64
	PitTicksLeft int

	// PlayerID is nil for AI-controlled teams.
	PlayerID *string
}

// HasOwner reports whether a human player controls this car.
func (c *Car) HasOwner() bool { return c.PlayerID != nil }
