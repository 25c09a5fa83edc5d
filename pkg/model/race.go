package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// RaceStatus matches the race_status enum of the race table.
type RaceStatus string

const (
	RaceUpcoming           RaceStatus = "UPCOMING"
	RaceRegistrationOpen   RaceStatus = "REGISTRATION_OPEN"
	RaceRegistrationClosed RaceStatus = "REGISTRATION_CLOSED"
	RaceOngoing            RaceStatus = "ONGOING"
	RaceFinished           RaceStatus = "FINISHED"
	RaceCanceled           RaceStatus = "CANCELED"
)

// RaceRunState is the in-memory run state of the simulation loop.
// LastLap means at least one car has completed the race distance and
// the remaining cars finish at their next s/f crossing.
type RaceRunState string

const (
	RunPaused   RaceRunState = "paused"
	RunRunning  RaceRunState = "running"
	RunLastLap  RaceRunState = "last_lap"
	RunFinished RaceRunState = "finished"
)

// Race is the persisted race entity.
type Race struct {
	ID        uuid.UUID
	TrackID   uuid.UUID
	Laps      int
	Status    RaceStatus
	StartTime *time.Time
}

// Registration links a team to a race it entered.
type Registration struct {
	ID     uuid.UUID
	RaceID uuid.UUID
	TeamID uuid.UUID
}

// ResultStatus matches the race_result_status enum.
type ResultStatus string

const (
	ResultFinished ResultStatus = "FINISHED"
	ResultDNF      ResultStatus = "DNF"
)

// RaceResult is the final standing of one car in one race. Exactly one
// row exists per (race, car) once the race is finished.
type RaceResult struct {
	RaceID          uuid.UUID
	CarID           uuid.UUID
	DriverID        uuid.UUID
	TeamID          uuid.UUID
	CarNumber       int
	FinalPosition   int
	RaceTimeSeconds float64
	Status          ResultStatus
	LapsCompleted   int
	TotalDistanceKm float64
}
