package model

import "github.com/gofrs/uuid/v5"

// EventType matches the event_type enum of the event table.
type EventType string

const (
	EventStartRace     EventType = "START_RACE"
	EventEndRace       EventType = "END_RACE"
	EventPitRequest    EventType = "PIT_REQUEST"
	EventPitCancel     EventType = "PIT_CANCEL"
	EventPitStop       EventType = "PIT_STOP"
	EventWeatherChange EventType = "WEATHER_CHANGE"
	EventAccident      EventType = "ACCIDENT"
	EventCarFinished   EventType = "CAR_FINISHED"
	EventDNF           EventType = "DNF"
	EventOther         EventType = "OTHER"
)

// Event is an immutable entry of the race event log. Events are
// appended by the scheduler when a state transition occurs and are
// never mutated or deleted.
type Event struct {
	RaceID            uuid.UUID
	Type              EventType
	Description       string
	TimeOffsetSeconds float64

	CarNumber *int
	CarID     *uuid.UUID
	TeamID    *uuid.UUID
	DriverID  *uuid.UUID
	Tire      *string
	Fuel      *float64
}
