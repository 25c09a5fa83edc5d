package simulation

import (
	"errors"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// Commands staged by the HTTP layer. The scheduler drains its inbox at
// the start of a tick and applies commands in arrival order; the state
// change itself always happens inside the tick, never in the caller.

type CommandKind int

const (
	CmdRequestPit CommandKind = iota
	CmdCancelPit
	CmdSetDrivingStyle
)

type Command struct {
	Kind      CommandKind
	CarNumber int

	// PlayerID is the authenticated caller, nil for admin/AI callers.
	PlayerID *string

	Tire   *model.TireType
	Refuel *float64
	Style  model.DrivingStyle
}

var (
	ErrUnknownCar     = errors.New("no car with that number in this race")
	ErrNotOwner       = errors.New("car is not controlled by this player")
	ErrCarDone        = errors.New("car is no longer racing")
	ErrAlreadyPitting = errors.New("car is already in the pit lane")
	ErrNoPitStaged    = errors.New("no pit request is staged")
	ErrInvalidRefuel  = errors.New("refuel target must be between 0 and 100")
	ErrRaceNotActive  = errors.New("race is not running")
)

// apply validates the command against the live state and mutates the
// car. Called only from the tick loop goroutine.
func (e *Engine) apply(cmd Command) error {
	car, ok := e.carsByNumber[cmd.CarNumber]
	if !ok {
		return ErrUnknownCar
	}
	if cmd.PlayerID != nil && (car.PlayerID == nil || *car.PlayerID != *cmd.PlayerID) {
		return ErrNotOwner
	}
	if car.Status.Terminal() {
		return ErrCarDone
	}

	active := e.runState == model.RunRunning || e.runState == model.RunLastLap

	switch cmd.Kind {
	case CmdRequestPit:
		if !active {
			return ErrRaceNotActive
		}
		if car.Status == model.StatusPit {
			return ErrAlreadyPitting
		}
		if cmd.Refuel != nil && (*cmd.Refuel < 0 || *cmd.Refuel > 100) {
			return ErrInvalidRefuel
		}
		// Latest request wins; a second request replaces the staged one.
		car.PitRequested = true
		car.TargetTire = cmd.Tire
		car.TargetFuel = cmd.Refuel
		e.record(model.EventPitRequest, car, "pit requested")

	case CmdCancelPit:
		if !active {
			return ErrRaceNotActive
		}
		if car.Status == model.StatusPit {
			return ErrAlreadyPitting
		}
		if !car.PitRequested {
			return ErrNoPitStaged
		}
		car.PitRequested = false
		car.TargetTire = nil
		car.TargetFuel = nil
		e.record(model.EventPitCancel, car, "pit request canceled")

	case CmdSetDrivingStyle:
		car.Style = cmd.Style
	}
	return nil
}
