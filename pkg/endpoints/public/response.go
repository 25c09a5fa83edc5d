package public

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tinyracing/race-manager-go/pkg/simulation"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeOK(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // nothing left to do on a failed reply
	json.NewEncoder(w).Encode(Response{Status: "ok", Data: data})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	//nolint:errcheck // nothing left to do on a failed reply
	json.NewEncoder(w).Encode(Response{Status: "error", Message: msg})
}

// writeCommandError maps validation and queueing failures to HTTP
// status codes, keeping the descriptive message for the caller.
func writeCommandError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, simulation.ErrUnknownCar):
		code = http.StatusNotFound
	case errors.Is(err, simulation.ErrNotOwner):
		code = http.StatusForbidden
	case errors.Is(err, simulation.ErrRaceNotActive),
		errors.Is(err, simulation.ErrCarDone),
		errors.Is(err, simulation.ErrAlreadyPitting):
		code = http.StatusConflict
	case errors.Is(err, simulation.ErrNoPitStaged),
		errors.Is(err, simulation.ErrInvalidRefuel):
		code = http.StatusBadRequest
	case errors.Is(err, simulation.ErrCommandBacklog):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	default:
		code = http.StatusInternalServerError
	}
	writeError(w, code, err.Error())
}
