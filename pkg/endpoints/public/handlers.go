package public

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/simulation"
)

// playerID returns the authenticated player, nil for anonymous or
// server-side callers. Commands on player-owned cars require it.
func playerID(r *http.Request) *string {
	if v := r.Header.Get("X-Player-ID"); v != "" {
		return &v
	}
	return nil
}

func (m *Manager) submit(r *http.Request, cmd simulation.Command) error {
	ctx, cancel := context.WithTimeout(r.Context(), m.cmdTimeout)
	defer cancel()
	return m.sched.Submit(ctx, cmd)
}

type pitRequest struct {
	Tires  *string  `json:"tires"`
	Refuel *float64 `json:"refuel"`
	Cancel bool     `json:"cancel"`
}

func (m *Manager) pitCommand(w http.ResponseWriter, r *http.Request) {
	carNum, err := strconv.Atoi(chi.URLParam(r, "carNum"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car number")
		return
	}
	var req pitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd := simulation.Command{
		CarNumber: carNum,
		PlayerID:  playerID(r),
	}
	if req.Cancel {
		cmd.Kind = simulation.CmdCancelPit
	} else {
		cmd.Kind = simulation.CmdRequestPit
		if req.Tires != nil {
			tire, err := model.ParseTireType(*req.Tires)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			cmd.Tire = &tire
		}
		cmd.Refuel = req.Refuel
	}

	if err := m.submit(r, cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	writeOK(w, nil)
}

type styleRequest struct {
	Style string `json:"style"`
}

func (m *Manager) drivingStyle(w http.ResponseWriter, r *http.Request) {
	carNum, err := strconv.Atoi(chi.URLParam(r, "carNum"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car number")
		return
	}
	var req styleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	style, err := model.ParseDrivingStyle(req.Style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := m.submit(r, simulation.Command{
		Kind:      simulation.CmdSetDrivingStyle,
		CarNumber: carNum,
		PlayerID:  playerID(r),
		Style:     style,
	}); err != nil {
		writeCommandError(w, err)
		return
	}
	writeOK(w, nil)
}

func (m *Manager) startRace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), m.cmdTimeout)
	defer cancel()

	startAt := time.Now()
	if m.race.StartTime != nil && m.race.StartTime.After(startAt) {
		startAt = *m.race.StartTime
	}
	if err := m.sched.StartAt(ctx, startAt); err != nil {
		writeCommandError(w, err)
		return
	}
	m.persistStatus(r.Context(), model.RaceOngoing)
	writeOK(w, map[string]any{"start_time": startAt.UTC().Format(time.RFC3339)})
}

func (m *Manager) startRaceNow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), m.cmdTimeout)
	defer cancel()

	if err := m.sched.StartNow(ctx); err != nil {
		writeCommandError(w, err)
		return
	}
	m.persistStatus(r.Context(), model.RaceOngoing)
	writeOK(w, nil)
}

func (m *Manager) pauseRace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), m.cmdTimeout)
	defer cancel()

	if err := m.sched.Pause(ctx); err != nil {
		writeCommandError(w, err)
		return
	}
	writeOK(w, nil)
}

// persistStatus is best-effort: the in-memory run state is
// authoritative while the race runs, the row catches up.
func (m *Manager) persistStatus(ctx context.Context, status model.RaceStatus) {
	if m.updateStatus == nil {
		return
	}
	if err := m.updateStatus(ctx, status); err != nil {
		m.l.Error("persisting race status failed",
			log.String("status", string(status)), log.ErrorField(err))
		return
	}
	m.SetStatus(status)
}

type raceSummary struct {
	ID          string                 `json:"uid"`
	Status      model.RaceStatus       `json:"status"`
	RunState    model.RaceRunState     `json:"run_state"`
	TotalLaps   int                    `json:"total_laps"`
	CurrentLap  int                    `json:"current_lap"`
	ElapsedTime float64                `json:"elapsed_time"`
	Weather     model.WeatherCondition `json:"weather"`
	Wetness     float64                `json:"wetness"`
	CarCount    int                    `json:"car_count"`
}

func (m *Manager) getRace(w http.ResponseWriter, _ *http.Request) {
	summary := raceSummary{
		ID:        m.race.ID.String(),
		Status:    m.Status(),
		TotalLaps: m.race.Laps,
		RunState:  model.RunPaused,
	}
	if snap := m.latest.Load(); snap != nil {
		summary.RunState = snap.RaceStatus
		summary.CurrentLap = snap.CurrentLap
		summary.ElapsedTime = snap.Track.ElapsedTime
		summary.Weather = snap.Track.CurrentWeather
		summary.Wetness = snap.Track.Wetness
		summary.CarCount = len(snap.Cars)
	}
	writeOK(w, summary)
}

func (m *Manager) getCar(w http.ResponseWriter, r *http.Request) {
	carNum, err := strconv.Atoi(chi.URLParam(r, "carNum"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car number")
		return
	}
	snap := m.latest.Load()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return
	}
	for i := range snap.Cars {
		if snap.Cars[i].CarNumber == carNum {
			writeOK(w, snap.Cars[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "no car with that number in this race")
}
