package public

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid/v5"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/simulation"
)

// StatusUpdater persists a race status transition. Wired to the race
// repository by the server; nil in tests that have no database.
type StatusUpdater func(ctx context.Context, status model.RaceStatus) error

// Manager serves the command API for the single race this server
// instance runs. All state changes go through the scheduler inbox;
// reads are answered from the latest published snapshot.
type Manager struct {
	l     *log.Logger
	sched *simulation.Scheduler
	race  *model.Race

	latest       atomic.Pointer[simulation.Snapshot]
	status       atomic.Pointer[model.RaceStatus]
	updateStatus StatusUpdater
	cmdTimeout   time.Duration
}

type Option func(*Manager)

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.l = l }
}

func WithStatusUpdater(fn StatusUpdater) Option {
	return func(m *Manager) { m.updateStatus = fn }
}

// WithCommandTimeout bounds how long a handler waits for the tick loop
// to pick up a command.
func WithCommandTimeout(d time.Duration) Option {
	return func(m *Manager) { m.cmdTimeout = d }
}

func NewManager(sched *simulation.Scheduler, race *model.Race, opts ...Option) *Manager {
	m := &Manager{
		l:          log.Default(),
		sched:      sched,
		race:       race,
		cmdTimeout: 2 * time.Second,
	}
	status := race.Status
	m.status.Store(&status)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the last known lifecycle status of the hosted race.
// Safe for concurrent use; the watchdog and the handlers share it.
func (m *Manager) Status() model.RaceStatus { return *m.status.Load() }

// SetStatus records a persisted lifecycle transition.
func (m *Manager) SetStatus(status model.RaceStatus) { m.status.Store(&status) }

// UpdateSnapshot feeds the read endpoints. Registered as a snapshot
// consumer next to the broadcast hub.
func (m *Manager) UpdateSnapshot(snap *simulation.Snapshot) {
	m.latest.Store(snap)
}

// Router builds the HTTP routes of the command API.
func (m *Manager) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(m.l))
	r.Use(middleware.Recoverer)

	r.Route("/race/{raceID}", func(r chi.Router) {
		r.Use(m.raceCtx)
		r.Get("/", m.getRace)
		r.Post("/start", m.startRace)
		r.Post("/start-now", m.startRaceNow)
		r.Post("/pause", m.pauseRace)
		r.Route("/car/{carNum}", func(r chi.Router) {
			r.Get("/", m.getCar)
			r.Post("/pit", m.pitCommand)
			r.Put("/driving-style", m.drivingStyle)
		})
	})
	return r
}

// raceCtx rejects requests for any race id other than the one this
// instance is running.
func (m *Manager) raceCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.FromString(chi.URLParam(r, "raceID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid race id")
			return
		}
		if id != m.race.ID {
			writeError(w, http.StatusNotFound, "no such race on this server")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Debug("request",
				log.String("method", r.Method),
				log.String("path", r.URL.Path),
				log.Int("status", ww.Status()),
				log.Duration("duration", time.Since(start)))
		})
	}
}
