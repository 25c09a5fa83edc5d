package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/model"
)

// ErrCommandBacklog is returned when the command inbox is full. The
// caller should surface it as a retryable condition.
var ErrCommandBacklog = errors.New("command inbox is full")

type submission struct {
	cmd   Command
	reply chan error
}

type controlAction int

const (
	ctlStartAt controlAction = iota
	ctlStartNow
	ctlPause
)

type controlRequest struct {
	action controlAction
	at     time.Time
	reply  chan error
}

// Scheduler drives the engine at a fixed cadence and is the only
// goroutine that touches it. Everything else talks to the race through
// bounded channels: commands and control requests go in, snapshots
// come out via the configured callbacks.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	l        *log.Logger

	inbox   chan submission
	control chan controlRequest

	onSnapshot func(*Snapshot)
	onFinished func([]model.RaceResult)
}

type SchedulerOption func(*Scheduler)

func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.interval = d }
}

func WithLogger(l *log.Logger) SchedulerOption {
	return func(s *Scheduler) { s.l = l }
}

func WithCommandBuffer(n int) SchedulerOption {
	return func(s *Scheduler) { s.inbox = make(chan submission, n) }
}

// WithSnapshotFunc registers the per-tick snapshot consumer. It is
// called from the scheduler goroutine and must not block.
func WithSnapshotFunc(fn func(*Snapshot)) SchedulerOption {
	return func(s *Scheduler) { s.onSnapshot = fn }
}

// WithFinishedFunc registers the hook called exactly once when the
// race reaches its finished state, with the final classification.
func WithFinishedFunc(fn func([]model.RaceResult)) SchedulerOption {
	return func(s *Scheduler) { s.onFinished = fn }
}

func NewScheduler(engine *Engine, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		engine:   engine,
		interval: 100 * time.Millisecond,
		l:        log.Default(),
		inbox:    make(chan submission, 64),
		control:  make(chan controlRequest, 8),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is canceled, ticking the engine at the
// configured interval. Snapshots are published every tick, including
// while paused, so late subscribers always see current state.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var startAt *time.Time
	resultsSent := false

	s.l.Info("race loop started",
		log.String("raceId", s.engine.RaceID().String()),
		log.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.l.Info("race loop stopped", log.String("raceId", s.engine.RaceID().String()))
			return ctx.Err()

		case req := <-s.control:
			startAt = s.handleControl(req, startAt)

		case <-ticker.C:
			if startAt != nil && !time.Now().Before(*startAt) {
				s.engine.Start()
				startAt = nil
			}
			s.drainCommands()
			s.engine.Advance()
			if s.onSnapshot != nil {
				s.onSnapshot(s.engine.Snapshot())
			}
			if s.engine.Finished() && !resultsSent {
				resultsSent = true
				if s.onFinished != nil {
					s.onFinished(s.engine.Results())
				}
			}
		}
	}
}

func (s *Scheduler) handleControl(req controlRequest, startAt *time.Time) *time.Time {
	switch req.action {
	case ctlStartAt:
		at := req.at
		startAt = &at
		s.l.Info("race start scheduled",
			log.String("raceId", s.engine.RaceID().String()),
			log.Time("startAt", at))
	case ctlStartNow:
		s.engine.Start()
		startAt = nil
	case ctlPause:
		s.engine.Pause()
	}
	req.reply <- nil
	return startAt
}

// drainCommands applies every queued command before the tick advances,
// in arrival order. Each submitter gets its validation result.
func (s *Scheduler) drainCommands() {
	for {
		select {
		case sub := <-s.inbox:
			sub.reply <- s.engine.apply(sub.cmd)
		default:
			return
		}
	}
}

// Submit queues a command and waits for the tick loop to validate it.
// Returns ErrCommandBacklog without blocking when the inbox is full.
func (s *Scheduler) Submit(ctx context.Context, cmd Command) error {
	sub := submission{cmd: cmd, reply: make(chan error, 1)}
	select {
	case s.inbox <- sub:
	default:
		return ErrCommandBacklog
	}
	select {
	case err := <-sub.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) sendControl(ctx context.Context, req controlRequest) error {
	select {
	case s.control <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartAt arms the race to start once the wall clock passes t.
func (s *Scheduler) StartAt(ctx context.Context, t time.Time) error {
	return s.sendControl(ctx, controlRequest{action: ctlStartAt, at: t, reply: make(chan error, 1)})
}

// StartNow starts the race immediately, ignoring any scheduled time.
func (s *Scheduler) StartNow(ctx context.Context) error {
	return s.sendControl(ctx, controlRequest{action: ctlStartNow, reply: make(chan error, 1)})
}

// Pause freezes the simulation until the next start request.
func (s *Scheduler) Pause(ctx context.Context) error {
	return s.sendControl(ctx, controlRequest{action: ctlPause, reply: make(chan error, 1)})
}
