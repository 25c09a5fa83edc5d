package recorder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
	eventRepo "github.com/tinyracing/race-manager-go/pkg/repository/event"
)

// Recorder persists race events without ever blocking the tick loop.
// Enqueue is non-blocking: when the buffer is full the event is
// dropped and counted. Event rows are best-effort telemetry; the
// authoritative outcome is written by the results writer.
type Recorder struct {
	conn    repository.Querier
	l       *log.Logger
	timeout time.Duration

	jobs    chan model.Event
	wg      sync.WaitGroup
	workers int

	dropped atomic.Int64
	failed  atomic.Int64
}

type Option func(*Recorder)

func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) { r.l = l }
}

func WithWorkers(n int) Option {
	return func(r *Recorder) { r.workers = n }
}

func WithBuffer(n int) Option {
	return func(r *Recorder) { r.jobs = make(chan model.Event, n) }
}

// WithWriteTimeout bounds each insert so a stalled database cannot
// wedge the worker pool.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.timeout = d }
}

func New(conn repository.Querier, opts ...Option) *Recorder {
	r := &Recorder{
		conn:    conn,
		l:       log.Default(),
		timeout: 5 * time.Second,
		jobs:    make(chan model.Event, 256),
		workers: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the worker pool.
func (r *Recorder) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Enqueue hands an event to the worker pool. Safe to call from the
// scheduler goroutine; never blocks.
func (r *Recorder) Enqueue(ev model.Event) {
	select {
	case r.jobs <- ev:
	default:
		r.dropped.Add(1)
		r.l.Warn("event buffer full, dropping event",
			log.String("type", string(ev.Type)),
			log.Int64("dropped", r.dropped.Load()))
	}
}

// Close drains the remaining buffer and stops the workers.
func (r *Recorder) Close() {
	close(r.jobs)
	r.wg.Wait()
}

// Dropped returns the number of events lost to a full buffer.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Failed returns the number of events whose insert failed.
func (r *Recorder) Failed() int64 { return r.failed.Load() }

func (r *Recorder) worker() {
	defer r.wg.Done()
	for ev := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := eventRepo.Create(ctx, r.conn, &ev); err != nil {
			r.failed.Add(1)
			r.l.Error("writing event failed",
				log.String("type", string(ev.Type)),
				log.String("raceId", ev.RaceID.String()),
				log.ErrorField(err))
		}
		cancel()
	}
}
