package results

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/model"
	driverRepo "github.com/tinyracing/race-manager-go/pkg/repository/driver"
	raceRepo "github.com/tinyracing/race-manager-go/pkg/repository/race"
	resultRepo "github.com/tinyracing/race-manager-go/pkg/repository/result"
)

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Writer persists the final classification when a race finishes. The
// whole write runs in one transaction and is retried with exponential
// backoff; thanks to the (race_id, car_id) upsert a retry after a
// partial failure cannot duplicate rows. Until the write succeeds the
// race row stays ONGOING.
type Writer struct {
	db         TxBeginner
	l          *log.Logger
	maxElapsed time.Duration
}

type Option func(*Writer)

func WithLogger(l *log.Logger) Option {
	return func(w *Writer) { w.l = l }
}

// WithMaxElapsed caps the total retry budget.
func WithMaxElapsed(d time.Duration) Option {
	return func(w *Writer) { w.maxElapsed = d }
}

func New(db TxBeginner, opts ...Option) *Writer {
	w := &Writer{
		db:         db,
		l:          log.Default(),
		maxElapsed: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Persist writes all results, awards driver experience and marks the
// race FINISHED, atomically. Safe to call again after a failure.
func (w *Writer) Persist(
	ctx context.Context, raceID uuid.UUID, results []model.RaceResult,
) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = w.maxElapsed

	attempt := 0
	op := func() error {
		attempt++
		if err := w.persistOnce(ctx, raceID, results); err != nil {
			w.l.Warn("persisting race results failed",
				log.String("raceId", raceID.String()),
				log.Int("attempt", attempt),
				log.ErrorField(err))
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		w.l.Error("race results could not be persisted, race stays ONGOING",
			log.String("raceId", raceID.String()),
			log.ErrorField(err))
		return err
	}
	w.l.Info("race results persisted",
		log.String("raceId", raceID.String()),
		log.Int("cars", len(results)))
	return nil
}

func (w *Writer) persistOnce(
	ctx context.Context, raceID uuid.UUID, results []model.RaceResult,
) error {
	return pgx.BeginFunc(ctx, w.db, func(tx pgx.Tx) error {
		race, err := raceRepo.LoadByID(ctx, tx, raceID)
		if err != nil {
			return err
		}
		// Experience is awarded only on the first successful finish;
		// a repeated transition still refreshes the result rows.
		awardExperience := race.Status != model.RaceFinished

		for i := range results {
			res := &results[i]
			if err := resultRepo.Upsert(ctx, tx, res); err != nil {
				return err
			}
			if !awardExperience {
				continue
			}
			award := ExperienceAward(res.FinalPosition)
			if _, err := driverRepo.AddExperience(ctx, tx, res.DriverID, award); err != nil {
				return err
			}
		}
		_, err = raceRepo.UpdateStatus(ctx, tx, raceID, model.RaceFinished)
		return err
	})
}

// ExperienceAward returns the post-race experience for a final
// position: 50 for the win, 5 less per place, floored at 5.
func ExperienceAward(position int) float64 {
	award := 50.0 - 5.0*float64(position-1)
	if award < 5.0 {
		award = 5.0
	}
	return award
}
