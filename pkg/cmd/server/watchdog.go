package server

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinyracing/race-manager-go/log"
	"github.com/tinyracing/race-manager-go/pkg/model"
	raceRepo "github.com/tinyracing/race-manager-go/pkg/repository/race"
	"github.com/tinyracing/race-manager-go/pkg/simulation"
)

// Races that never got going are canceled once their start time is this
// far in the past.
const staleRaceAfter = time.Hour

// statusMirror is the shared, concurrency-safe view of the hosted
// race's lifecycle status; the HTTP handlers use the same one.
type statusMirror interface {
	Status() model.RaceStatus
	SetStatus(model.RaceStatus)
}

// runWatchdog periodically starts the hosted race once its scheduled
// start time has passed and sweeps stale races left over from earlier
// runs into CANCELED.
func runWatchdog(
	ctx context.Context, pool *pgxpool.Pool,
	race *model.Race, mirror statusMirror, sched *simulation.Scheduler,
	interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkScheduledStart(ctx, pool, race, mirror, sched)
			sweepStaleRaces(ctx, pool, race)
		}
	}
}

func checkScheduledStart(
	ctx context.Context, pool *pgxpool.Pool,
	race *model.Race, mirror statusMirror, sched *simulation.Scheduler,
) {
	status := mirror.Status()
	if status == model.RaceOngoing || status == model.RaceFinished ||
		status == model.RaceCanceled {
		return
	}
	if race.StartTime == nil || time.Now().Before(*race.StartTime) {
		return
	}
	log.Info("Scheduled start time reached, starting race",
		log.String("raceId", race.ID.String()))
	if err := sched.StartNow(ctx); err != nil {
		log.Error("could not start race", log.ErrorField(err))
		return
	}
	if _, err := raceRepo.UpdateStatus(ctx, pool, race.ID, model.RaceOngoing); err != nil {
		log.Error("could not persist race status", log.ErrorField(err))
		return
	}
	mirror.SetStatus(model.RaceOngoing)
}

func sweepStaleRaces(ctx context.Context, pool *pgxpool.Pool, current *model.Race) {
	races, err := raceRepo.LoadByStatus(ctx, pool,
		model.RaceUpcoming, model.RaceRegistrationOpen, model.RaceRegistrationClosed)
	if err != nil {
		log.Error("could not load pending races", log.ErrorField(err))
		return
	}
	cutoff := time.Now().Add(-staleRaceAfter)
	for _, r := range races {
		if r.ID == current.ID {
			continue
		}
		if r.StartTime == nil || r.StartTime.After(cutoff) {
			continue
		}
		if _, err := raceRepo.UpdateStatus(ctx, pool, r.ID, model.RaceCanceled); err != nil {
			log.Error("could not cancel stale race",
				log.String("raceId", r.ID.String()), log.ErrorField(err))
			continue
		}
		log.Info("Canceled stale race", log.String("raceId", r.ID.String()))
	}
}
