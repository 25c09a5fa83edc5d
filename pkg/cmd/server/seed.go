package server

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinyracing/race-manager-go/pkg/model"
	raceRepo "github.com/tinyracing/race-manager-go/pkg/repository/race"
	teamRepo "github.com/tinyracing/race-manager-go/pkg/repository/team"
	trackRepo "github.com/tinyracing/race-manager-go/pkg/repository/track"
)

// ensureTrack reuses an existing track row with the fixture's key so
// restarts don't pile up duplicates, creating it on first use.
func ensureTrack(ctx context.Context, pool *pgxpool.Pool, t *model.Track) error {
	existing, err := trackRepo.LoadByKey(ctx, pool, t.Key)
	if err == nil {
		t.ID = existing.ID
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return trackRepo.Create(ctx, pool, t)
}

// seedEntrant persists one grid entry (team, driver, car, registration)
// and writes the generated ids back into the live car state, which the
// event log and result rows reference.
func seedEntrant(
	ctx context.Context, pool *pgxpool.Pool,
	race *model.Race, car *model.Car,
) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := teamRepo.Create(ctx, tx, &car.Team, car.PlayerID); err != nil {
			return err
		}
		if err := teamRepo.CreateDriver(ctx, tx, car.Team.ID, &car.Driver); err != nil {
			return err
		}
		carID, err := teamRepo.CreateCar(ctx, tx, car.Team.ID, car.Number, car.Stats)
		if err != nil {
			return err
		}
		car.ID = carID
		_, err = raceRepo.Register(ctx, tx, race.ID, car.Team.ID)
		return err
	})
}
