package event

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, ev *model.Event) error {
	_, err := conn.Exec(ctx, `
	insert into event (
		race_id, event_type, description, time_offset_seconds,
		car_number, car_id, team_id, driver_id, tire, fuel)
	values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, ev.RaceID, ev.Type, ev.Description, ev.TimeOffsetSeconds,
		ev.CarNumber, ev.CarID, ev.TeamID, ev.DriverID, ev.Tire, ev.Fuel)

	return err
}

func LoadByRaceID(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) ([]*model.Event, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where race_id=$1 order by time_offset_seconds, id", selector),
		raceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Event, error) {
		var ev model.Event
		if err := scan(&ev, row); err != nil {
			return nil, err
		}
		return &ev, nil
	})
}

func CountByRaceID(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) (int, error) {
	row := conn.QueryRow(ctx, "select count(*) from event where race_id=$1", raceID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// deletes all events of a race, returns number of rows deleted.
func DeleteByRaceID(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from event where race_id=$1", raceID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = string(`
select race_id, event_type, coalesce(description,''), time_offset_seconds,
       car_number, car_id, team_id, driver_id, tire, fuel
from event
`)

func scan(ev *model.Event, row pgx.Row) error {
	return row.Scan(&ev.RaceID, &ev.Type, &ev.Description, &ev.TimeOffsetSeconds,
		&ev.CarNumber, &ev.CarID, &ev.TeamID, &ev.DriverID, &ev.Tire, &ev.Fuel)
}
