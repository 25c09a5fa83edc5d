package result

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
)

// Upsert writes the final standing of one car. The (race_id, car_id)
// key makes a retried finish transition overwrite instead of
// duplicating rows.
func Upsert(ctx context.Context, conn repository.Querier, res *model.RaceResult) error {
	_, err := conn.Exec(ctx, `
	insert into race_result (
		race_id, car_id, driver_id, team_id, car_number,
		final_position, race_time_seconds, status,
		laps_completed, total_distance_km)
	values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	on conflict (race_id, car_id) do update set
		final_position    = excluded.final_position,
		race_time_seconds = excluded.race_time_seconds,
		status            = excluded.status,
		laps_completed    = excluded.laps_completed,
		total_distance_km = excluded.total_distance_km
	`, res.RaceID, res.CarID, res.DriverID, res.TeamID, res.CarNumber,
		res.FinalPosition, res.RaceTimeSeconds, res.Status,
		res.LapsCompleted, res.TotalDistanceKm)

	return err
}

func LoadByRaceID(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) ([]*model.RaceResult, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where race_id=$1 order by final_position", selector), raceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.RaceResult, error) {
		var res model.RaceResult
		if err := scan(&res, row); err != nil {
			return nil, err
		}
		return &res, nil
	})
}

func DeleteByRaceID(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from race_result where race_id=$1", raceID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const selector = string(`
select race_id, car_id, driver_id, team_id, car_number,
       final_position, race_time_seconds, status,
       laps_completed, total_distance_km
from race_result
`)

func scan(res *model.RaceResult, row pgx.Row) error {
	return row.Scan(&res.RaceID, &res.CarID, &res.DriverID, &res.TeamID,
		&res.CarNumber, &res.FinalPosition, &res.RaceTimeSeconds, &res.Status,
		&res.LapsCompleted, &res.TotalDistanceKm)
}
