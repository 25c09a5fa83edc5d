package race

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, r *model.Race) error {
	row := conn.QueryRow(ctx, `
	insert into race (track_id, laps, status, start_time)
	values ($1,$2,$3,$4)
	returning id
	`, r.TrackID, r.Laps, r.Status, r.StartTime)

	return row.Scan(&r.ID)
}

func LoadByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (*model.Race, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where id=$1", selector), id)
	var r model.Race
	if err := scan(&r, row); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadByStatus returns races in any of the given states, oldest first.
// The watchdog uses this to find races due to start or go stale.
func LoadByStatus(
	ctx context.Context, conn repository.Querier, statuses ...model.RaceStatus,
) ([]*model.Race, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where status = any($1) order by record_stamp", selector),
		statuses)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Race, error) {
		var r model.Race
		if err := scan(&r, row); err != nil {
			return nil, err
		}
		return &r, nil
	})
}

// UpdateStatus transitions the persisted race state, returns number of
// rows changed.
func UpdateStatus(
	ctx context.Context, conn repository.Querier,
	id uuid.UUID, status model.RaceStatus,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"update race set status=$2 where id=$1", id, status)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func SetStartTime(
	ctx context.Context, conn repository.Querier,
	id uuid.UUID, startTime time.Time,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"update race set start_time=$2 where id=$1", id, startTime)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func Register(
	ctx context.Context, conn repository.Querier, raceID, teamID uuid.UUID,
) (*model.Registration, error) {
	row := conn.QueryRow(ctx, `
	insert into registration (race_id, team_id) values ($1,$2)
	returning id
	`, raceID, teamID)

	reg := model.Registration{RaceID: raceID, TeamID: teamID}
	if err := row.Scan(&reg.ID); err != nil {
		return nil, err
	}
	return &reg, nil
}

func LoadRegistrations(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) ([]*model.Registration, error) {
	rows, err := conn.Query(ctx, `
	select id, race_id, team_id from registration where race_id=$1 order by record_stamp
	`, raceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Registration, error) {
		var reg model.Registration
		if err := row.Scan(&reg.ID, &reg.RaceID, &reg.TeamID); err != nil {
			return nil, err
		}
		return &reg, nil
	})
}

func DeleteByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from race where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const selector = string(`
select id, track_id, laps, status, start_time from race
`)

func scan(r *model.Race, row pgx.Row) error {
	return row.Scan(&r.ID, &r.TrackID, &r.Laps, &r.Status, &r.StartTime)
}
