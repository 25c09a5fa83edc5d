package team

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
)

// Entrant is one team with its driver and chassis, as entered into a
// race. The server turns entrants into live car state at race load.
type Entrant struct {
	Team     model.Team
	Driver   model.Driver
	CarID    uuid.UUID
	CarStats model.CarStats
	PlayerID *string
}

func Create(
	ctx context.Context, conn repository.Querier,
	t *model.Team, playerID *string,
) error {
	row := conn.QueryRow(ctx, `
	insert into team (number, name, color, logo, pit_efficiency, player_id)
	values ($1,$2,$3,$4,$5,$6)
	returning id
	`, t.Number, t.Name, t.Color, t.Logo, t.PitEfficiency, playerID)

	return row.Scan(&t.ID)
}

func CreateDriver(
	ctx context.Context, conn repository.Querier,
	teamID uuid.UUID, d *model.Driver,
) error {
	row := conn.QueryRow(ctx, `
	insert into driver (
		team_id, name, skill_level, stamina, weather_tolerance,
		experience, consistency, focus)
	values ($1,$2,$3,$4,$5,$6,$7,$8)
	returning id
	`, teamID, d.Name, d.SkillLevel, d.Stamina, d.WeatherTolerance,
		d.Experience, d.Consistency, d.Focus)

	return row.Scan(&d.ID)
}

func CreateCar(
	ctx context.Context, conn repository.Querier,
	teamID uuid.UUID, number int, stats model.CarStats,
) (uuid.UUID, error) {
	row := conn.QueryRow(ctx, `
	insert into car (team_id, number, stats) values ($1,$2,$3)
	returning id
	`, teamID, number, stats)

	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func LoadByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (*model.Team, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where id=$1", selector), id)
	var t model.Team
	if err := scan(&t, row); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadEntrants resolves the full grid of a race: every registered team
// joined with its driver and car.
func LoadEntrants(
	ctx context.Context, conn repository.Querier, raceID uuid.UUID,
) ([]*Entrant, error) {
	rows, err := conn.Query(ctx, `
	select t.id, t.number, t.name, t.logo, t.color, t.pit_efficiency, t.player_id,
	       d.id, d.name, d.skill_level, d.stamina, d.weather_tolerance,
	       d.experience, d.consistency, d.focus,
	       c.id, c.stats
	from registration r
	join team t on t.id = r.team_id
	join driver d on d.team_id = t.id
	join car c on c.team_id = t.id
	where r.race_id = $1
	order by t.number
	`, raceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Entrant, error) {
		var e Entrant
		err := row.Scan(
			&e.Team.ID, &e.Team.Number, &e.Team.Name, &e.Team.Logo,
			&e.Team.Color, &e.Team.PitEfficiency, &e.PlayerID,
			&e.Driver.ID, &e.Driver.Name, &e.Driver.SkillLevel,
			&e.Driver.Stamina, &e.Driver.WeatherTolerance,
			&e.Driver.Experience, &e.Driver.Consistency, &e.Driver.Focus,
			&e.CarID, &e.CarStats)
		if err != nil {
			return nil, err
		}
		return &e, nil
	})
}

func DeleteByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from team where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const selector = string(`
select id, number, name, logo, color, pit_efficiency from team
`)

func scan(t *model.Team, row pgx.Row) error {
	return row.Scan(&t.ID, &t.Number, &t.Name, &t.Logo, &t.Color, &t.PitEfficiency)
}
