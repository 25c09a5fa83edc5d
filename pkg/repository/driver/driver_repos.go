package driver

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
)

func LoadByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (*model.Driver, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where id=$1", selector), id)
	var d model.Driver
	err := row.Scan(&d.ID, &d.Name, &d.SkillLevel, &d.Stamina,
		&d.WeatherTolerance, &d.Experience, &d.Consistency, &d.Focus)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// AddExperience credits the post-race experience award, returns number
// of rows changed.
func AddExperience(
	ctx context.Context, conn repository.Querier,
	id uuid.UUID, amount float64,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"update driver set experience = experience + $2 where id=$1", id, amount)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const selector = string(`
select id, name, skill_level, stamina, weather_tolerance,
       experience, consistency, focus
from driver
`)
