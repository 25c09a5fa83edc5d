package track

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/pkg/repository"
)

// trackData is the jsonb payload: the sampled centerline plus the
// scripted weather timeline.
type trackData struct {
	Points  []model.TrackPoint    `json:"points"`
	Weather model.WeatherTimeline `json:"weather"`
}

func Create(ctx context.Context, conn repository.Querier, t *model.Track) error {
	row := conn.QueryRow(ctx, `
	insert into track (track_key, name, laps, lap_length_km, data)
	values ($1,$2,$3,$4,$5)
	returning id
	`, t.Key, t.Name, t.Laps, t.LapLengthKm,
		trackData{Points: t.Sampled, Weather: t.Weather})

	return row.Scan(&t.ID)
}

func LoadByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (*model.Track, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where id=$1", selector), id)
	return scanTrack(row)
}

func LoadByKey(
	ctx context.Context, conn repository.Querier, key string,
) (*model.Track, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where track_key=$1", selector), key)
	return scanTrack(row)
}

func LoadAll(ctx context.Context, conn repository.Querier) ([]*model.Track, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf("%s order by name", selector))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Track, error) {
		return scanTrack(row)
	})
}

func DeleteByID(
	ctx context.Context, conn repository.Querier, id uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from track where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const selector = string(`
select id, track_key, name, laps, lap_length_km, data from track
`)

func scanTrack(row pgx.Row) (*model.Track, error) {
	var t model.Track
	var data trackData
	if err := row.Scan(&t.ID, &t.Key, &t.Name, &t.Laps, &t.LapLengthKm, &data); err != nil {
		return nil, err
	}
	t.Sampled = data.Points
	t.Weather = data.Weather
	return &t, nil
}
