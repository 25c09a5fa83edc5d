//nolint:errcheck // ok for test code
package event

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/testsupport/basedata"
	"github.com/tinyracing/race-manager-go/testsupport/testdb"
)

func initTestDb() (*pgxpool.Pool, *basedata.Fixture) {
	pool := testdb.InitTestDb()
	return pool, basedata.CreateSampleFixture(pool)
}

func TestEventCreateAndLoad(t *testing.T) {
	pool, fix := initTestDb()
	ctx := context.Background()

	num := 5
	tire := "Hard"
	fuel := 88.5
	events := []*model.Event{
		{
			RaceID: fix.Race.ID, Type: model.EventStartRace,
			Description: "race started", TimeOffsetSeconds: 0,
		},
		{
			RaceID: fix.Race.ID, Type: model.EventPitStop,
			Description: "car #5 completed pit stop", TimeOffsetSeconds: 120.5,
			CarNumber: &num, CarID: &fix.Entrant.CarID,
			TeamID: &fix.Team.ID, DriverID: &fix.Driver.ID,
			Tire: &tire, Fuel: &fuel,
		},
	}
	for _, ev := range events {
		require.NoError(t, Create(ctx, pool, ev))
	}

	loaded, err := LoadByRaceID(ctx, pool, fix.Race.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Ordered by time offset.
	assert.Equal(t, model.EventStartRace, loaded[0].Type)
	assert.Nil(t, loaded[0].CarNumber)

	stop := loaded[1]
	assert.Equal(t, model.EventPitStop, stop.Type)
	require.NotNil(t, stop.CarNumber)
	assert.Equal(t, 5, *stop.CarNumber)
	require.NotNil(t, stop.Tire)
	assert.Equal(t, "Hard", *stop.Tire)
	require.NotNil(t, stop.Fuel)
	assert.InDelta(t, 88.5, *stop.Fuel, 1e-9)

	count, err := CountByRaceID(ctx, pool, fix.Race.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEventDeleteByRaceID(t *testing.T) {
	pool, fix := initTestDb()
	ctx := context.Background()

	require.NoError(t, Create(ctx, pool, &model.Event{
		RaceID: fix.Race.ID, Type: model.EventOther, TimeOffsetSeconds: 1,
	}))

	deleted, err := DeleteByRaceID(ctx, pool, fix.Race.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	count, err := CountByRaceID(ctx, pool, fix.Race.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
