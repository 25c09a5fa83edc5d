package race

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyracing/race-manager-go/pkg/model"
	"github.com/tinyracing/race-manager-go/testsupport/basedata"
	"github.com/tinyracing/race-manager-go/testsupport/testdb"
)

func TestRaceLifecycle(t *testing.T) {
	pool := testdb.InitTestDb()
	fix := basedata.CreateSampleFixture(pool)
	ctx := context.Background()

	race := &model.Race{
		TrackID: fix.Track.ID,
		Laps:    10,
		Status:  model.RaceRegistrationOpen,
	}
	require.NoError(t, Create(ctx, pool, race))
	require.NotEqual(t, race.ID, fix.Race.ID)

	loaded, err := LoadByID(ctx, pool, race.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RaceRegistrationOpen, loaded.Status)
	assert.Equal(t, 10, loaded.Laps)
	assert.Nil(t, loaded.StartTime)

	startAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	changed, err := SetStartTime(ctx, pool, race.ID, startAt)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	changed, err = UpdateStatus(ctx, pool, race.ID, model.RaceOngoing)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	loaded, err = LoadByID(ctx, pool, race.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RaceOngoing, loaded.Status)
	require.NotNil(t, loaded.StartTime)
	assert.WithinDuration(t, startAt, *loaded.StartTime, time.Second)
}

func TestLoadByStatus(t *testing.T) {
	pool := testdb.InitTestDb()
	fix := basedata.CreateSampleFixture(pool)
	ctx := context.Background()

	// Fixture race is ONGOING; add one UPCOMING.
	upcoming := &model.Race{TrackID: fix.Track.ID, Laps: 3, Status: model.RaceUpcoming}
	require.NoError(t, Create(ctx, pool, upcoming))

	ongoing, err := LoadByStatus(ctx, pool, model.RaceOngoing)
	require.NoError(t, err)
	require.Len(t, ongoing, 1)
	assert.Equal(t, fix.Race.ID, ongoing[0].ID)

	both, err := LoadByStatus(ctx, pool, model.RaceOngoing, model.RaceUpcoming)
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestRegistrations(t *testing.T) {
	pool := testdb.InitTestDb()
	fix := basedata.CreateSampleFixture(pool)
	ctx := context.Background()

	regs, err := LoadRegistrations(ctx, pool, fix.Race.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, fix.Team.ID, regs[0].TeamID)

	// Double registration violates the unique constraint.
	_, err = Register(ctx, pool, fix.Race.ID, fix.Team.ID)
	assert.Error(t, err)
}
