package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyracing/race-manager-go/testsupport/basedata"
	"github.com/tinyracing/race-manager-go/testsupport/testdb"
)

func TestAddExperience(t *testing.T) {
	pool := testdb.InitTestDb()
	fix := basedata.CreateSampleFixture(pool)
	ctx := context.Background()

	before, err := LoadByID(ctx, pool, fix.Driver.ID)
	require.NoError(t, err)

	changed, err := AddExperience(ctx, pool, fix.Driver.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	after, err := LoadByID(ctx, pool, fix.Driver.ID)
	require.NoError(t, err)
	assert.InDelta(t, before.Experience+50, after.Experience, 1e-9)
	assert.Equal(t, before.Name, after.Name)
}
