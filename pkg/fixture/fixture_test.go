package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

const sampleFixture = `
race:
  laps: 12
track:
  key: rainring
  name: Rain Ring
  lap_length_km: 4.5
  weather:
    - time: 0
      chance: 0.1
    - time: 600
      chance: 0.9
teams:
  - number: 5
    name: Thunder Racing
    color: "#ff2200"
    pit_efficiency: 0.7
    player_id: 11111111-2222-3333-4444-555555555555
    tire: soft
    driver:
      name: Max Fast
      skill_level: 0.9
      stamina: 0.8
      weather_tolerance: 0.6
      consistency: 0.7
      focus: 0.8
    car_stats:
      handling: 0.8
      acceleration: 0.7
      top_speed: 0.9
      reliability: 0.6
      fuel_consumption: 0.5
      tire_wear: 0.5
  - number: 9
    name: Steady Motorsport
    pit_efficiency: 0.4
    driver:
      name: Ann Steady
      skill_level: 0.5
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "race.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFixture(t *testing.T) {
	fix, err := Load(writeFixture(t, sampleFixture))
	require.NoError(t, err)

	assert.Equal(t, 12, fix.Race.Laps)
	assert.Equal(t, "rainring", fix.Track.Key)
	require.Len(t, fix.Teams, 2)

	track := fix.BuildTrack()
	assert.Equal(t, 12, track.Laps)
	assert.InDelta(t, 4.5, track.LapLengthKm, 1e-9)
	// No sampled points in the fixture: an oval is generated.
	assert.NotEmpty(t, track.Sampled)
	assert.InDelta(t, 0.9, track.Weather.ChanceAt(600), 1e-9)

	cars := fix.BuildCars(7)
	require.Len(t, cars, 2)

	player := cars[0]
	assert.Equal(t, 5, player.Number)
	assert.Equal(t, model.TireSoft, player.Tire.Type)
	assert.Equal(t, "Max Fast", player.Driver.Name)
	assert.InDelta(t, 0.9, player.Stats.TopSpeed, 1e-9)
	require.NotNil(t, player.PlayerID)
	assert.InDelta(t, 100.0, player.Fuel, 1e-9)
	assert.GreaterOrEqual(t, player.BasePerformance, 0.9)
	assert.LessOrEqual(t, player.BasePerformance, 1.1)

	ai := cars[1]
	assert.Nil(t, ai.PlayerID)
	assert.Equal(t, model.TireMedium, ai.Tire.Type)
	assert.Equal(t, model.DefaultCarStats(), ai.Stats)

	// Same seed, same grid.
	again := fix.BuildCars(7)
	assert.Equal(t, player.BasePerformance, again[0].BasePerformance)
}

func TestLoadFixtureValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing laps",
			content: "race: {}\ntrack: {key: a, lap_length_km: 1}\nteams: [{number: 1}]",
			wantErr: "race.laps",
		},
		{
			name:    "missing track key",
			content: "race: {laps: 3}\ntrack: {lap_length_km: 1}\nteams: [{number: 1}]",
			wantErr: "track.key",
		},
		{
			name:    "no teams",
			content: "race: {laps: 3}\ntrack: {key: a, lap_length_km: 1}\nteams: []",
			wantErr: "at least one team",
		},
		{
			name: "duplicate numbers",
			content: "race: {laps: 3}\ntrack: {key: a, lap_length_km: 1}\n" +
				"teams: [{number: 1}, {number: 1}]",
			wantErr: "duplicate team number",
		},
		{
			name: "bad tire",
			content: "race: {laps: 3}\ntrack: {key: a, lap_length_km: 1}\n" +
				"teams: [{number: 1, tire: slicks}]",
			wantErr: "invalid tire type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFixture(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
