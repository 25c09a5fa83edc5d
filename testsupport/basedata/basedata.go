package basedata

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinyracing/race-manager-go/pkg/model"
	raceRepo "github.com/tinyracing/race-manager-go/pkg/repository/race"
	teamRepo "github.com/tinyracing/race-manager-go/pkg/repository/team"
	trackRepo "github.com/tinyracing/race-manager-go/pkg/repository/track"
)

// Fixture is a minimal consistent set of rows: one track, one race in
// ONGOING state and one registered team with driver and car.
type Fixture struct {
	Track   *model.Track
	Race    *model.Race
	Team    *model.Team
	Driver  *model.Driver
	Entrant *teamRepo.Entrant
}

// CreateSampleFixture seeds the test database. Fatal on error; this is
// test scaffolding, not production code.
func CreateSampleFixture(pool *pgxpool.Pool) *Fixture {
	ctx := context.Background()

	track := &model.Track{
		Key:         "testring",
		Name:        "Test Ring",
		Laps:        5,
		LapLengthKm: 4.2,
		Sampled:     []model.TrackPoint{{X: 0, Y: 0}, {X: 1, Y: 0, Curvature: 0.2}},
		Weather:     model.NewWeatherTimeline([]model.WeatherPoint{{Time: 0, Chance: 0.1}}),
	}
	if err := trackRepo.Create(ctx, pool, track); err != nil {
		log.Fatalf("create track: %v", err)
	}

	team := &model.Team{Number: 5, Name: "Sample Racing", Color: "#ff0000", PitEfficiency: 0.6}
	if err := teamRepo.Create(ctx, pool, team, nil); err != nil {
		log.Fatalf("create team: %v", err)
	}

	driver := &model.Driver{
		Name: "Sam Pelder", SkillLevel: 0.7, Stamina: 0.6,
		WeatherTolerance: 0.5, Consistency: 0.6, Focus: 0.7,
	}
	if err := teamRepo.CreateDriver(ctx, pool, team.ID, driver); err != nil {
		log.Fatalf("create driver: %v", err)
	}

	if _, err := teamRepo.CreateCar(ctx, pool, team.ID, 5, model.DefaultCarStats()); err != nil {
		log.Fatalf("create car: %v", err)
	}

	race := &model.Race{TrackID: track.ID, Laps: 5, Status: model.RaceOngoing}
	if err := raceRepo.Create(ctx, pool, race); err != nil {
		log.Fatalf("create race: %v", err)
	}
	if _, err := raceRepo.Register(ctx, pool, race.ID, team.ID); err != nil {
		log.Fatalf("register team: %v", err)
	}

	entrants, err := teamRepo.LoadEntrants(ctx, pool, race.ID)
	if err != nil || len(entrants) == 0 {
		log.Fatalf("load entrants: %v", err)
	}

	return &Fixture{
		Track:   track,
		Race:    race,
		Team:    team,
		Driver:  driver,
		Entrant: entrants[0],
	}
}
