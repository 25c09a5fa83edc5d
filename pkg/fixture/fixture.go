package fixture

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tinyracing/race-manager-go/pkg/model"
)

// Fixture describes a complete race setup: the circuit, the scripted
// weather and the full grid. Loaded once at server start.
type Fixture struct {
	Race  RaceSpec    `yaml:"race"`
	Track TrackSpec   `yaml:"track"`
	Teams []EntrySpec `yaml:"teams"`
}

type RaceSpec struct {
	Laps      int        `yaml:"laps"`
	StartTime *time.Time `yaml:"start_time"`
}

type TrackSpec struct {
	Key         string               `yaml:"key"`
	Name        string               `yaml:"name"`
	LapLengthKm float64              `yaml:"lap_length_km"`
	Points      []model.TrackPoint   `yaml:"points"`
	Weather     []model.WeatherPoint `yaml:"weather"`
}

type EntrySpec struct {
	model.Team `yaml:",inline"`
	PlayerID   *string         `yaml:"player_id"`
	Driver     model.Driver    `yaml:"driver"`
	CarStats   *model.CarStats `yaml:"car_stats"`
	Tire       string          `yaml:"tire"`
	Fuel       *float64        `yaml:"fuel"`
}

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fix Fixture
	if err := yaml.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := fix.validate(); err != nil {
		return nil, err
	}
	return &fix, nil
}

func (f *Fixture) validate() error {
	if f.Race.Laps <= 0 {
		return fmt.Errorf("race.laps must be positive, got %d", f.Race.Laps)
	}
	if f.Track.Key == "" {
		return fmt.Errorf("track.key is required")
	}
	if f.Track.LapLengthKm <= 0 {
		return fmt.Errorf("track.lap_length_km must be positive")
	}
	if len(f.Teams) == 0 {
		return fmt.Errorf("at least one team is required")
	}
	seen := map[int]bool{}
	for i := range f.Teams {
		e := &f.Teams[i]
		if seen[e.Number] {
			return fmt.Errorf("duplicate team number %d", e.Number)
		}
		seen[e.Number] = true
		if e.Tire != "" {
			if _, err := model.ParseTireType(e.Tire); err != nil {
				return fmt.Errorf("team %d: %w", e.Number, err)
			}
		}
	}
	return nil
}

// BuildTrack assembles the domain track. A fixture without sampled
// points gets a generated oval so every track has usable geometry.
func (f *Fixture) BuildTrack() *model.Track {
	points := f.Track.Points
	if len(points) == 0 {
		points = GenerateOval(120)
	}
	return &model.Track{
		Key:         f.Track.Key,
		Name:        f.Track.Name,
		Laps:        f.Race.Laps,
		LapLengthKm: f.Track.LapLengthKm,
		Sampled:     points,
		Weather:     model.NewWeatherTimeline(f.Track.Weather),
	}
}

// BuildCars assembles the grid. BasePerformance is drawn from
// [0.9, 1.1] with the given seed so a fixture plus seed reproduces the
// exact same race.
func (f *Fixture) BuildCars(seed int64) []*model.Car {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // game randomness
	cars := make([]*model.Car, 0, len(f.Teams))
	for i := range f.Teams {
		e := &f.Teams[i]
		stats := model.DefaultCarStats()
		if e.CarStats != nil {
			stats = *e.CarStats
		}
		tire := model.TireMedium
		if e.Tire != "" {
			tire, _ = model.ParseTireType(e.Tire)
		}
		fuel := 100.0
		if e.Fuel != nil {
			fuel = *e.Fuel
		}
		cars = append(cars, &model.Car{
			Number:          e.Number,
			Team:            e.Team,
			Driver:          e.Driver,
			Stats:           stats,
			Tire:            model.Tire{Type: tire},
			Fuel:            fuel,
			Style:           model.StyleNormal,
			Status:          model.StatusRacing,
			BasePerformance: 0.9 + rng.Float64()*0.2,
			PlayerID:        e.PlayerID,
		})
	}
	return cars
}

// GenerateOval samples a closed loop with two straights and two
// constant-radius turns, which gives the corner model something to
// bite on even for synthetic tracks.
func GenerateOval(n int) []model.TrackPoint {
	points := make([]model.TrackPoint, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n) * 2 * math.Pi
		x := math.Cos(t) * 200
		y := math.Sin(t) * 120
		// Curvature peaks on the short ends of the ellipse.
		curvature := 0.3 * math.Abs(math.Cos(t))
		points[i] = model.TrackPoint{X: x, Y: y, Curvature: curvature}
	}
	return points
}
