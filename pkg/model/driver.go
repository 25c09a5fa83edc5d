package model

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// DrivingStyle is the player-selected mode trading speed against
// tire/fuel consumption.
type DrivingStyle string

const (
	StyleRelax      DrivingStyle = "Relax"
	StyleNormal     DrivingStyle = "Normal"
	StyleAggressive DrivingStyle = "Aggressive"
)

func ParseDrivingStyle(s string) (DrivingStyle, error) {
	switch s {
	case "relax", "Relax":
		return StyleRelax, nil
	case "normal", "Normal":
		return StyleNormal, nil
	case "aggressive", "Aggressive":
		return StyleAggressive, nil
	default:
		return "", fmt.Errorf("invalid driving style: %s. Use relax, normal, or aggressive", s)
	}
}

// Driver attributes. All skills are 0.0 to 1.0.
type Driver struct {
	ID               uuid.UUID `json:"uid" yaml:"-"`
	Name             string    `json:"name" yaml:"name"`
	SkillLevel       float64   `json:"skill_level" yaml:"skill_level"`
	Stamina          float64   `json:"stamina" yaml:"stamina"`
	WeatherTolerance float64   `json:"weather_tolerance" yaml:"weather_tolerance"`
	Experience       float64   `json:"experience" yaml:"experience"`
	Consistency      float64   `json:"consistency" yaml:"consistency"`
	Focus            float64   `json:"focus" yaml:"focus"`
	// StressLevel increases with time when aggressive, decreases slowly when
	// normal, decreases faster when relaxed.
	StressLevel float64 `json:"stress_level" yaml:"-"`
}
