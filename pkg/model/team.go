package model

import "github.com/gofrs/uuid/v5"

// Team owns cars and drivers. PitEfficiency (0.0 to 1.0) scales
// pit-stop duration; higher efficiency means shorter stops.
type Team struct {
	ID            uuid.UUID `json:"uid" yaml:"-"`
	Number        int       `json:"number" yaml:"number"`
	Name          string    `json:"name" yaml:"name"`
	Logo          string    `json:"logo" yaml:"logo"`
	Color         string    `json:"color" yaml:"color"`
	PitEfficiency float64   `json:"pit_efficiency" yaml:"pit_efficiency"`
}
