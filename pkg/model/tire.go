package model

import "fmt"

// TireType is the tire compound fitted to a car.
type TireType string

const (
	TireSoft         TireType = "Soft"
	TireMedium       TireType = "Medium"
	TireHard         TireType = "Hard"
	TireIntermediate TireType = "Intermediate"
	TireWet          TireType = "Wet"
)

// ParseTireType accepts the lowercase wire form used by the HTTP API.
func ParseTireType(s string) (TireType, error) {
	switch s {
	case "soft", "Soft":
		return TireSoft, nil
	case "medium", "Medium":
		return TireMedium, nil
	case "hard", "Hard":
		return TireHard, nil
	case "intermediate", "Intermediate":
		return TireIntermediate, nil
	case "wet", "Wet":
		return TireWet, nil
	default:
		return "", fmt.Errorf("invalid tire type: %s", s)
	}
}

// IsWetCompound reports whether the compound is meant for a wet track.
func (t TireType) IsWetCompound() bool {
	return t == TireIntermediate || t == TireWet
}

// Tire is the tire state of a car. Wear runs from 0 (fresh) to 100.
type Tire struct {
	Type TireType `json:"type"`
	Wear float64  `json:"wear"`
}
