package model

import "fmt"

// Status is the occupancy reported by the catalog for a station.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusOccupied  Status = "Occupied"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusOccupied
}

// Position is a WGS84 coordinate passed through to map surfaces untouched.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Station is an immutable charging station record from the catalog.
type Station struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Address  string   `json:"address" yaml:"address"`
	Position Position `json:"position" yaml:"position"`
	Status   Status   `json:"status" yaml:"status"`
	ETA      string   `json:"eta" yaml:"eta"` // display only, e.g. "5 mins away"
}

// Validate checks that the record can be served.
func (s Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station id is required")
	}
	if !s.Status.Valid() {
		return fmt.Errorf("station %s: unknown status %q", s.ID, s.Status)
	}
	return nil
}

// Reservable returns true if a hold may be placed on the station.
func (s Station) Reservable() bool {
	return s.Status == StatusAvailable
}
