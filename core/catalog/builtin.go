package catalog

import "github.com/kilianp07/voltgo/core/model"

var builtin = []model.Station{
	{
		ID:       "1",
		Name:     "Thunderplus EV Charging Station",
		Address:  "RR Nagar, Bengaluru",
		Position: model.Position{Lat: 12.925845, Lng: 77.520464},
		Status:   model.StatusAvailable,
		ETA:      "5 mins away",
	},
	{
		ID:       "2",
		Name:     "ElectricPe Charging Station",
		Address:  "Jayanagar, Bengaluru",
		Position: model.Position{Lat: 12.9342, Lng: 77.5884},
		Status:   model.StatusOccupied,
		ETA:      "10 mins away",
	},
	{
		ID:       "3",
		Name:     "Kazam Charging Station",
		Address:  "Vijayanagar, Bengaluru",
		Position: model.Position{Lat: 12.97194, Lng: 77.532745},
		Status:   model.StatusAvailable,
		ETA:      "3 mins away",
	},
}

// Default returns the built-in Bengaluru catalog.
func Default() *Catalog {
	c, err := New(builtin)
	if err != nil {
		panic(err)
	}
	return c
}
