package view

import "github.com/kilianp07/voltgo/core/model"

// MapSettings positions the map surface.
type MapSettings struct {
	Center model.Position
	Zoom   int
}

// DefaultMapSettings centers on Bengaluru.
func DefaultMapSettings() MapSettings {
	return MapSettings{Center: model.Position{Lat: 12.9716, Lng: 77.5946}, Zoom: 12}
}

// Marker is a pin on the map.
type Marker struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Position model.Position `json:"position"`
}

// Map is handed to the rendering surface as is.
type Map struct {
	Center  model.Position `json:"center"`
	Zoom    int            `json:"zoom"`
	Markers []Marker       `json:"markers"`
}

// NewMap places one marker per record.
func NewMap(records []model.Station, s MapSettings) Map {
	m := Map{Center: s.Center, Zoom: s.Zoom, Markers: make([]Marker, 0, len(records))}
	for _, st := range records {
		m.Markers = append(m.Markers, Marker{ID: st.ID, Label: st.Name, Position: st.Position})
	}
	return m
}
