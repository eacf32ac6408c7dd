// Package view joins the immutable catalog with reservation state for
// presentation surfaces. Nothing here mutates either side.
package view

import (
	"fmt"

	"github.com/kilianp07/voltgo/core/model"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/core/search"
)

const (
	LabelReserve  = "Reserve Slot"
	LabelReserved = "Reserved"
)

// StationView is one station card.
type StationView struct {
	model.Station
	Reserved         bool   `json:"reserved"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
	TimeLeft         string `json:"time_left,omitempty"`
	CanReserve       bool   `json:"can_reserve"`
	CanCancel        bool   `json:"can_cancel"`
	ReserveLabel     string `json:"reserve_label"`
}

// Station builds the view of a single record.
func Station(st model.Station, snap map[string]reservation.Entry) StationView {
	v := StationView{Station: st, ReserveLabel: LabelReserve}
	if e, ok := snap[st.ID]; ok && e.Reserved {
		v.Reserved = true
		v.RemainingSeconds = e.RemainingSeconds
		v.TimeLeft = FormatTimeLeft(e.RemainingSeconds)
		v.CanCancel = true
		v.ReserveLabel = LabelReserved
	}
	v.CanReserve = st.Reservable() && !v.Reserved
	return v
}

// Build projects records in order.
func Build(records []model.Station, snap map[string]reservation.Entry) []StationView {
	out := make([]StationView, 0, len(records))
	for _, st := range records {
		out = append(out, Station(st, snap))
	}
	return out
}

// FormatTimeLeft renders seconds as MM:SS.
func FormatTimeLeft(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Page is the full search screen.
type Page struct {
	Query    string        `json:"query"`
	Message  string        `json:"message,omitempty"`
	NotFound bool          `json:"not_found"`
	Stations []StationView `json:"stations"`
	Map      Map           `json:"map"`
}

// NewPage renders a search result against the reservation snapshot.
func NewPage(res search.Result, snap map[string]reservation.Entry, m MapSettings) Page {
	return Page{
		Query:    res.Query,
		Message:  res.Message,
		NotFound: res.NotFound,
		Stations: Build(res.Stations, snap),
		Map:      NewMap(res.Stations, m),
	}
}
