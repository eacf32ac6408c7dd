// Package export writes reservation journal entries in formats suited for
// spreadsheets and scripts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/voltgo/core/reservation"
)

// WriteJSONLines writes one JSON event per line.
func WriteJSONLines(w io.Writer, events []reservation.Event) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes events with a header row.
func WriteCSV(w io.Writer, events []reservation.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "id", "kind", "station_id", "reason", "remaining_seconds", "hold_seconds", "active"}); err != nil {
		return err
	}
	for _, ev := range events {
		rec := []string{
			ev.Time.UTC().Format(time.RFC3339),
			ev.ID,
			string(ev.Kind),
			ev.StationID,
			string(ev.Reason),
			strconv.Itoa(ev.RemainingSeconds),
			strconv.Itoa(ev.HoldSeconds),
			strconv.Itoa(ev.Active),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format ("json" or "csv").
func Write(w io.Writer, format string, events []reservation.Event) error {
	switch format {
	case "", "json":
		return WriteJSONLines(w, events)
	case "csv":
		return WriteCSV(w, events)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
