// Package journal keeps an append-only audit trail of reservation lifecycle
// events. It is never replayed into the reservation store.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/voltgo/core/reservation"
)

// Query selects journal entries. Zero fields do not filter.
type Query struct {
	Start     time.Time
	End       time.Time
	StationID string
	Kind      reservation.Kind
	// Limit keeps only the most recent entries when positive.
	Limit int
}

// Match reports whether ev satisfies the query filters (Limit aside).
func (q Query) Match(ev reservation.Event) bool {
	if !q.Start.IsZero() && ev.Time.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && ev.Time.After(q.End) {
		return false
	}
	if q.StationID != "" && ev.StationID != q.StationID {
		return false
	}
	if q.Kind != "" && ev.Kind != q.Kind {
		return false
	}
	return true
}

func (q Query) tail(res []reservation.Event) []reservation.Event {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// Store persists lifecycle events and supports querying.
type Store interface {
	Append(ctx context.Context, ev reservation.Event) error
	Query(ctx context.Context, q Query) ([]reservation.Event, error)
	Close() error
}

// Recorder feeds a Store from the event stream. Tick events carry no station
// and are not journaled.
type Recorder struct {
	Store   Store
	Timeout time.Duration
}

// HandleReservationEvent appends ev unless it is a tick.
func (r Recorder) HandleReservationEvent(ev reservation.Event) error {
	if ev.Kind == reservation.KindTick {
		return nil
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := r.Store.Append(ctx, ev); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// Open creates the store selected by backend ("jsonl" or "sqlite").
func Open(backend, path string, maxSizeMB, maxBackups, maxAgeDays int) (Store, error) {
	switch backend {
	case "jsonl", "":
		return NewJSONLStore(path, maxSizeMB, maxBackups, maxAgeDays)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown journal backend %s", backend)
	}
}
