package metrics

import "github.com/kilianp07/voltgo/core/reservation"

// Sink records reservation lifecycle events for observability purposes.
type Sink interface {
	RecordReservationEvent(ev reservation.Event) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordReservationEvent(reservation.Event) error { return nil }
