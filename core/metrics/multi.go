package metrics

import (
	"errors"

	"github.com/kilianp07/voltgo/core/reservation"
)

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordReservationEvent forwards the event to every sink. A failing sink does
// not stop the others; all errors are joined.
func (m *MultiSink) RecordReservationEvent(ev reservation.Event) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordReservationEvent(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
