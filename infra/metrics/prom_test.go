package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/voltgo/core/reservation"
)

func TestPromSinkRecordsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	sink := s.(*PromSink)

	require.NoError(t, sink.RecordReservationEvent(reservation.Event{Kind: reservation.KindReserved, StationID: "1", HoldSeconds: 300, RemainingSeconds: 300, Active: 1}))
	require.NoError(t, sink.RecordReservationEvent(reservation.Event{Kind: reservation.KindReserved, StationID: "3", HoldSeconds: 300, RemainingSeconds: 300, Active: 2}))
	require.NoError(t, sink.RecordReservationEvent(reservation.Event{Kind: reservation.KindTick, HoldSeconds: 300, Active: 2}))
	require.NoError(t, sink.RecordReservationEvent(reservation.Event{Kind: reservation.KindReleased, StationID: "1", Reason: reservation.ReasonCancelled, HoldSeconds: 300, RemainingSeconds: 240, Active: 1}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.reservations.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.reservations.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.releases.WithLabelValues("1", "cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.releases.WithLabelValues("1", "expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.active))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.heldFor))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordReservationEvent(reservation.Event{Kind: reservation.KindTick}))
	require.NoError(t, second.RecordReservationEvent(reservation.Event{Kind: reservation.KindTick}))
	assert.Equal(t, 2.0, testutil.ToFloat64(second.(*PromSink).ticks))
}
