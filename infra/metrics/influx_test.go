package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/voltgo/core/factory"
	coremetrics "github.com/kilianp07/voltgo/core/metrics"
	"github.com/kilianp07/voltgo/core/reservation"
)

func TestInfluxSinkWritesEventPoint(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v2/write") {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()
	ts := time.Unix(1700000000, 0)
	ev := reservation.Event{ID: "e1", Kind: reservation.KindReleased, StationID: "3", Reason: reservation.ReasonExpired, RemainingSeconds: 0, HoldSeconds: 300, Active: 1, Time: ts}
	require.NoError(t, sink.RecordReservationEvent(ev))

	assert.True(t, strings.HasPrefix(body, "reservation_event,"), body)
	assert.Contains(t, body, "station_id=3")
	assert.Contains(t, body, "kind=released")
	assert.Contains(t, body, "reason=expired")
	assert.Contains(t, body, "hold_seconds=300i")
	assert.Contains(t, body, "1700000000000000000")
}

func TestInfluxSinkWritesTickPoint(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()
	require.NoError(t, sink.RecordReservationEvent(reservation.Event{Kind: reservation.KindTick, Active: 2, Time: time.Unix(1, 0)}))
	assert.True(t, strings.HasPrefix(body, "reservation_tick,"), body)
	assert.Contains(t, body, "active=2i")
}

func TestInfluxFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL, "token", "org", "bucket")
	assert.IsType(t, coremetrics.NopSink{}, sink)
}

func TestFactoryBuildsRegisteredSinks(t *testing.T) {
	sink, err := coremetrics.NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)

	sink, err = coremetrics.NewSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	assert.NoError(t, sink.RecordReservationEvent(reservation.Event{Kind: reservation.KindTick}))

	_, err = coremetrics.NewSink([]factory.ModuleConfig{{Type: "unknown"}})
	assert.ErrorContains(t, err, "influx")
}
