package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/voltgo/core/metrics"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/kilianp07/voltgo/infra/logger"
)

// InfluxSink writes reservation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordReservationEvent writes the event as a "reservation_event" point.
// Ticks only carry the active count and go to "reservation_tick".
func (s *InfluxSink) RecordReservationEvent(ev reservation.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ev.Kind == reservation.KindTick {
		p := write.NewPointWithMeasurement("reservation_tick").
			AddTag("component", "reservation_store").
			AddField("active", ev.Active).
			SetTime(ev.Time)
		return s.writeAPI.WritePoint(ctx, p)
	}
	p := write.NewPointWithMeasurement("reservation_event").
		AddTag("station_id", ev.StationID).
		AddTag("kind", string(ev.Kind)).
		AddTag("component", "reservation_store")
	if ev.Reason != "" {
		p = p.AddTag("reason", string(ev.Reason))
	}
	p = p.AddField("event_id", ev.ID).
		AddField("remaining_seconds", ev.RemainingSeconds).
		AddField("hold_seconds", ev.HoldSeconds).
		AddField("active", ev.Active).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
