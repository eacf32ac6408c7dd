package metrics

import (
	coremetrics "github.com/kilianp07/voltgo/core/metrics"
	"github.com/kilianp07/voltgo/core/reservation"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records reservation lifecycle events in Prometheus metrics.
type PromSink struct {
	reservations *prometheus.CounterVec
	releases     *prometheus.CounterVec
	ticks        prometheus.Counter
	active       prometheus.Gauge
	heldFor      prometheus.Histogram
}

// NewPromSink registers reservation metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_total",
		Help: "Total number of holds placed",
	}, []string{"station_id"})
	releases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_releases_total",
		Help: "Total number of holds released, by reason",
	}, []string{"station_id", "reason"})
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservation_ticks_total",
		Help: "Number of countdown ticks processed",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reservations_active",
		Help: "Number of holds currently active",
	})
	heldFor := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reservation_held_seconds",
		Help:    "Countdown seconds consumed by a hold before release",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 900},
	})

	var err error
	if reservations, err = register(reg, reservations); err != nil {
		return nil, err
	}
	if releases, err = register(reg, releases); err != nil {
		return nil, err
	}
	if ticks, err = register(reg, ticks); err != nil {
		return nil, err
	}
	if active, err = register(reg, active); err != nil {
		return nil, err
	}
	if heldFor, err = register(reg, heldFor); err != nil {
		return nil, err
	}
	return &PromSink{reservations: reservations, releases: releases, ticks: ticks, active: active, heldFor: heldFor}, nil
}

// register reuses an already registered collector of the same name so sinks
// can be rebuilt against the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordReservationEvent updates counters and the active gauge.
func (s *PromSink) RecordReservationEvent(ev reservation.Event) error {
	switch ev.Kind {
	case reservation.KindReserved:
		s.reservations.WithLabelValues(ev.StationID).Inc()
	case reservation.KindReleased:
		s.releases.WithLabelValues(ev.StationID, string(ev.Reason)).Inc()
		s.heldFor.Observe(float64(ev.HoldSeconds - ev.RemainingSeconds))
	case reservation.KindTick:
		s.ticks.Inc()
	}
	s.active.Set(float64(ev.Active))
	return nil
}
