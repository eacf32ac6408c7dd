// Package metrics defines the sink interface reservation lifecycle events are
// recorded through. Concrete sinks (Prometheus, InfluxDB) live in
// infra/metrics and register themselves with RegisterSink; NewSink builds a
// MultiSink when several are configured.
package metrics
