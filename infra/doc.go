// Package infra contains technical adapters: the zerolog logger, Sentry
// monitoring, Prometheus and InfluxDB sinks, the MQTT publisher and the
// Redis mirror. These packages depend only on the interfaces and event
// types defined in the core packages.
package infra
