// Package metrics defines the recorders used to observe bus traffic, route
// progress and vehicle state. Sinks are built from configuration through a
// factory registry; infra/metrics registers the "nop", "prometheus" and
// "influx" implementations. Several configured sinks are combined in a
// MultiSink.
package metrics
