package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/v2xlab/obu/core/metrics"
)

// PromSink exposes bus traffic, route progress and vehicle state as
// Prometheus metrics.
type PromSink struct {
	messages   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	routeTicks *prometheus.CounterVec
	cursor     *prometheus.GaugeVec
	vehicle    *prometheus.GaugeVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	messages, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "obu_bus_messages_total",
		Help: "Total number of bus messages published or received",
	}, []string{"kind", "direction", "ok"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obu_bus_publish_latency_seconds",
		Help:    "Time until the broker acknowledged a publish",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	routeTicks, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "obu_route_ticks_total",
		Help: "Number of emitting route ticks",
	}, []string{"route", "ok"}))
	if err != nil {
		return nil, err
	}
	cursor, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "obu_route_cursor",
		Help: "Index of the last emitted waypoint",
	}, []string{"route"}))
	if err != nil {
		return nil, err
	}
	vehicle, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "obu_vehicle_state",
		Help: "Current consumer side vehicle state",
	}, []string{"field"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{messages: messages, latency: latency, routeTicks: routeTicks, cursor: cursor, vehicle: vehicle}, nil
}

// register adds c to reg, reusing an identical collector that is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMessage counts the message and observes publish latency.
func (s *PromSink) RecordMessage(ev coremetrics.MessageEvent) error {
	s.messages.WithLabelValues(string(ev.Kind), string(ev.Direction), strconv.FormatBool(ev.OK)).Inc()
	if ev.Direction == coremetrics.DirectionPublish && ev.OK {
		s.latency.WithLabelValues(string(ev.Kind)).Observe(ev.Latency.Seconds())
	}
	return nil
}

// RecordRouteTick counts the tick and tracks the cursor.
func (s *PromSink) RecordRouteTick(ev coremetrics.RouteTickEvent) error {
	s.routeTicks.WithLabelValues(ev.Route, strconv.FormatBool(ev.OK)).Inc()
	s.cursor.WithLabelValues(ev.Route).Set(float64(ev.Cursor))
	return nil
}

// RecordVehicleState sets the numeric vehicle gauges.
func (s *PromSink) RecordVehicleState(ev coremetrics.VehicleStateEvent) error {
	st := ev.State
	active := 0.0
	if st.Active {
		active = 1
	}
	s.vehicle.WithLabelValues("speed").Set(st.Speed)
	s.vehicle.WithLabelValues("active").Set(active)
	s.vehicle.WithLabelValues("latitude").Set(st.Latitude)
	s.vehicle.WithLabelValues("longitude").Set(st.Longitude)
	return nil
}
