package metrics

import (
	"time"

	"github.com/v2xlab/obu/core/model"
)

// Direction tells whether a message was sent or received by this process.
type Direction string

const (
	DirectionPublish Direction = "publish"
	DirectionReceive Direction = "receive"
)

// MessageEvent describes one bus message handled by the producer or consumer.
type MessageEvent struct {
	Topic     string
	Kind      model.TopicKind
	Direction Direction
	OK        bool
	Error     string
	Latency   time.Duration
	Time      time.Time
}

// MetricsSink records bus traffic for observability purposes.
type MetricsSink interface {
	RecordMessage(ev MessageEvent) error
}

// VehicleStateEvent is a snapshot of the consumer side vehicle after a setter ran.
type VehicleStateEvent struct {
	Field model.Field
	State model.VehicleSnapshot
	Time  time.Time
}

// VehicleStateRecorder records vehicle state snapshots.
type VehicleStateRecorder interface {
	RecordVehicleState(ev VehicleStateEvent) error
}

// RouteTickEvent captures one emitting tick of the route runner.
type RouteTickEvent struct {
	Route  string
	Cursor int
	OK     bool
	Time   time.Time
}

// RouteTickRecorder records route runner progress.
type RouteTickRecorder interface {
	RecordRouteTick(ev RouteTickEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMessage(MessageEvent) error           { return nil }
func (NopSink) RecordVehicleState(VehicleStateEvent) error { return nil }
func (NopSink) RecordRouteTick(RouteTickEvent) error       { return nil }
