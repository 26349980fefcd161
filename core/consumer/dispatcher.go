// Package consumer applies telemetry messages from the bus to the vehicle
// model.
package consumer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/v2xlab/obu/core/logger"
	"github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/core/model"
	"github.com/v2xlab/obu/core/monitoring"
	coremqtt "github.com/v2xlab/obu/core/mqtt"
)

// VehicleSetters is the write side of the vehicle model.
type VehicleSetters interface {
	SetSpeed(kmh float64)
	SetActiveStatus(active bool)
	SetLatitude(lat float64)
	SetLongitude(lon float64)
	SetColor(c model.Color)
}

type handlerFunc func(fields map[string]any)

// Dispatcher routes each message by topic kind to the vehicle setters. Every
// field is applied independently; a bad field never blocks the others.
type Dispatcher struct {
	topics  model.Topics
	vehicle VehicleSetters
	log     logger.Logger
	sink    metrics.MetricsSink
	table   map[model.TopicKind]handlerFunc
}

// New creates a Dispatcher for the topics derived from topics.Prefix.
func New(topics model.Topics, vehicle VehicleSetters, log logger.Logger, sink metrics.MetricsSink) *Dispatcher {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	d := &Dispatcher{topics: topics, vehicle: vehicle, log: log, sink: sink}
	d.table = map[model.TopicKind]handlerFunc{
		model.KindSpeed:     d.onSpeed,
		model.KindHeartbeat: d.onHeartbeat,
		model.KindRoute:     d.onRoute,
	}
	return d
}

// Subscribe registers Handle for every telemetry topic.
func (d *Dispatcher) Subscribe(sub coremqtt.Subscriber) error {
	for _, k := range model.Kinds {
		topic := d.topics.Topic(k)
		if err := sub.Subscribe(topic, d.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

// Handle decodes one message and applies it. Malformed payloads are logged
// and dropped.
func (d *Dispatcher) Handle(msg coremqtt.Message) {
	kind, ok := d.topics.Kind(msg.Topic)
	if !ok {
		d.log.Debugf("ignoring message on %s", msg.Topic)
		return
	}
	ev := metrics.MessageEvent{Topic: msg.Topic, Kind: kind, Direction: metrics.DirectionReceive, OK: true, Time: time.Now()}
	fields, err := decode(msg.Payload)
	if err != nil {
		d.log.Errorf("drop malformed message on %s: %v", msg.Topic, err)
		monitoring.CaptureException(err, "consumer", "topic", msg.Topic)
		ev.OK = false
		ev.Error = err.Error()
		d.record(ev)
		return
	}
	d.log.Debugw("received", map[string]any{"topic": msg.Topic, "payload": string(msg.Payload)})
	d.table[kind](fields)
	d.record(ev)
}

// decode parses payload as one JSON object. Numbers stay json.Number so an
// out of range value is rejected by its own field instead of the whole
// message.
func decode(payload []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return fields, nil
}

func (d *Dispatcher) record(ev metrics.MessageEvent) {
	if err := d.sink.RecordMessage(ev); err != nil {
		d.log.Warnf("record message: %v", err)
	}
}

func (d *Dispatcher) onSpeed(fields map[string]any) {
	v, ok := fields["speed"]
	if !ok {
		return
	}
	n, valid := model.ToNumber(v)
	if !valid {
		d.log.Warnf("speed %v is not a number, using 0", v)
		n = 0
	}
	d.vehicle.SetSpeed(n)
}

func (d *Dispatcher) onHeartbeat(fields map[string]any) {
	if v, ok := fields["heartbeat"]; ok {
		d.vehicle.SetActiveStatus(model.Truthy(v))
	}
}

func (d *Dispatcher) onRoute(fields map[string]any) {
	if lat, ok := coordinate(fields, "latitude"); ok {
		d.vehicle.SetLatitude(lat)
	} else if v, present := fields["latitude"]; present {
		d.log.Warnf("ignoring invalid latitude %v", v)
	}
	if lon, ok := coordinate(fields, "longitude"); ok {
		d.vehicle.SetLongitude(lon)
	} else if v, present := fields["longitude"]; present {
		d.log.Warnf("ignoring invalid longitude %v", v)
	}
	if v, ok := fields["color"]; ok {
		d.vehicle.SetColor(d.color(v))
	}
}

func coordinate(fields map[string]any, key string) (float64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	return model.ToNumber(v)
}

// color maps an empty or falsy value to "no". Unknown names fall back to
// "no" as well.
func (d *Dispatcher) color(v any) model.Color {
	if !model.Truthy(v) {
		return model.ColorNone
	}
	s, ok := v.(string)
	if !ok {
		d.log.Warnf("color %v is not a name, using %s", v, model.ColorNone)
		return model.ColorNone
	}
	c, ok := model.ParseColor(s)
	if !ok {
		d.log.Warnf("unknown color %q, using %s", s, model.ColorNone)
	}
	return c
}
