// Package producer turns control commands into telemetry messages on the bus
// and owns the route runner.
package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/v2xlab/obu/core/control"
	"github.com/v2xlab/obu/core/logger"
	"github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/core/model"
	coremqtt "github.com/v2xlab/obu/core/mqtt"
	"github.com/v2xlab/obu/core/route"
)

// ErrInvalidCommand is returned for a command whose value cannot be
// transformed into a payload.
var ErrInvalidCommand = errors.New("invalid command")

// Config tunes the route runner. Zero values select the defaults.
type Config struct {
	Interval  time.Duration
	Scheduler route.Scheduler
}

// Publisher holds the producer state: the activity flag, the route registry
// and the runner replaying the selected route.
type Publisher struct {
	bus    coremqtt.Publisher
	topics model.Topics
	routes *route.Registry
	runner *route.Runner
	active atomic.Bool
	log    logger.Logger
	sink   metrics.MetricsSink
}

// New creates an inactive Publisher without a selected route.
func New(bus coremqtt.Publisher, topics model.Topics, routes *route.Registry, log logger.Logger, sink metrics.MetricsSink, cfg Config) *Publisher {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if routes == nil {
		routes = route.NewRegistry()
	}
	p := &Publisher{bus: bus, topics: topics, routes: routes, log: log, sink: sink}
	p.runner = route.NewRunner(route.GateFunc(p.Active), p.publishRoute, route.RunnerConfig{
		Interval:  cfg.Interval,
		Scheduler: cfg.Scheduler,
		Logger:    log,
		OnTick:    p.recordTick,
	})
	return p
}

// Active reports the activity flag.
func (p *Publisher) Active() bool { return p.active.Load() }

// SetActive sets the activity flag without publishing a heartbeat.
func (p *Publisher) SetActive(v bool) { p.active.Store(v) }

// Session returns the running route session, if any.
func (p *Publisher) Session() (route.SessionInfo, bool) { return p.runner.Session() }

// HandleCommand applies one control command. Unknown command types are
// logged and ignored.
func (p *Publisher) HandleCommand(ctx context.Context, cmd control.Command) error {
	switch cmd.Type {
	case control.TypeSpeed:
		return p.PublishSpeed(ctx, cmd.Value)
	case control.TypeHeartbeat:
		return p.PublishHeartbeat(ctx, cmd.String())
	case control.TypeRoute:
		p.SelectRoute(ctx, cmd.String())
		return nil
	default:
		p.log.Warnf("ignoring unknown command type %q", cmd.Type)
		return nil
	}
}

// PublishSpeed publishes {"speed":n}. Numeric strings are accepted, anything
// that is not a number is rejected without publishing.
func (p *Publisher) PublishSpeed(ctx context.Context, v any) error {
	n, ok := model.ToNumber(v)
	if !ok {
		err := fmt.Errorf("%w: speed %v is not a number", ErrInvalidCommand, v)
		p.log.Warnf("%v", err)
		return err
	}
	return p.publish(ctx, model.KindSpeed, model.SpeedEvent{Speed: n})
}

// PublishHeartbeat sets the activity flag to value == "ACTIVE" and publishes
// it. Going inactive pauses the running route; its cursor is kept.
func (p *Publisher) PublishHeartbeat(ctx context.Context, value string) error {
	active := value == control.HeartbeatActive
	p.active.Store(active)
	if !active {
		p.runner.Pause()
	}
	return p.publish(ctx, model.KindHeartbeat, model.HeartbeatEvent{Heartbeat: active})
}

// SelectRoute starts replaying the named route from its first waypoint,
// replacing the current session. It reports false and leaves the current
// session alone when the route is unknown.
func (p *Publisher) SelectRoute(ctx context.Context, name string) bool {
	wps, ok := p.routes.Lookup(name)
	if !ok {
		p.log.Debugf("unknown route %q, keeping current session", name)
		return false
	}
	p.runner.Start(ctx, name, wps)
	return true
}

// Tick runs one route tick immediately.
func (p *Publisher) Tick(ctx context.Context) { p.runner.Tick(ctx) }

// Run applies commands one at a time until cmds is closed or ctx is done.
func (p *Publisher) Run(ctx context.Context, cmds <-chan control.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-cmds:
			if !ok {
				return
			}
			if err := p.HandleCommand(ctx, cmd); err != nil {
				p.log.Errorf("command %s: %v", cmd.Type, err)
			}
		}
	}
}

// Shutdown stops the route runner. It is safe to call more than once.
func (p *Publisher) Shutdown() {
	p.runner.Stop()
}

func (p *Publisher) publishRoute(ctx context.Context, ev model.RouteEvent) error {
	return p.publish(ctx, model.KindRoute, ev)
}

func (p *Publisher) publish(ctx context.Context, kind model.TopicKind, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	topic := p.topics.Topic(kind)
	start := time.Now()
	err = p.bus.Publish(ctx, topic, payload)
	ev := metrics.MessageEvent{
		Topic:     topic,
		Kind:      kind,
		Direction: metrics.DirectionPublish,
		OK:        err == nil,
		Latency:   time.Since(start),
		Time:      start,
	}
	if err != nil {
		ev.Error = err.Error()
		p.log.Errorf("publish %s: %v", kind, err)
	}
	if rerr := p.sink.RecordMessage(ev); rerr != nil {
		p.log.Warnf("record message: %v", rerr)
	}
	return err
}

func (p *Publisher) recordTick(res route.TickResult) {
	rec, ok := p.sink.(metrics.RouteTickRecorder)
	if !ok {
		return
	}
	ev := metrics.RouteTickEvent{Route: res.Route, Cursor: res.Cursor, OK: res.Err == nil, Time: time.Now()}
	if err := rec.RecordRouteTick(ev); err != nil {
		p.log.Warnf("record route tick: %v", err)
	}
}
