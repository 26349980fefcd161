package scenarios

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/v2xlab/obu/core/consumer"
	"github.com/v2xlab/obu/core/model"
	coremqtt "github.com/v2xlab/obu/core/mqtt"
	"github.com/v2xlab/obu/core/producer"
	"github.com/v2xlab/obu/core/route"
	"github.com/v2xlab/obu/infra/logger"
	"github.com/v2xlab/obu/infra/metrics"
)

const prefix = "qa/obu"

// loopback hands every publish straight to the dispatcher.
type loopback struct {
	disp  *consumer.Dispatcher
	count int
}

func (l *loopback) Publish(_ context.Context, topic string, payload []byte) error {
	l.count++
	l.disp.Handle(coremqtt.Message{Topic: topic, Payload: payload})
	return nil
}

// manual never fires on its own; ticks come from the scenario steps.
type manual struct{}

type noTicket struct{}

func (noTicket) Cancel() {}

func (manual) Every(time.Duration, func()) route.Ticket { return noTicket{} }

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	routes := route.NewRegistry()
	if err := (route.File{Routes: sc.Routes}).Register(routes); err != nil {
		t.Fatalf("routes: %v", err)
	}

	topics := model.NewTopics(prefix)
	vehicle := model.NewVehicleState(nil)
	bus := &loopback{disp: consumer.New(topics, vehicle, logger.NopLogger{}, sink)}
	pub := producer.New(bus, topics, routes, logger.NopLogger{}, sink, producer.Config{Scheduler: manual{}})
	defer pub.Shutdown()

	ctx := context.Background()
	for i, st := range sc.Steps {
		switch {
		case st.Command != nil:
			if err := pub.HandleCommand(ctx, *st.Command); err != nil {
				t.Logf("step %d: %v", i, err)
			}
		case st.Raw != nil:
			bus.disp.Handle(coremqtt.Message{Topic: topics.Topic(st.Raw.Kind), Payload: []byte(st.Raw.Payload)})
		default:
			for n := 0; n < st.Ticks; n++ {
				pub.Tick(ctx)
			}
		}
	}

	if bus.count != sc.Expected.Published {
		t.Errorf("scenario %s expected %d published, got %d", sc.Name, sc.Expected.Published, bus.count)
	}
	if got := vehicle.Snapshot(); got != sc.Expected.Vehicle {
		t.Errorf("scenario %s expected vehicle %+v, got %+v", sc.Name, sc.Expected.Vehicle, got)
	}
	s, ok := pub.Session()
	switch {
	case sc.Expected.Cursor == nil && ok:
		t.Errorf("scenario %s expected no route session, got %s", sc.Name, s.Name)
	case sc.Expected.Cursor != nil && !ok:
		t.Errorf("scenario %s expected a route session", sc.Name)
	case sc.Expected.Cursor != nil && s.Cursor != *sc.Expected.Cursor:
		t.Errorf("scenario %s expected cursor %d, got %d", sc.Name, *sc.Expected.Cursor, s.Cursor)
	}
	if bus.count > 0 {
		if n, err := testutil.GatherAndCount(reg, "obu_bus_messages_total"); err != nil || n == 0 {
			t.Errorf("scenario %s: no bus message series recorded (%v)", sc.Name, err)
		}
	}
}
