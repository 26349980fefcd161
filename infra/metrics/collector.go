package metrics

import (
	"context"

	coremetrics "github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/core/model"
	"github.com/v2xlab/obu/infra/logger"
	"github.com/v2xlab/obu/internal/eventbus"
)

// StartStateCollector subscribes to vehicle state changes and records them
// on sink when it supports VehicleStateRecorder. It stops when ctx is
// cancelled or the bus is closed. The returned channel is closed on exit.
func StartStateCollector(ctx context.Context, bus *eventbus.TypedBus[model.StateChange], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.VehicleStateRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("state-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ch, ok := <-sub:
				if !ok {
					return
				}
				ev := coremetrics.VehicleStateEvent{Field: ch.Field, State: ch.Snapshot, Time: ch.Time}
				if err := rec.RecordVehicleState(ev); err != nil {
					log.Warnf("record vehicle state: %v", err)
				}
			}
		}
	}()
	return done
}
