package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/v2xlab/obu/api/vehicles"
	"github.com/v2xlab/obu/config"
	"github.com/v2xlab/obu/core/consumer"
	coremetrics "github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/core/model"
	coremon "github.com/v2xlab/obu/core/monitoring"
	coremqtt "github.com/v2xlab/obu/core/mqtt"
	"github.com/v2xlab/obu/infra/logger"
	"github.com/v2xlab/obu/infra/metrics"
	"github.com/v2xlab/obu/infra/mqtt"
	"github.com/v2xlab/obu/internal/eventbus"
)

// Consumer mirrors the telemetry of the bus into a local vehicle model.
type Consumer struct {
	cfg     *config.Config
	client  *mqtt.PahoClient
	vehicle *model.VehicleState
	changes *eventbus.TypedBus[model.StateChange]
	disp    *consumer.Dispatcher
	sink    coremetrics.MetricsSink
	log     logger.Logger
}

// NewConsumer builds the consumer from cfg without connecting.
func NewConsumer(cfg *config.Config) (*Consumer, error) {
	sink, err := setup(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("consumer")
	changes := eventbus.NewTyped[model.StateChange]()
	vehicle := model.NewVehicleState(func(ch model.StateChange) {
		log.Debugw("vehicle state changed", map[string]any{"field": string(ch.Field), "state": ch.Snapshot})
		changes.Publish(ch)
	})
	client := mqtt.NewPahoClient(cfg.MQTT.WithClientID("obu-consumer"), "consumer")
	disp := consumer.New(model.NewTopics(cfg.Topic.Prefix), vehicle, log, sink)
	return &Consumer{cfg: cfg, client: client, vehicle: vehicle, changes: changes, disp: disp, sink: sink, log: log}, nil
}

// Vehicle returns the vehicle model fed by the bus.
func (c *Consumer) Vehicle() *model.VehicleState { return c.vehicle }

// State returns the bus connection state.
func (c *Consumer) State() coremqtt.State { return c.client.State() }

// Run subscribes to the telemetry topics and applies messages until ctx is
// cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	defer coremon.Flush(flushTimeout)
	if err := c.disp.Subscribe(c.client); err != nil {
		return err
	}
	collected := metrics.StartStateCollector(ctx, c.changes, c.sink)
	defer func() { <-collected }()
	if err := c.client.Connect(ctx); err != nil {
		if errors.Is(err, coremqtt.ErrConnectTimeout) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}
	serveHTTP(ctx, c.cfg.Metrics.PrometheusPort, c.log, map[string]http.Handler{
		"/api/vehicle": vehicles.NewStateHandler(c.vehicle),
	})
	<-ctx.Done()
	return nil
}

// Close disconnects from the broker and stops the state fan-out.
func (c *Consumer) Close() error {
	c.changes.Close()
	closeSink(c.sink)
	if err := c.client.Close(); err != nil && !errors.Is(err, coremqtt.ErrNotConnected) {
		return err
	}
	return nil
}
