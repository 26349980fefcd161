package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/v2xlab/obu/api/vehicles"
	"github.com/v2xlab/obu/config"
	coremetrics "github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/core/model"
	coremon "github.com/v2xlab/obu/core/monitoring"
	coremqtt "github.com/v2xlab/obu/core/mqtt"
	"github.com/v2xlab/obu/core/producer"
	"github.com/v2xlab/obu/core/route"
	"github.com/v2xlab/obu/infra/control"
	"github.com/v2xlab/obu/infra/logger"
	"github.com/v2xlab/obu/infra/mqtt"
)

// ProducerOptions are the runtime inputs of the producer.
type ProducerOptions struct {
	// Route is started right after connecting when set.
	Route string
	// Active is the initial activity flag.
	Active bool
	// Control delivers line-delimited JSON commands, usually stdin.
	Control io.Reader
}

// Producer publishes the vehicle telemetry of one onboard unit.
type Producer struct {
	cfg    *config.Config
	client *mqtt.PahoClient
	pub    *producer.Publisher
	routes *route.Registry
	sink   coremetrics.MetricsSink
	log    logger.Logger
}

// NewProducer builds the producer from cfg without connecting.
func NewProducer(cfg *config.Config) (*Producer, error) {
	sink, err := setup(cfg)
	if err != nil {
		return nil, err
	}
	routes, err := LoadRoutes(cfg.Route.File)
	if err != nil {
		return nil, err
	}
	log := logger.New("producer")
	client := mqtt.NewPahoClient(cfg.MQTT.WithClientID("obu-producer"), "producer")
	pub := producer.New(client, model.NewTopics(cfg.Topic.Prefix), routes, log, sink, producer.Config{
		Interval: cfg.Route.Interval(),
	})
	return &Producer{cfg: cfg, client: client, pub: pub, routes: routes, sink: sink, log: log}, nil
}

// LoadRoutes returns the built-in routes plus those of path, if set.
func LoadRoutes(path string) (*route.Registry, error) {
	reg := route.NewRegistry()
	if path == "" {
		return reg, nil
	}
	f, err := route.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	if err := f.Register(reg); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	return reg, nil
}

// Publisher exposes the command handling state.
func (p *Producer) Publisher() *producer.Publisher { return p.pub }

// State returns the bus connection state.
func (p *Producer) State() coremqtt.State { return p.client.State() }

// Run connects, applies opts and handles control commands until ctx is
// cancelled. The route keeps running after the control reader hits EOF.
func (p *Producer) Run(ctx context.Context, opts ProducerOptions) error {
	defer coremon.Flush(flushTimeout)
	if err := p.client.Connect(ctx); err != nil {
		if errors.Is(err, coremqtt.ErrConnectTimeout) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}
	serveHTTP(ctx, p.cfg.Metrics.PrometheusPort, p.log, map[string]http.Handler{
		"/api/session": vehicles.NewSessionHandler(p.pub),
	})

	p.pub.SetActive(opts.Active)
	if opts.Route != "" && !p.pub.SelectRoute(ctx, opts.Route) {
		p.log.Warnf("route %q not found, known routes: %v", opts.Route, p.routes.Names())
	}
	if opts.Control != nil {
		p.pub.Run(ctx, control.ReadCommands(ctx, opts.Control, p.log))
	}
	<-ctx.Done()
	p.pub.Shutdown()
	return nil
}

// Close stops the route runner and disconnects from the broker.
func (p *Producer) Close() error {
	p.pub.Shutdown()
	closeSink(p.sink)
	if err := p.client.Close(); err != nil && !errors.Is(err, coremqtt.ErrNotConnected) {
		return err
	}
	return nil
}
