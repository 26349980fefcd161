// Package app wires configuration, transport, metrics and monitoring into
// the producer and consumer services.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/v2xlab/obu/config"
	coremetrics "github.com/v2xlab/obu/core/metrics"
	coremon "github.com/v2xlab/obu/core/monitoring"
	"github.com/v2xlab/obu/infra/logger"
	"github.com/v2xlab/obu/infra/metrics"
	"github.com/v2xlab/obu/infra/monitoring"
)

// flushTimeout bounds the wait for pending error reports on exit.
const flushTimeout = 2 * time.Second

// setup applies the logging and monitoring settings and builds the
// configured metrics sink.
func setup(cfg *config.Config) (coremetrics.MetricsSink, error) {
	if err := logger.Configure(cfg.Logging.Options()); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return sink, nil
}

// serveHTTP exposes /metrics and the status handlers when addr is set.
func serveHTTP(ctx context.Context, addr string, log logger.Logger, handlers map[string]http.Handler) {
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr, handlers); err != nil {
			log.Errorf("prom server: %v", err)
		}
	}()
}

// closeSink releases sinks holding a connection, such as Influx.
func closeSink(sink coremetrics.MetricsSink) {
	if m, ok := sink.(*coremetrics.MultiSink); ok {
		for _, s := range m.Sinks {
			closeSink(s)
		}
		return
	}
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
