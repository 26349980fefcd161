package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/infra/logger"
)

// InfluxSink writes bus traffic, route ticks and vehicle snapshots to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMessage writes one bus_message point.
func (s *InfluxSink) RecordMessage(ev coremetrics.MessageEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("bus_message").
		AddTag("topic", ev.Topic).
		AddTag("kind", string(ev.Kind)).
		AddTag("direction", string(ev.Direction)).
		AddTag("ok", strconv.FormatBool(ev.OK)).
		AddField("latency_ms", round3(float64(ev.Latency)/float64(time.Millisecond)))
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordVehicleState writes a vehicle_state snapshot.
func (s *InfluxSink) RecordVehicleState(ev coremetrics.VehicleStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st := ev.State
	p := write.NewPointWithMeasurement("vehicle_state").
		AddTag("field", string(ev.Field)).
		AddField("speed", round3(st.Speed)).
		AddField("active", st.Active).
		AddField("latitude", st.Latitude).
		AddField("longitude", st.Longitude).
		AddField("color", string(st.Color)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRouteTick writes a route_tick point.
func (s *InfluxSink) RecordRouteTick(ev coremetrics.RouteTickEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("route_tick").
		AddTag("route", ev.Route).
		AddTag("ok", strconv.FormatBool(ev.OK)).
		AddField("cursor", ev.Cursor).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
