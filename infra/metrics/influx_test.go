package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/core/model"
)

func newCaptureServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func TestInfluxSink_RecordMessage(t *testing.T) {
	srv, bodies := newCaptureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.MessageEvent{
		Topic:     "v2x/obu/speed",
		Kind:      model.KindSpeed,
		Direction: coremetrics.DirectionPublish,
		OK:        true,
		Latency:   1500 * time.Microsecond,
		Time:      now,
	}
	require.NoError(t, sink.RecordMessage(ev))

	p := write.NewPointWithMeasurement("bus_message").
		AddTag("topic", "v2x/obu/speed").
		AddTag("kind", "speed").
		AddTag("direction", "publish").
		AddTag("ok", "true").
		AddField("latency_ms", 1.5).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, *bodies, 1)
	assert.Equal(t, exp, (*bodies)[0])
}

func TestInfluxSink_RecordVehicleState(t *testing.T) {
	srv, bodies := newCaptureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.VehicleStateEvent{
		Field: model.FieldColor,
		State: model.VehicleSnapshot{Speed: 42, Active: true, Latitude: 13.73, Longitude: 100.53, Color: model.ColorRed},
		Time:  now,
	}
	require.NoError(t, sink.RecordVehicleState(ev))

	p := write.NewPointWithMeasurement("vehicle_state").
		AddTag("field", "color").
		AddField("speed", 42.0).
		AddField("active", true).
		AddField("latitude", 13.73).
		AddField("longitude", 100.53).
		AddField("color", "red").
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, *bodies, 1)
	assert.Equal(t, exp, (*bodies)[0])
}

func TestInfluxSink_RecordRouteTick(t *testing.T) {
	srv, bodies := newCaptureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	require.NoError(t, sink.RecordRouteTick(coremetrics.RouteTickEvent{Route: "chula", Cursor: 3, OK: false, Time: now}))
	p := write.NewPointWithMeasurement("route_tick").
		AddTag("route", "chula").
		AddTag("ok", "false").
		AddField("cursor", 3).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, *bodies, 1)
	assert.Equal(t, exp, (*bodies)[0])
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	assert.True(t, called, "health endpoint not called")
}
