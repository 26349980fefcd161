package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `mqtt:
  broker: "tcp://broker:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  max_retries: 2
  qos:
    heartbeat: 2
topic:
  prefix: "fleet/obu7"
route:
  interval_ms: 250
  file: "routes.yaml"
metrics:
  prometheus_port: ":9100"
  sinks:
    - type: "nop"
logging:
  level: debug
sentry:
  dsn: ""
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "cli", cfg.MQTT.ClientID)
	assert.Equal(t, "user", cfg.MQTT.Username)
	assert.Equal(t, "pass", cfg.MQTT.Password)
	assert.Equal(t, 2, cfg.MQTT.MaxRetries)
	assert.Equal(t, byte(2), cfg.MQTT.QoS["heartbeat"])
	assert.Equal(t, 5000, cfg.MQTT.ConnectTimeoutMS)
	assert.Equal(t, "fleet/obu7", cfg.Topic.Prefix)
	assert.Equal(t, 250*time.Millisecond, cfg.Route.Interval())
	assert.Equal(t, "routes.yaml", cfg.Route.File)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusPort)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, "debug", cfg.Logging.Options().Level)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("V2X_TOPIC", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, DefaultTopicPrefix, cfg.Topic.Prefix)
	assert.Equal(t, time.Second, cfg.Route.Interval())
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("MQTT_BROKER", "tcp://10.0.0.2:1883")
	t.Setenv("V2X_TOPIC", "v2x/bus42")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp://10.0.0.2:1883", cfg.MQTT.Broker)
	assert.Equal(t, "v2x/bus42", cfg.Topic.Prefix)
}

func TestLoadPrefixedEnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"route":{"interval_ms":1000},"topic":{"prefix":"a/b"}}`)
	t.Setenv("K_ROUTE__INTERVAL_MS", "500")
	t.Setenv("K_MQTT__MAX_RETRIES", "3")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Route.IntervalMS)
	assert.Equal(t, 3, cfg.MQTT.MaxRetries)
	assert.Equal(t, "a/b", cfg.Topic.Prefix)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "wild.yaml", "topic:\n  prefix: \"v2x/#\"\n"))
	assert.ErrorContains(t, err, "wildcards")

	_, err = Load(writeFile(t, "lvl.yaml", "logging:\n  level: loud\n"))
	assert.ErrorContains(t, err, "logging level")

	_, err = Load(writeFile(t, "qos.yaml", "mqtt:\n  qos:\n    speed: 3\n"))
	assert.Error(t, err)
}
