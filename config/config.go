package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/v2xlab/obu/core/metrics"
	"github.com/v2xlab/obu/infra/monitoring"
	"github.com/v2xlab/obu/infra/mqtt"
)

// legacyEnv maps the historical variable names to config keys.
var legacyEnv = map[string]string{
	"MQTT_BROKER": "mqtt.broker",
	"V2X_TOPIC":   "topic.prefix",
}

type Config struct {
	MQTT    mqtt.Config             `json:"mqtt"`
	Topic   TopicConfig             `json:"topic"`
	Route   RouteConfig             `json:"route"`
	Metrics metrics.Config          `json:"metrics"`
	Logging LoggingConfig           `json:"logging"`
	Sentry  monitoring.SentryConfig `json:"sentry"`
}

// Load reads the configuration. The file is optional: with an empty path
// only defaults and the environment apply. Non-empty MQTT_BROKER and
// V2X_TOPIC are honoured, and K_ prefixed variables override any key, e.g.
// K_ROUTE__INTERVAL_MS=500.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return legacyEnv[key], value
	}), nil); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.MQTT.SetDefaults()
	c.Topic.SetDefaults()
	c.Route.SetDefaults()
	c.Logging.SetDefaults()
	if c.Sentry.Environment == "" {
		c.Sentry.Environment = os.Getenv("APP_ENV")
	}
}

func (c Config) Validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Topic.Validate(); err != nil {
		return err
	}
	if err := c.Route.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
