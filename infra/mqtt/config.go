package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultQoS is used for every topic without an explicit QoS entry.
const DefaultQoS byte = 1

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
	// QoS overrides the QoS per topic kind ("speed", "heartbeat", "route").
	QoS        map[string]byte `json:"qos"`
	LWTTopic   string          `json:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain"`
	// MaxRetries bounds publish retries; 0 leaves retrying to the transport.
	MaxRetries        int         `json:"max_retries"`
	BackoffMS         int         `json:"backoff_ms"`
	ConnectTimeoutMS  int         `json:"connect_timeout_ms"`
	ReconnectPeriodMS int         `json:"reconnect_period_ms"`
	TLSConfig         *tls.Config `json:"-"`
}

// SetDefaults applies the transport defaults.
func (c *Config) SetDefaults() {
	if c.Broker == "" {
		c.Broker = "tcp://localhost:1883"
	}
	if c.ConnectTimeoutMS <= 0 {
		c.ConnectTimeoutMS = 5000
	}
	if c.ReconnectPeriodMS <= 0 {
		c.ReconnectPeriodMS = 1000
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("mqtt max_retries must not be negative")
	}
	for kind, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt qos for %s must be 0, 1 or 2", kind)
		}
	}
	return nil
}

// WithClientID returns a copy whose ClientID is set, deriving
// "<prefix>-<uuid>" when none is configured.
func (c Config) WithClientID(prefix string) Config {
	if c.ClientID == "" {
		c.ClientID = prefix + "-" + uuid.NewString()
	}
	return c
}

// qosFor returns the QoS for the topic; the kind is the last topic segment.
func (c Config) qosFor(topic string) byte {
	kind := topic[strings.LastIndex(topic, "/")+1:]
	if q, ok := c.QoS[kind]; ok {
		return q
	}
	return DefaultQoS
}

func (c Config) connectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c Config) reconnectPeriod() time.Duration {
	return time.Duration(c.ReconnectPeriodMS) * time.Millisecond
}

func (c Config) backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
