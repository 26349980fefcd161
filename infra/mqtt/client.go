package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/v2xlab/obu/core/mqtt"
	"github.com/v2xlab/obu/core/monitoring"
	"github.com/v2xlab/obu/infra/logger"
)

// pahoClient is the subset of paho.Client used by PahoClient.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

type subscription struct {
	topic   string
	handler coremqtt.Handler
}

// PahoClient implements core/mqtt.Client on top of Eclipse Paho. Its state
// moves disconnected -> connecting -> connected on Connect, back to
// connecting when the connection drops and paho retries, and to
// disconnected on Close.
type PahoClient struct {
	cfg Config
	log logger.Logger

	state atomic.Int32

	mu  sync.Mutex
	cli pahoClient

	subsMu sync.Mutex
	subs   []subscription
}

// NewPahoClient returns a disconnected client. The component names the
// owner in logs, e.g. "producer".
func NewPahoClient(cfg Config, component string) *PahoClient {
	cfg.SetDefaults()
	return &PahoClient{cfg: cfg, log: logger.New(component + "-mqtt")}
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(cfg.reconnectPeriod())
	opts.SetMaxReconnectInterval(cfg.reconnectPeriod())
	opts.SetConnectTimeout(cfg.connectTimeout())
	opts.SetOrderMatters(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// State returns the current connection state.
func (p *PahoClient) State() coremqtt.State {
	return coremqtt.State(p.state.Load())
}

func (p *PahoClient) setState(s coremqtt.State) {
	p.state.Store(int32(s))
}

// Connect dials the broker and blocks until the first connection succeeds or
// ctx is done. Failed attempts are logged and retried every reconnect period.
func (p *PahoClient) Connect(ctx context.Context) error {
	p.mu.Lock()
	if p.cli != nil {
		p.mu.Unlock()
		return nil
	}
	opts, err := NewClientOptions(p.cfg)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	opts.SetOnConnectHandler(p.onConnect)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.setState(coremqtt.StateConnecting)
		p.log.Warnf("connection lost, client is offline: %v", err)
		monitoring.CaptureException(err, "mqtt", "broker", p.cfg.Broker)
	})
	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		p.log.Infof("attempting to reconnect to %s", p.cfg.Broker)
	})
	opts.SetConnectionAttemptHandler(func(broker *url.URL, tlsCfg *tls.Config) *tls.Config {
		p.log.Debugf("connecting to %s", broker)
		return tlsCfg
	})
	cli := newMQTTClient(opts)
	p.cli = cli
	p.setState(coremqtt.StateConnecting)
	p.mu.Unlock()

	if err := wait(ctx, cli.Connect()); err != nil {
		p.mu.Lock()
		if p.cli == cli {
			p.cli = nil
		}
		p.mu.Unlock()
		cli.Disconnect(0)
		p.setState(coremqtt.StateDisconnected)
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", coremqtt.ErrConnectTimeout, err)
		}
		p.log.Errorf("connection to %s failed: %v", p.cfg.Broker, err)
		monitoring.CaptureException(err, "mqtt", "broker", p.cfg.Broker)
		return err
	}
	return nil
}

func (p *PahoClient) onConnect(c paho.Client) {
	p.setState(coremqtt.StateConnected)
	p.log.Infof("connected to MQTT broker %s", p.cfg.Broker)
	p.subsMu.Lock()
	subs := append([]subscription(nil), p.subs...)
	p.subsMu.Unlock()
	for _, s := range subs {
		if err := p.subscribe(c, s); err != nil {
			p.log.Errorf("subscribe %s: %v", s.topic, err)
		}
	}
}

func (p *PahoClient) subscribe(c pahoClient, s subscription) error {
	h := s.handler
	token := c.Subscribe(s.topic, p.cfg.qosFor(s.topic), func(_ paho.Client, m paho.Message) {
		h(coremqtt.Message{Topic: m.Topic(), Payload: m.Payload()})
	})
	timeout := p.cfg.connectTimeout()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("subscribe %s: no ack after %s", s.topic, timeout)
	}
	return token.Error()
}

// Subscribe registers h for topic. The subscription is issued now when
// connected and again after every reconnect.
func (p *PahoClient) Subscribe(topic string, h coremqtt.Handler) error {
	s := subscription{topic: topic, handler: h}
	p.subsMu.Lock()
	p.subs = append(p.subs, s)
	p.subsMu.Unlock()
	cli := p.client()
	if cli == nil || p.State() != coremqtt.StateConnected {
		return nil
	}
	if err := p.subscribe(cli, s); err != nil {
		return err
	}
	p.log.Infof("subscribed to %s", topic)
	return nil
}

// Publish sends payload with the topic's QoS, not retained, and waits for
// the broker acknowledgment or ctx. Failed attempts are retried up to
// MaxRetries times with exponential backoff.
func (p *PahoClient) Publish(ctx context.Context, topic string, payload []byte) error {
	cli := p.client()
	if cli == nil {
		return fmt.Errorf("publish %s: %w", topic, coremqtt.ErrNotConnected)
	}
	qos := p.cfg.qosFor(topic)
	var err error
	for attempt := 0; ; attempt++ {
		err = wait(ctx, cli.Publish(topic, qos, false, payload))
		if err == nil {
			p.log.Debugw("published", map[string]any{"topic": topic, "payload": string(payload)})
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, err)
		if attempt >= p.cfg.MaxRetries || ctx.Err() != nil {
			break
		}
		select {
		case <-time.After(p.cfg.backoff() << attempt):
		case <-ctx.Done():
		}
	}
	monitoring.CaptureException(err, "mqtt", "topic", topic)
	return fmt.Errorf("publish %s: %w", topic, err)
}

// Close disconnects from the broker. In-flight messages get 250ms to drain.
func (p *PahoClient) Close() error {
	p.mu.Lock()
	cli := p.cli
	p.cli = nil
	p.mu.Unlock()
	if cli == nil {
		return fmt.Errorf("close: %w", coremqtt.ErrNotConnected)
	}
	cli.Disconnect(250)
	p.setState(coremqtt.StateDisconnected)
	p.log.Infof("connection to %s closed", p.cfg.Broker)
	return nil
}

func (p *PahoClient) client() pahoClient {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cli
}

func wait(ctx context.Context, t paho.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
