// Package util provides helpers shared by integration tests.
//
// StartMosquitto runs a throwaway broker for tests that need a real bus.
//
// WaitForMetric polls a Prometheus metrics endpoint until the desired metric
// appears in the output. Eventually polls an arbitrary condition.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// Eventually polls cond until it returns true or ctx is done.
func Eventually(ctx context.Context, cond func() bool) error {
	for !cond() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("condition not met: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
	return nil
}

// WaitForMetric polls the given metrics URL until the provided substring is
// found in the output or the context is done.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, metricsURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("read metrics body: %w", rerr)
			}
			if strings.Contains(string(body), substr) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// mosquittoConf accepts anonymous clients on 1883 and logs connections and
// subscriptions so a failing OBU test shows what the broker saw.
const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
max_qos 2
log_dest stdout
log_type error
log_type warning
log_type subscribe
connection_messages true
`

// StartMosquitto runs an eclipse-mosquitto broker for the producer and
// consumer tests. It returns the tcp:// URL once a client can connect.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				Reader:            strings.NewReader(mosquittoConf),
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("start mosquitto: %w", err)
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }

	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("mosquitto endpoint: %w", err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForBroker(readyCtx, endpoint); err != nil {
		cleanup()
		return "", nil, err
	}
	return endpoint, cleanup, nil
}

// waitForBroker retries an MQTT connect until the broker accepts it.
func waitForBroker(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("obu-ready-check").
		SetConnectTimeout(time.Second)
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		if token.WaitTimeout(2*time.Second) && token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("mosquitto %s not ready: %w", broker, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
