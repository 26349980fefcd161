package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back what the metrics sinks wrote during a test run.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for an already running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// Count returns the number of records of measurement written in the last
// ten minutes, one per field value.
func (c *InfluxClient) Count(ctx context.Context, measurement string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-10m) |> filter(fn: (r) => r._measurement == %q)`, c.bucket, measurement)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// LastString returns the most recent value of a string field.
func (c *InfluxClient) LastString(ctx context.Context, measurement, field string) (string, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-10m) |> filter(fn: (r) => r._measurement == %q and r._field == %q) |> group() |> last()`,
		c.bucket, measurement, field)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return "", err
	}
	defer res.Close()
	var last string
	for res.Next() {
		if s, ok := res.Record().Value().(string); ok {
			last = s
		}
	}
	return last, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
