package mqtt

import "errors"

// ErrNotConnected is returned by Publish and Close when no connection exists.
var ErrNotConnected = errors.New("bus client is not connected")

// ErrConnectTimeout is returned when the broker does not accept the connection in time.
var ErrConnectTimeout = errors.New("timeout connecting to broker")
