package model

// SpeedEvent is published on <prefix>/speed.
type SpeedEvent struct {
	Speed float64 `json:"speed"`
}

// HeartbeatEvent is published on <prefix>/heartbeat.
type HeartbeatEvent struct {
	Heartbeat bool `json:"heartbeat"`
}

// RouteEvent is published on <prefix>/route once per route tick.
type RouteEvent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Color     string  `json:"color"`
}
