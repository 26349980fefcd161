package model

// Waypoint is one position and color sample of a route.
type Waypoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Color     Color   `json:"color" yaml:"color"`
}

// RouteEvent converts the waypoint into the payload published on the route topic.
func (w Waypoint) RouteEvent() RouteEvent {
	return RouteEvent{Latitude: w.Latitude, Longitude: w.Longitude, Color: string(w.Color)}
}
