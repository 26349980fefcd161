// Package route replays named waypoint sequences as timed position events.
//
// A Registry holds the known routes, a Runner owns at most one replay
// session and advances it once per interval while the activity gate is open.
package route
