package route

import (
	"context"
	"sync"
	"time"

	"github.com/v2xlab/obu/core/logger"
	"github.com/v2xlab/obu/core/model"
)

// DefaultInterval is the time between two route events.
const DefaultInterval = time.Second

// Gate reports whether route events may currently be emitted.
type Gate interface {
	Active() bool
}

// GateFunc adapts a function to Gate.
type GateFunc func() bool

func (f GateFunc) Active() bool { return f() }

// PublishFunc hands a route event to the bus.
type PublishFunc func(ctx context.Context, ev model.RouteEvent) error

// TickResult describes one emitting tick.
type TickResult struct {
	Route  string
	Cursor int
	Event  model.RouteEvent
	Err    error
}

// SessionInfo is a read-only view of the running session.
type SessionInfo struct {
	Name   string
	Cursor int
	Len    int
}

// RunnerConfig configures a Runner. Zero values select the defaults.
type RunnerConfig struct {
	Interval  time.Duration
	Scheduler Scheduler
	Logger    logger.Logger
	// OnTick is called after every emitting tick, successful or not.
	OnTick func(TickResult)
}

type session struct {
	name      string
	waypoints []model.Waypoint
	cursor    int
}

// Runner replays at most one route at a time. While the gate is closed ticks
// are skipped without moving the cursor, so a paused route resumes where it
// stopped. Publishing happens outside the lock, so one event of a replaced
// session may still reach the bus while Start installs the next one; its
// OnTick is suppressed.
type Runner struct {
	gate     Gate
	publish  PublishFunc
	interval time.Duration
	sched    Scheduler
	log      logger.Logger
	onTick   func(TickResult)

	mu      sync.Mutex
	session *session
	ticket  Ticket
}

// NewRunner creates an idle Runner.
func NewRunner(gate Gate, publish PublishFunc, cfg RunnerConfig) *Runner {
	r := &Runner{
		gate:     gate,
		publish:  publish,
		interval: cfg.Interval,
		sched:    cfg.Scheduler,
		log:      cfg.Logger,
		onTick:   cfg.OnTick,
	}
	if r.interval <= 0 {
		r.interval = DefaultInterval
	}
	if r.sched == nil {
		r.sched = TickerScheduler{}
	}
	if r.log == nil {
		r.log = logger.NopLogger{}
	}
	return r
}

// Start replaces any running session with a new one at cursor 0 and
// schedules its ticks. Ticks publish with ctx.
func (r *Runner) Start(ctx context.Context, name string, wps []model.Waypoint) {
	if len(wps) == 0 {
		r.log.Warnf("route %s has no waypoints, not started", name)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	s := &session{name: name, waypoints: wps}
	r.session = s
	r.ticket = r.sched.Every(r.interval, func() { r.tick(ctx, s) })
	r.log.Infof("route %s started with %d waypoints", name, len(wps))
}

// Stop cancels the running session. It is a no-op when idle.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Runner) stopLocked() {
	if r.ticket != nil {
		r.ticket.Cancel()
		r.ticket = nil
	}
	if r.session != nil {
		r.log.Infof("cleared route %s", r.session.name)
		r.session = nil
	}
}

// Pause records that emission stopped because the gate closed. The session
// and its schedule are kept.
func (r *Runner) Pause() {
	if s, ok := r.Session(); ok {
		r.log.Infof("route %s paused at waypoint %d", s.Name, s.Cursor)
	}
}

// Session returns the running session, if any.
func (r *Runner) Session() (SessionInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return SessionInfo{}, false
	}
	return SessionInfo{Name: r.session.name, Cursor: r.session.cursor, Len: len(r.session.waypoints)}, true
}

// Tick runs one tick of the current session immediately.
func (r *Runner) Tick(ctx context.Context) {
	r.mu.Lock()
	s := r.session
	r.mu.Unlock()
	if s != nil {
		r.tick(ctx, s)
	}
}

func (r *Runner) tick(ctx context.Context, s *session) {
	r.mu.Lock()
	// the ticket of a replaced session may still fire once
	if r.session != s {
		r.mu.Unlock()
		return
	}
	if !r.gate.Active() {
		r.mu.Unlock()
		return
	}
	s.cursor = (s.cursor + 1) % len(s.waypoints)
	res := TickResult{Route: s.name, Cursor: s.cursor, Event: s.waypoints[s.cursor].RouteEvent()}
	r.mu.Unlock()

	if err := r.publish(ctx, res.Event); err != nil {
		res.Err = err
		r.log.Errorf("publish route %s waypoint %d: %v", res.Route, res.Cursor, err)
	}
	r.mu.Lock()
	current := r.session == s
	r.mu.Unlock()
	if current && r.onTick != nil {
		r.onTick(res)
	}
}
