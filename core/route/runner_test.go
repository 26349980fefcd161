package route

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2xlab/obu/core/model"
)

// manualScheduler records scheduled tasks so tests can fire ticks by hand.
type manualScheduler struct {
	mu      sync.Mutex
	tickets []*manualTicket
}

type manualTicket struct {
	fn        func()
	cancelled int
}

func (t *manualTicket) Cancel() { t.cancelled++ }

func (m *manualScheduler) Every(_ time.Duration, fn func()) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicket{fn: fn}
	m.tickets = append(m.tickets, t)
	return t
}

func (m *manualScheduler) last() *manualTicket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[len(m.tickets)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.RouteEvent
	err    error
}

func (p *recordingPublisher) publish(_ context.Context, ev model.RouteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func waypoints(n int) []model.Waypoint {
	wps := make([]model.Waypoint, n)
	for i := range wps {
		wps[i] = model.Waypoint{Latitude: float64(i), Longitude: 100 + float64(i), Color: model.ColorBlue}
	}
	return wps
}

func newTestRunner(active *atomic.Bool) (*Runner, *manualScheduler, *recordingPublisher) {
	sched := &manualScheduler{}
	pub := &recordingPublisher{}
	r := NewRunner(GateFunc(active.Load), pub.publish, RunnerConfig{Scheduler: sched})
	return r, sched, pub
}

func TestRunnerCursorFollowsTicks(t *testing.T) {
	for _, n := range []int{1, 3, 16} {
		var active atomic.Bool
		active.Store(true)
		r, sched, pub := newTestRunner(&active)
		r.Start(context.Background(), "loop", waypoints(n))
		for k := 1; k <= 2*n+1; k++ {
			sched.last().fn()
			s, ok := r.Session()
			require.True(t, ok)
			assert.Equal(t, k%n, s.Cursor, "n=%d k=%d", n, k)
		}
		assert.Equal(t, 2*n+1, pub.count())
	}
}

func TestRunnerFirstTickEmitsNextWaypoint(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	r, _, pub := newTestRunner(&active)
	r.Start(context.Background(), "loop", waypoints(3))
	r.Tick(context.Background())
	require.Equal(t, 1, pub.count())
	assert.Equal(t, model.RouteEvent{Latitude: 1, Longitude: 101, Color: "blue"}, pub.events[0])
}

func TestRunnerInactiveTickIsNoop(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	r, _, pub := newTestRunner(&active)
	r.Start(context.Background(), "loop", waypoints(5))
	r.Tick(context.Background())
	r.Tick(context.Background())

	active.Store(false)
	r.Pause()
	for i := 0; i < 3; i++ {
		r.Tick(context.Background())
	}
	s, _ := r.Session()
	assert.Equal(t, 2, s.Cursor)
	assert.Equal(t, 2, pub.count())

	active.Store(true)
	r.Tick(context.Background())
	s, _ = r.Session()
	assert.Equal(t, 3, s.Cursor)
}

func TestRunnerRestartResetsCursor(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	r, sched, _ := newTestRunner(&active)
	r.Start(context.Background(), "loop", waypoints(5))
	first := sched.last()
	first.fn()
	first.fn()

	r.Start(context.Background(), "loop", waypoints(5))
	s, ok := r.Session()
	require.True(t, ok)
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, 1, first.cancelled)

	// the replaced ticket must not move the new session
	first.fn()
	s, _ = r.Session()
	assert.Equal(t, 0, s.Cursor)
}

func TestRunnerStopIdempotent(t *testing.T) {
	var active atomic.Bool
	r, sched, _ := newTestRunner(&active)
	r.Stop()
	r.Start(context.Background(), "loop", waypoints(2))
	r.Stop()
	r.Stop()
	_, ok := r.Session()
	assert.False(t, ok)
	assert.Equal(t, 1, sched.last().cancelled)
}

func TestRunnerPublishErrorKeepsRunning(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	sched := &manualScheduler{}
	pub := &recordingPublisher{err: errors.New("broker down")}
	var results []TickResult
	r := NewRunner(GateFunc(active.Load), pub.publish, RunnerConfig{
		Scheduler: sched,
		OnTick:    func(res TickResult) { results = append(results, res) },
	})
	r.Start(context.Background(), "loop", waypoints(3))
	sched.last().fn()
	sched.last().fn()
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Equal(t, 0, sched.last().cancelled)
	s, _ := r.Session()
	assert.Equal(t, 2, s.Cursor)
}

func TestRunnerEmptyRouteNotStarted(t *testing.T) {
	var active atomic.Bool
	r, sched, _ := newTestRunner(&active)
	r.Start(context.Background(), "empty", nil)
	_, ok := r.Session()
	assert.False(t, ok)
	assert.Empty(t, sched.tickets)
}

func TestTickerSchedulerCancel(t *testing.T) {
	var n atomic.Int32
	tk := TickerScheduler{}.Every(time.Millisecond, func() { n.Add(1) })
	assert.Eventually(t, func() bool { return n.Load() > 0 }, time.Second, time.Millisecond)
	tk.Cancel()
	tk.Cancel()
	time.Sleep(5 * time.Millisecond)
	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	assert.LessOrEqual(t, n.Load(), after+1)
}

func TestRunnerRestartDuringPublishSkipsOnTick(t *testing.T) {
	var active atomic.Bool
	active.Store(true)
	sched := &manualScheduler{}
	var r *Runner
	var events []model.RouteEvent
	var results []TickResult
	publish := func(_ context.Context, ev model.RouteEvent) error {
		events = append(events, ev)
		if len(events) == 1 {
			r.Start(context.Background(), "next", waypoints(4))
		}
		return nil
	}
	r = NewRunner(GateFunc(active.Load), publish, RunnerConfig{
		Scheduler: sched,
		OnTick:    func(res TickResult) { results = append(results, res) },
	})
	r.Start(context.Background(), "old", waypoints(3))
	sched.last().fn()
	require.Len(t, events, 1)
	assert.Empty(t, results)

	s, ok := r.Session()
	require.True(t, ok)
	assert.Equal(t, "next", s.Name)
	assert.Equal(t, 0, s.Cursor)

	sched.last().fn()
	require.Len(t, results, 1)
	assert.Equal(t, "next", results[0].Route)
	assert.Equal(t, 1, results[0].Cursor)
}
