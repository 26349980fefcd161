package monitoring

import (
	"sync"
	"time"
)

// Monitor reports errors to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor drops every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records err under the given module with optional
// key/value tag pairs.
func CaptureException(err error, module string, kv ...string) {
	if err == nil {
		return
	}
	tags := map[string]string{"module": module}
	for i := 0; i+1 < len(kv); i += 2 {
		tags[kv[i]] = kv[i+1]
	}
	get().CaptureException(err, tags)
}

// Current returns the active monitor, for deferring its Recover directly.
func Current() Monitor {
	return get()
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}
