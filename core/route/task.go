package route

import (
	"sync"
	"time"
)

// Ticket is the handle of a scheduled periodic task.
type Ticket interface {
	// Cancel stops the task. Calling it more than once is a no-op.
	Cancel()
}

// Scheduler runs fn every interval until the returned Ticket is cancelled.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Ticket
}

// TickerScheduler is the Scheduler backed by time.Ticker.
type TickerScheduler struct{}

type tickerTicket struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerTicket) Cancel() { t.once.Do(func() { close(t.done) }) }

// Every starts a goroutine that calls fn on each tick. Calls never overlap.
func (TickerScheduler) Every(interval time.Duration, fn func()) Ticket {
	t := &tickerTicket{done: make(chan struct{})}
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}
