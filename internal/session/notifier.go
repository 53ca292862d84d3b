package session

import (
	"sync"
	"time"
)

// Notifier - the outbound delivery capability sessions use to publish
// events. Implemented by the transport layer; calls are fire-and-forget.
type Notifier interface {
	Broadcast(roomID string, event any)
	Unicast(participantID string, event any)
}

// Scheduler - registers a recurring callback and returns a function that
// cancels it. Implementations must fire the callback exactly once per
// interval and never run two invocations concurrently.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler - production Scheduler backed by time.Ticker. Callbacks
// run sequentially on a single goroutine, so a slow callback delays the
// next tick instead of overlapping with it, and missed ticks are dropped
// by the ticker rather than compounded.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
