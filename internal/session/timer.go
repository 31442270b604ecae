package session

import (
	"sync"
	"time"
)

// Timer is an owned, cancellable periodic task. Stop must be idempotent.
type Timer interface {
	Stop()
}

// TimerFactory starts a Timer that calls tick every interval.
type TimerFactory func(interval time.Duration, tick func()) Timer

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// TickerFactory runs tick on its own goroutine driven by a time.Ticker.
func TickerFactory(interval time.Duration, tick func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				tick()
			}
		}
	}()
	return t
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
