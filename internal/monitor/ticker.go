package monitor

import "time"

// Ticker delivers the instants at which the monitor runs a round of checks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

// NewTimeTicker wraps a time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(d)}
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }
