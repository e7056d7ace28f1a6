package rdtnet

import "time"

// TickerSource drives a connection's OnTick off a time.Ticker, the
// external tick source the protocol core declares out of scope for
// itself.
type TickerSource struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTickerSource starts a ticker at period and calls onTick on every
// fire until Stop is called.
func NewTickerSource(period time.Duration, onTick func()) *TickerSource {
	t := &TickerSource{
		ticker: time.NewTicker(period),
		stop:   make(chan struct{}),
	}
	go t.run(onTick)
	return t
}

func (t *TickerSource) run(onTick func()) {
	for {
		select {
		case <-t.ticker.C:
			onTick()
		case <-t.stop:
			return
		}
	}
}

// Stop halts the ticker goroutine.
func (t *TickerSource) Stop() {
	t.ticker.Stop()
	close(t.stop)
}
