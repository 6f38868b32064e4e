package clock

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// PeriodicTimer fires onTick every interval on a goroutine of its own.
// Stop must not return before the last onTick call has finished.
type PeriodicTimer interface {
	Start(interval time.Duration, onTick func()) error
	Stop() error
}

// TimerError is an arm or disarm failure of the underlying timer.
type TimerError struct {
	Op  string
	Err error
}

func (e *TimerError) Error() string {
	return "timer " + e.Op + ": " + e.Err.Error()
}

func (e *TimerError) Unwrap() error {
	return e.Err
}

// TickerTimer is a PeriodicTimer backed by a clock.Ticker. With a mock clock
// it becomes fully deterministic.
type TickerTimer struct {
	clock clock.Clock

	mu     sync.Mutex
	ticker *clock.Ticker
	quit   chan struct{}
	done   chan struct{}
}

func NewTickerTimer(c clock.Clock) *TickerTimer {
	if c == nil {
		c = clock.New()
	}
	return &TickerTimer{clock: c}
}

func (t *TickerTimer) Start(interval time.Duration, onTick func()) error {
	if interval <= 0 {
		return &TimerError{Op: "start", Err: errors.Errorf("interval must be positive, got %s", interval)}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil {
		return &TimerError{Op: "start", Err: errors.New("already armed")}
	}

	t.ticker = t.clock.Ticker(interval)
	t.quit = make(chan struct{})
	t.done = make(chan struct{})
	go t.loop(t.ticker, t.quit, t.done, onTick)
	return nil
}

func (t *TickerTimer) loop(ticker *clock.Ticker, quit, done chan struct{}, onTick func()) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			onTick()
		}
	}
}

func (t *TickerTimer) Stop() error {
	t.mu.Lock()
	if t.ticker == nil {
		t.mu.Unlock()
		return nil
	}
	t.ticker.Stop()
	close(t.quit)
	done := t.done
	t.ticker = nil
	t.mu.Unlock()

	<-done
	return nil
}
