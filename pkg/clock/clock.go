// Package clock drives playback at a fixed frame rate. A PeriodicTimer fires
// on its own goroutine; ticks are handed over a channel to the consumer,
// which runs its handler from PlaybackClock.Run on its own goroutine.
package clock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	cfg "github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/logger"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotRunning      = errors.New("clock is not running")
	ErrClosed          = errors.New("clock is closed")
	// ErrReentrantStop is returned by Stop and Close when called from inside
	// a tick handler. End playback from a handler by returning an error.
	ErrReentrantStop = errors.New("stop called from inside a tick handler")
)

// Tick is one timer firing as seen by the consumer.
type Tick struct {
	Seq         uint64
	Requested   int
	Achieved    float64
	At          time.Time
	WindowReset bool
}

// OnTarget reports whether the achieved rate keeps up with the requested one.
func (t Tick) OnTarget() bool {
	return t.Achieved >= float64(t.Requested)
}

func (t Tick) String() string {
	return fmt.Sprintf("%d fps", int(t.Achieved))
}

type Stats struct {
	Ticks        uint64 // timer firings while running
	Delivered    uint64 // ticks handed to the handler
	Dropped      uint64 // ticks coalesced because one was still pending
	WindowResets uint64
	WindowCount  int // ticks in the current window
}

// Interval returns the tick period for rate. Truncated mode reproduces the
// whole-millisecond period, which runs slightly fast for rates that do not
// divide 1000. Periods are never shorter than the timer resolution.
func Interval(rate int, truncate bool) time.Duration {
	if rate <= 0 {
		return 0
	}
	var d time.Duration
	if truncate {
		d = time.Duration(1000/rate) * time.Millisecond
	} else {
		d = time.Second / time.Duration(rate)
	}
	if d < cfg.TimerResolution {
		d = cfg.TimerResolution
	}
	return d
}

type Option func(*PlaybackClock)

// WithTimer replaces the default ticker timer, e.g. with NewOSTimer().
func WithTimer(t PeriodicTimer) Option {
	return func(c *PlaybackClock) { c.timer = t }
}

// WithClock sets the time source used by the stopwatch and default timer.
func WithClock(clk clock.Clock) Option {
	return func(c *PlaybackClock) { c.clock = clk }
}

func WithTruncatedInterval() Option {
	return func(c *PlaybackClock) { c.truncate = true }
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *PlaybackClock) { c.log = log }
}

// PlaybackClock is Idle until Start and Running until Stop.
type PlaybackClock struct {
	rate     int
	truncate bool
	clock    clock.Clock
	timer    PeriodicTimer
	log      *logrus.Entry

	ticks     chan Tick // one slot: a pending tick plus the one being handled
	inHandler atomic.Bool

	mu      sync.Mutex
	running bool
	closed  bool
	quit    chan struct{}
	meter   meter
	seq     uint64
	stats   Stats
}

func New(rate int, opts ...Option) (*PlaybackClock, error) {
	if rate <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "frame rate %d", rate)
	}
	c := &PlaybackClock{
		rate:  rate,
		ticks: make(chan Tick, 1),
		log:   logger.Scope("clock"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.timer == nil {
		c.timer = NewTickerTimer(c.clock)
	}
	c.meter.rate = rate
	return c, nil
}

func (c *PlaybackClock) Rate() int { return c.rate }

func (c *PlaybackClock) Interval() time.Duration {
	return Interval(c.rate, c.truncate)
}

// Start arms the timer and opens a new measurement window. Starting a
// running clock does nothing.
func (c *PlaybackClock) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.running {
		return nil
	}

	c.meter.restart(c.clock.Now())
	c.quit = make(chan struct{})
	c.running = true
	if err := c.timer.Start(c.Interval(), c.onTick); err != nil {
		c.running = false
		return err
	}
	c.log.Debugf("started at %d fps, interval %s", c.rate, c.Interval())
	return nil
}

// onTick runs on the timer goroutine. It never calls consumer code.
func (c *PlaybackClock) onTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	now := c.clock.Now()
	achieved, reset := c.meter.tick(now)
	c.seq++
	c.stats.Ticks++
	if reset {
		c.log.Debugf("window %d done: %.1f fps of %d", c.meter.resets, achieved, c.rate)
	}

	tick := Tick{
		Seq:         c.seq,
		Requested:   c.rate,
		Achieved:    achieved,
		At:          now,
		WindowReset: reset,
	}
	select {
	case c.ticks <- tick:
	default:
		c.stats.Dropped++
	}
}

// Run delivers ticks to handler on the calling goroutine, one at a time and
// in order, until ctx is done, the clock stops, or handler fails. Stop and
// Close must be called from this same goroutine once Run has returned; to
// end playback from elsewhere cancel ctx.
func (c *PlaybackClock) Run(ctx context.Context, handler func(Tick) error) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return ErrNotRunning
	}
	quit := c.quit
	c.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-quit:
			return nil
		case tick := <-c.ticks:
			if err := c.dispatch(tick, handler); err != nil {
				return err
			}
		}
	}
}

func (c *PlaybackClock) dispatch(tick Tick, handler func(Tick) error) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.stats.Delivered++
	c.mu.Unlock()

	c.inHandler.Store(true)
	defer c.inHandler.Store(false)
	return handler(tick)
}

// Stop disarms the timer. Once it returns no further tick is delivered.
// Stopping an idle clock does nothing.
func (c *PlaybackClock) Stop() error {
	if c.inHandler.Load() {
		return ErrReentrantStop
	}

	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	close(c.quit)
	c.mu.Unlock()

	err := c.timer.Stop()
	for {
		select {
		case <-c.ticks:
		default:
			c.log.Debug("stopped")
			return err
		}
	}
}

// Close stops the clock for good. It is safe to call more than once.
func (c *PlaybackClock) Close() error {
	if c.inHandler.Load() {
		return ErrReentrantStop
	}
	err := c.Stop()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return err
}

func (c *PlaybackClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *PlaybackClock) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.WindowResets = c.meter.resets
	s.WindowCount = c.meter.count
	return s
}
