//go:build !linux

package clock

import "github.com/benbjohnson/clock"

// NewOSTimer falls back to the runtime ticker where timerfd is unavailable.
func NewOSTimer() PeriodicTimer {
	return NewTickerTimer(clock.New())
}
