package clock

import "time"

// meter measures the achieved rate over windows of rate ticks. Resetting at
// the end of each window keeps drift from accumulating.
type meter struct {
	rate   int
	count  int
	start  time.Time
	resets uint64
}

func (m *meter) restart(now time.Time) {
	m.count = 0
	m.start = now
}

// tick records one firing at now and returns the rate achieved so far in
// the window. A zero elapsed time reports 0.
func (m *meter) tick(now time.Time) (achieved float64, reset bool) {
	m.count++
	if elapsed := now.Sub(m.start); elapsed > 0 {
		achieved = float64(m.count) * float64(time.Second) / float64(elapsed)
	}
	if m.count >= m.rate {
		m.restart(now)
		m.resets++
		reset = true
	}
	return achieved, reset
}
