package tui

import "github.com/1F47E/go-framereel/pkg/core"

type eventType int

const (
	eventTypeFrame eventType = iota
	eventTypeText
)

// Event is a plain value copied out of the playback goroutine. It never
// carries a frame buffer.
type Event struct {
	eventType eventType
	text      string
	seq       uint64
	value     byte
	rate      core.Indicator
	percent   float64
}

func NewEventFrame(seq uint64, value byte, rate core.Indicator, percent float64) Event {
	return Event{
		eventType: eventTypeFrame,
		seq:       seq,
		value:     value,
		rate:      rate,
		percent:   percent,
	}
}

func NewEventText(text string) Event {
	return Event{
		eventType: eventTypeText,
		text:      text,
	}
}
