package core

import (
	"fmt"
	"image"

	"github.com/1F47E/go-framereel/pkg/clock"
)

// Center returns the top-left corner that centers a frame of size frame on
// a screen of size screen. Frames larger than the screen get a negative
// offset and are cropped evenly on both sides.
func Center(screen, frame image.Point) image.Point {
	return image.Pt((screen.X-frame.X)/2, (screen.Y-frame.Y)/2)
}

// Indicator is the on-screen rate label: the achieved rate, green when it
// keeps up with the requested rate and red otherwise.
type Indicator struct {
	Text     string
	OnTarget bool
}

func NewIndicator(t clock.Tick) Indicator {
	return Indicator{
		Text:     fmt.Sprintf("%d fps", int(t.Achieved)),
		OnTarget: t.OnTarget(),
	}
}
