// Package progress is the headless display: a terminal progress bar whose
// description carries the achieved frame rate.
package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/1F47E/go-framereel/pkg/clock"
	"github.com/1F47E/go-framereel/pkg/core"
	"github.com/1F47E/go-framereel/pkg/source"
)

type Bar struct {
	bar    *progressbar.ProgressBar
	frames int
}

// New creates a bar over frames frames, or a spinner when the clip length
// is unknown (frames <= 0).
func New(frames int, w io.Writer) *Bar {
	max := frames
	if max <= 0 {
		max = -1
	}
	return &Bar{
		bar:    progressCreate(max, "waiting", w),
		frames: frames,
	}
}

// Show moves the bar to the frame's position in the clip, wrapping once the
// clip length is passed.
func (b *Bar) Show(f *source.Frame, tick clock.Tick) error {
	b.bar.Describe(Describe(tick))
	if b.frames <= 0 {
		return b.bar.Add(1)
	}
	return b.bar.Set(int((f.Seq-1)%uint64(b.frames)) + 1)
}

func (b *Bar) Position() int {
	return int(b.bar.State().CurrentBytes)
}

func (b *Bar) Finish() error {
	return b.bar.Finish()
}

// Describe renders the rate label with progressbar color codes.
func Describe(tick clock.Tick) string {
	ind := core.NewIndicator(tick)
	if ind.OnTarget {
		return "[green]" + ind.Text + "[reset]"
	}
	return "[red]" + ind.Text + "[reset]"
}

func progressCreate(max int, desc string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]/[reset]",
			SaucerHead:    "[green]/[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
