// Package tui renders playback in the terminal with bubbletea. Frames reach
// the widget as value events, so the UI goroutine never touches a buffer.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1F47E/go-framereel/pkg/clock"
	"github.com/1F47E/go-framereel/pkg/core"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/meta"
	"github.com/1F47E/go-framereel/pkg/source"
)

var log = logger.Scope("tui")

type TUI struct {
	ctx      context.Context
	eventsCh chan Event
	meta     meta.Metadata
	opts     []tea.ProgramOption
}

func New(ctx context.Context, m meta.Metadata, opts ...tea.ProgramOption) *TUI {
	return &TUI{
		ctx:      ctx,
		eventsCh: make(chan Event, 4),
		meta:     m,
		opts:     opts,
	}
}

// Show implements core.Display. It never blocks playback: when the UI lags
// behind the event is dropped and the next frame supersedes it.
func (t *TUI) Show(f *source.Frame, tick clock.Tick) error {
	t.send(NewEventFrame(f.Seq, f.Value, core.NewIndicator(tick), t.percent(f.Seq)))
	return nil
}

func (t *TUI) Text(text string) {
	t.send(NewEventText(text))
}

func (t *TUI) send(e Event) {
	select {
	case t.eventsCh <- e:
	default:
	}
}

func (t *TUI) percent(seq uint64) float64 {
	frames := uint64(t.meta.Frames())
	if frames == 0 || seq == 0 {
		return 0
	}
	return float64((seq-1)%frames+1) / float64(frames)
}

// Run blocks until the user quits or ctx is done. Quitting is not an error.
func (t *TUI) Run() error {
	opts := append([]tea.ProgramOption{tea.WithContext(t.ctx), tea.WithAltScreen()}, t.opts...)
	p := tea.NewProgram(NewWidget(t.meta), opts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case event := <-t.eventsCh:
				p.Send(event)
			}
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		log.Debug("ui stopped with playback")
		return nil
	}
	return err
}
