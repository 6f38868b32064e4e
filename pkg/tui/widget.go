package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/1F47E/go-framereel/pkg/core"
	"github.com/1F47E/go-framereel/pkg/meta"
)

const (
	padding  = 2
	maxWidth = 80
	// title, rate, blank, bar, help
	chromeLines = 6
)

var (
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render
	titleStyle  = lipgloss.NewStyle().Bold(true)
	onTarget    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	offTarget   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	waitingText = "waiting for the first frame"
)

type Widget struct {
	meta  meta.Metadata
	title string
	text  string

	seq     uint64
	value   byte
	rate    core.Indicator
	percent float64

	width, height int
	spinner       spinner.Model
	progress      progress.Model
	quitting      bool
}

func NewWidget(m meta.Metadata) *Widget {
	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Widget{
		meta:     m,
		title:    m.Print(),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		width:    maxWidth,
		height:   24,
	}
}

func (w *Widget) Init() tea.Cmd {
	return w.spinner.Tick
}

func (w *Widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			w.quitting = true
			return w, tea.Quit
		}
		return w, nil

	case tea.WindowSizeMsg:
		w.width, w.height = msg.Width, msg.Height
		w.progress.Width = msg.Width - padding*2 - 4
		if w.progress.Width > maxWidth {
			w.progress.Width = maxWidth
		}
		return w, nil

	case Event:
		switch msg.eventType {
		case eventTypeFrame:
			w.seq = msg.seq
			w.value = msg.value
			w.rate = msg.rate
			w.percent = msg.percent
		case eventTypeText:
			w.text = msg.text
		}
		return w, nil

	default:
		if w.seq > 0 {
			return w, nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}
}

func (w *Widget) View() string {
	pad := strings.Repeat(" ", padding)
	if w.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + pad + titleStyle.Render(w.title) + "\n")
	if w.seq == 0 {
		sb.WriteString("\n" + pad + w.spinner.View() + " " + waitingText + "\n")
	} else {
		sb.WriteString(pad + w.rateLabel() + helpStyle(fmt.Sprintf("  frame %d", w.seq)) + "\n")
		sb.WriteString(w.frameView())
		if w.meta.Frames() > 0 {
			sb.WriteString(pad + w.progress.ViewAs(w.percent) + "\n")
		}
	}
	if w.text != "" {
		sb.WriteString(pad + w.text + "\n")
	}
	sb.WriteString(pad + helpStyle("q to quit") + "\n")
	return sb.String()
}

func (w *Widget) rateLabel() string {
	if w.rate.OnTarget {
		return onTarget.Render(w.rate.Text)
	}
	return offTarget.Render(w.rate.Text)
}

// frameView draws the current frame as a solid block, centered in the space
// left over by the rest of the view.
func (w *Widget) frameView() string {
	area := image.Pt(w.width, w.height-chromeLines)
	block := blockSize(area, image.Pt(w.meta.FrameSize.Width, w.meta.FrameSize.Height))
	if block.X <= 0 || block.Y <= 0 {
		return ""
	}
	at := core.Center(area, block)
	at.X = max(at.X, 0)
	at.Y = max(at.Y, 0)

	style := lipgloss.NewStyle().Background(lipgloss.Color(Gray(w.value)))
	row := strings.Repeat(" ", at.X) + style.Render(strings.Repeat(" ", block.X))

	var sb strings.Builder
	sb.WriteString(strings.Repeat("\n", at.Y))
	for i := 0; i < block.Y; i++ {
		sb.WriteString(row + "\n")
	}
	return sb.String()
}

// blockSize fits a frame into area in terminal cells, keeping the aspect
// ratio. A cell is about twice as tall as it is wide.
func blockSize(area, frame image.Point) image.Point {
	if area.X <= 0 || area.Y <= 0 || frame.X <= 0 || frame.Y <= 0 {
		return image.Point{}
	}
	cols := area.X
	rows := cols * frame.Y / frame.X / 2
	if rows > area.Y {
		rows = area.Y
		cols = rows * 2 * frame.X / frame.Y
	}
	return image.Pt(cols, rows)
}

// Gray is the hex color of a gray frame value.
func Gray(v byte) string {
	c := float64(v) / 255
	return colorful.Color{R: c, G: c, B: c}.Hex()
}
