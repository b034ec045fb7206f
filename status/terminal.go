package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	processingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

// Terminal prints each label change as a styled line. Repeated labels are
// printed once.
type Terminal struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

// Ensure Terminal implements Surface interface
var _ Surface = &Terminal{}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Show(state State, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if text == t.last {
		return
	}
	t.last = text

	_, _ = fmt.Fprintln(t.out, styleFor(state).Render(text))
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = ""
}

func styleFor(state State) lipgloss.Style {
	switch state {
	case Processing:
		return processingStyle
	case Error:
		return errorStyle
	default:
		return idleStyle
	}
}
