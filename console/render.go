package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zenibako/cueplayer/cue"
	"github.com/zenibako/cueplayer/layout"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Renderer draws the cue list as text. Colors are only emitted when the
// output is a terminal.
type Renderer struct {
	header   lipgloss.Style
	standby  lipgloss.Style
	selected lipgloss.Style
	running  lipgloss.Style
	dim      lipgloss.Style
}

// NewRenderer creates a renderer for w
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		standby:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		selected: r.NewStyle().Foreground(lipgloss.Color("14")),
		running:  r.NewStyle().Foreground(lipgloss.Color("10")),
		dim:      r.NewStyle().Faint(true),
	}
}

// Render draws l. It must run on the layout's goroutine.
func (r *Renderer) Render(l *layout.ListLayout) string {
	var b strings.Builder

	policy := l.Policy()
	auto := "off"
	if policy.AutoContinue {
		auto = "on"
	}
	fmt.Fprintln(&b, r.header.Render(fmt.Sprintf("== Cue list (%d) ==", l.Model().Len())))
	fmt.Fprintln(&b, r.dim.Render(fmt.Sprintf("auto-continue %s, advance %d, selection mode %v",
		auto, policy.Advance, l.SelectionMode())))

	if l.Model().Len() == 0 {
		fmt.Fprintln(&b, r.dim.Render("  (empty)"))
	}
	for c := range l.Cues(cue.KindCue) {
		fmt.Fprintln(&b, r.row(l, c))
	}
	if l.StandbyIndex() == l.Model().Len() && l.Model().Len() > 0 {
		fmt.Fprintln(&b, r.standby.Render("> (end of list)"))
	}

	panels := l.Panels()
	if panels.PlayingCues {
		running := RunningCueLabels(l.Cues(cue.KindCue))
		if len(running) > 0 {
			fmt.Fprintln(&b, r.header.Render("== Playing =="))
			for _, label := range running {
				fmt.Fprintln(&b, r.running.Render("  "+label))
			}
		}
	}
	if selected := SelectedCueLabels(l.SelectedCues(cue.KindCue)); len(selected) > 0 {
		fmt.Fprintln(&b, r.dim.Render("selected: "+strings.Join(selected, ", ")))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) row(l *layout.ListLayout, c *cue.Cue) string {
	marker := " "
	if c.Index() == l.StandbyIndex() {
		marker = ">"
	}
	sel := " "
	if l.IsSelected(c) {
		sel = "*"
	}
	line := fmt.Sprintf("%s%s %3d  %-6s %-8s %s", marker, sel, c.Index(), c.Kind(), c.State(), c.Label())

	switch {
	case marker == ">":
		return r.standby.Render(line)
	case c.State() == cue.StateRunning:
		return r.running.Render(line)
	case sel == "*":
		return r.selected.Render(line)
	}
	return line
}
