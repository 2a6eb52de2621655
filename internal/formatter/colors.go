package formatter

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotlake/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
}

func NewPalette(t, s, e, w, muted string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		header: NewBold(t).Padding(0, 1),
		cell:   lipgloss.NewStyle().Padding(0, 1),
		border: NewStyle(muted),
		ok:     NewBold(s).Padding(0, 1),
		err:    NewBold(e).Padding(0, 1),
		warn:   NewStyle(w).Padding(0, 1),
	}
}

// status picks the style for a run status.
func (p *Palette) status(s models.RunStatus) lipgloss.Style {
	switch s {
	case models.RunSucceeded:
		return p.ok
	case models.RunFailed:
		return p.err
	default:
		return p.warn
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}
