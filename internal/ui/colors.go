package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Discord brand colors.
const (
	blurple = "#5865F2"
	green   = "#57F287"
	red     = "#ED4245"
	yellow  = "#FEE75C"
	greyple = "#99AAB5"
	white   = "#FFFFFF"
)

var styles = NewPalette(blurple, green, red, yellow, greyple)

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	button lipgloss.Style
	avatar lipgloss.Style
	frame  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		button: NewBold(white).Background(lipgloss.Color(t)).Padding(0, 2),
		avatar: NewBold(t),
		frame:  lipgloss.NewStyle().Padding(1, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
