package ui

import (
	"github.com/charmbracelet/lipgloss"

	"tunedeck/internal/core"
)

const (
	colorAccent  = "#1DB954"
	colorText    = "#FAFAFA"
	colorMuted   = "#626262"
	colorError   = "#EF4444"
	colorInfo    = "#7D56F4"
	colorBorder  = "#3E3E3E"
	colorCurrent = "#1ED760"
)

var styles = newPalette()

// palette is the stylesheet of the interface.
type palette struct {
	title     lipgloss.Style
	section   lipgloss.Style
	muted     lipgloss.Style
	current   lipgloss.Style
	selected  lipgloss.Style
	row       lipgloss.Style
	err       lipgloss.Style
	bar       lipgloss.Style
	menu      lipgloss.Style
	menuItem  lipgloss.Style
	menuFocus lipgloss.Style
	toasts    map[core.ToastVariant]lipgloss.Style
}

func newPalette() *palette {
	toast := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color(colorText))
	return &palette{
		title:     newBold(colorText).Background(lipgloss.Color(colorAccent)).Padding(0, 1),
		section:   newBold(colorAccent).MarginBottom(1),
		muted:     newStyle(colorMuted),
		current:   newBold(colorCurrent),
		selected:  lipgloss.NewStyle().Background(lipgloss.Color(colorBorder)),
		row:       lipgloss.NewStyle(),
		err:       newBold(colorError),
		bar:       lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color(colorBorder)),
		menu:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(colorAccent)).Padding(0, 1),
		menuItem:  lipgloss.NewStyle(),
		menuFocus: newBold(colorAccent),
		toasts: map[core.ToastVariant]lipgloss.Style{
			core.ToastSuccess: toast.Background(lipgloss.Color(colorAccent)),
			core.ToastError:   toast.Background(lipgloss.Color(colorError)),
			core.ToastInfo:    toast.Background(lipgloss.Color(colorInfo)),
		},
	}
}

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}
