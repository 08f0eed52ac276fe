package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
	"tunedeck/internal/player"
	"tunedeck/internal/tracklist"
	"tunedeck/pkg/format"
)

// trackHeaderHeight covers the page title and the loaded counter.
const trackHeaderHeight = 2

// trackView is a virtualized window over a sparse track list. Only the
// rows between offset and offset+height are rendered or loaded.
type trackView struct {
	page   *core.PageDetails
	list   *tracklist.List
	cursor int
	offset int
	height int
}

func newTrackView(page *core.PageDetails, list *tracklist.List, height int) *trackView {
	return &trackView{page: page, list: list, height: max(height, 1)}
}

func (t *trackView) setHeight(height int) {
	t.height = max(height, 1)
	t.clamp()
}

func (t *trackView) move(delta int) {
	t.cursor += delta
	t.clamp()
}

func (t *trackView) clamp() {
	n := t.list.Len()
	if t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// window returns the first and last visible row indexes.
func (t *trackView) window() (first, last int) {
	return t.offset, t.offset + t.height - 1
}

func (t *trackView) selected() (core.Item, bool) {
	return t.list.Row(t.cursor)
}

// rowAt maps a screen line inside the list to a row index.
func (t *trackView) rowAt(line int) (int, bool) {
	if line < 0 || line >= t.height {
		return 0, false
	}
	i := t.offset + line
	return i, i < t.list.Len()
}

// pageFlags tells whether the page itself is what is playing.
func pageFlags(c *player.Controller, page *core.PageDetails) bool {
	if c == nil || page == nil {
		return false
	}
	isArtist := page.Type == core.PageTypeArtist
	flags := c.IsThisPlaybackPlaying("", page.URI, isArtist, page.ID)
	return player.ShowPause(flags, false)
}

func (m *Model) renderTracks(width int) string {
	t := m.tracks
	var b strings.Builder

	icon := "▶"
	if pageFlags(m.deps.Controller, t.page) {
		icon = "⏸"
	}
	b.WriteString(styles.title.Render(fmt.Sprintf("%s %s", icon, t.page.Name)))
	b.WriteString("\n")
	b.WriteString(styles.muted.Render(loadedCount(m.loc, t.list)))
	b.WriteString("\n")

	first, last := t.window()
	for i := first; i <= last && i < t.list.Len(); i++ {
		b.WriteString(m.renderRow(i, width))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) renderRow(i, width int) string {
	t := m.tracks
	row, _ := t.list.Row(i)
	number := fmt.Sprintf("%4d ", i+1)

	if !row.Loaded() {
		line := number + m.loc.T("ui.loading")
		if row.Corrupted {
			line = number + m.loc.T("ui.unavailable")
		}
		return m.rowStyle(i, false).Render(format.Truncate(line, width))
	}

	current := false
	if m.deps.Controller != nil {
		isArtist := t.page.Type == core.PageTypeArtist
		flags := m.deps.Controller.IsThisPlaybackPlaying(row.ID, t.page.URI, isArtist, t.page.ID)
		current = flags.Track && (flags.Playlist || flags.Artist)
		if player.ShowPause(flags, true) {
			number = "   ⏸ "
		}
	}

	saved := "  "
	if t.list.InLibrary(row.Position) {
		saved = "♥ "
	}
	duration := format.FormatTime(row.Duration)
	title := fmt.Sprintf("%s%s%s", number, saved, row.Name)
	if artist := row.ArtistName(); artist != "" {
		title = fmt.Sprintf("%s · %s", title, artist)
	}
	space := max(width-len([]rune(duration))-1, 1)
	title = format.Truncate(title, space)
	pad := max(width-len([]rune(title))-len([]rune(duration)), 1)
	return m.rowStyle(i, current).Render(title + strings.Repeat(" ", pad) + duration)
}

func (m *Model) rowStyle(i int, current bool) lipgloss.Style {
	switch {
	case i == m.tracks.cursor:
		return styles.selected
	case current:
		return styles.current
	}
	return styles.row
}

// loadedCount is shown under the page name.
func loadedCount(loc *i18n.Localizer, list *tracklist.List) string {
	return loc.T("ui.loaded_of", len(list.Items()), list.Len())
}
