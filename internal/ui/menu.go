package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tunedeck/internal/core"
)

// menuState is an open context menu. When picking stays true the entries
// are replaced by the user's playlists.
type menuState struct {
	entries  []core.MenuEntry
	mc       core.MenuContext
	position int
	cursor   int
	x, y     int

	picking   bool
	playlists []core.Playlist
}

func (s *menuState) size() int {
	if s.picking {
		return len(s.playlists)
	}
	return len(s.entries)
}

func (m *Model) openMenu(row core.Item, x, y int) {
	var deviceID string
	if m.deps.Controller != nil && m.deps.Controller.Premium() {
		deviceID = m.state.DeviceID
	}
	mc := core.MenuContext{
		Item:      row,
		DeviceID:  deviceID,
		User:      m.user(),
		Playlists: m.playlists,
		InLibrary: m.tracks != nil && m.tracks.list.InLibrary(row.Position),
	}
	m.menu = &menuState{
		entries:  core.MenuFor(mc),
		mc:       mc,
		position: row.Position,
		x:        x,
		y:        y,
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	s := m.menu
	switch {
	case key.Matches(msg, m.keys.up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if s.cursor < s.size()-1 {
			s.cursor++
		}
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.menu), key.Matches(msg, m.keys.quit):
		if s.picking {
			s.picking, s.cursor = false, 0
			return nil
		}
		m.menu = nil
	case key.Matches(msg, m.keys.enter):
		return m.chooseMenuEntry()
	}
	return nil
}

func (m *Model) chooseMenuEntry() tea.Cmd {
	s := m.menu
	if s.picking {
		if s.cursor >= len(s.playlists) {
			return nil
		}
		m.menu = nil
		entry := core.MenuEntry{Action: core.MenuAddToPlaylist}
		return m.runMenuEntry(entry, s.mc, s.playlists[s.cursor].ID, s.position)
	}
	if s.cursor >= len(s.entries) {
		return nil
	}
	entry := s.entries[s.cursor]
	if entry.Action == core.MenuAddToPlaylist {
		if len(entry.Playlists) == 0 {
			m.menu = nil
			return m.toast(core.Toast{Variant: core.ToastError, Key: "toast.playlist_failed"})
		}
		s.picking, s.playlists, s.cursor = true, entry.Playlists, 0
		return nil
	}
	m.menu = nil
	return m.runMenuEntry(entry, s.mc, "", s.position)
}

// runMenuEntry executes an entry in the background. Navigation requested by
// the entry is reported back instead of being applied from another goroutine.
func (m *Model) runMenuEntry(entry core.MenuEntry, mc core.MenuContext, playlistID string, position int) tea.Cmd {
	if m.deps.Client == nil {
		return nil
	}
	exec := m.menuExec
	ctx := m.ctx
	return func() tea.Msg {
		var nav *navTarget
		exec.Navigate = func(pageType, id string) {
			nav = &navTarget{pageType: pageType, id: id, name: navName(mc.Item, pageType)}
		}
		t := exec.Execute(ctx, entry, mc, playlistID)
		return menuDoneMsg{toast: t, nav: nav, action: entry.Action, position: position}
	}
}

func navName(item core.Item, pageType string) string {
	if pageType == core.PageTypeAlbum {
		return item.Album.Name
	}
	return item.ArtistName()
}

func (m *Model) menuDone(msg menuDoneMsg) tea.Cmd {
	var cmds []tea.Cmd
	saveAction := msg.action == core.MenuSaveToLibrary || msg.action == core.MenuRemoveFromLibrary
	if saveAction && msg.toast.Variant == core.ToastSuccess && m.tracks != nil {
		m.tracks.list.SetInLibrary(msg.position, msg.action == core.MenuSaveToLibrary)
	}
	if msg.toast.Key != "" {
		cmds = append(cmds, m.toast(msg.toast))
	}
	if msg.nav != nil {
		cmds = append(cmds, m.openPage(msg.nav.pageType, msg.nav.id, msg.nav.name))
	}
	return tea.Batch(cmds...)
}

func (m *Model) renderMenu() string {
	s := m.menu
	var labels []string
	if s.picking {
		for _, p := range s.playlists {
			labels = append(labels, p.Name)
		}
	} else {
		for _, e := range s.entries {
			labels = append(labels, m.loc.T(e.LabelKey))
		}
	}
	lines := make([]string, len(labels))
	for i, label := range labels {
		if i == s.cursor {
			lines[i] = styles.menuFocus.Render("› " + label)
			continue
		}
		lines[i] = styles.menuItem.Render("  " + label)
	}
	return styles.menu.Render(strings.Join(lines, "\n"))
}

// overlay draws box over base with its top-left corner at (x, y), clamped
// so the box stays on screen.
func overlay(base, box string, x, y, width, height int) string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	boxLines := strings.Split(box, "\n")
	left, top := core.ClampMenuPosition(x, y, lipgloss.Width(box), len(boxLines), width, height, core.CellMenuBounds)

	for i, boxLine := range boxLines {
		row := top + i
		if row >= len(lines) {
			break
		}
		var prefix string
		if left > 0 {
			prefix = lipgloss.NewStyle().MaxWidth(left).Render(lines[row])
		}
		if pad := left - lipgloss.Width(prefix); pad > 0 {
			prefix += strings.Repeat(" ", pad)
		}
		lines[row] = prefix + boxLine
	}
	return strings.Join(lines, "\n")
}
