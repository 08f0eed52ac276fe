package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tunedeck/internal/core"
	"tunedeck/internal/lyrics"
	"tunedeck/pkg/format"
)

// progressX is where the bar starts on its line, after the elapsed label.
const progressX = 6

// upNextRows bounds the queue shown on the now playing screen.
const upNextRows = 10

func (m *Model) View() string {
	if m.width == 0 {
		return m.loc.T("ui.loading")
	}

	height := m.contentHeight()
	var content string
	switch {
	case m.help.ShowAll:
		content = m.help.FullHelpView(m.keys.FullHelp())
	case m.showLyrics:
		content = m.renderLyrics(m.width, height)
	case m.view == TracksView && m.tracks != nil:
		content = m.renderTracks(m.width)
	case m.view == NowPlayingView:
		content = m.renderNowPlaying(m.width)
	default:
		if l, ok := m.lists[m.view]; ok {
			content = l.View()
		}
	}
	content = lipgloss.NewStyle().Width(m.width).Height(height).MaxHeight(height).Render(content)

	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.toasts.len() > 0 {
		footer = m.toasts.render(m.loc)
	}

	screen := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderPlayer(),
		footer,
	)
	if m.menu != nil {
		screen = overlay(screen, m.renderMenu(), m.menu.x, m.menu.y, m.width, m.height)
	}
	return screen
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, len(tabOrder))
	for _, v := range tabOrder {
		title := m.viewTitle(v)
		if v == m.view {
			tabs = append(tabs, styles.title.Render(title))
			continue
		}
		tabs = append(tabs, styles.muted.Padding(0, 1).Render(title))
	}
	line := strings.Join(tabs, " ")
	if m.busy() {
		line = fmt.Sprintf("%s %s", line, m.spinner.View())
	}
	if user := m.user(); user != nil {
		line = fmt.Sprintf("%s  %s", line, styles.muted.Render(user.DisplayName))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Height(headerHeight).Render(line)
}

func (m *Model) renderPlayer() string {
	state := m.state
	var title string
	if item := state.CurrentlyPlaying; item != nil {
		icon := "▶"
		if state.IsPlaying {
			icon = "⏸"
		}
		title = fmt.Sprintf("%s %s", icon, item.Name)
		if artist := item.ArtistName(); artist != "" {
			title = fmt.Sprintf("%s · %s", title, styles.muted.Render(artist))
		}
	} else {
		title = styles.muted.Render(m.loc.T("ui.nothing_playing"))
	}

	duration := state.Duration
	if duration == 0 && state.CurrentlyPlaying != nil {
		duration = state.CurrentlyPlaying.Duration
	}
	pv := core.Progress(state.Position, duration)
	bar := fmt.Sprintf("%5s %s %s",
		format.FormatTime(pv.Label),
		m.progress.ViewAs(pv.Percent/100),
		format.FormatTime(pv.Total),
	)

	status := []string{fmt.Sprintf("vol %d%%", state.Volume)}
	if state.Shuffle {
		status = append(status, "shuffle")
	}
	if state.Repeat != "" && state.Repeat != core.RepeatStateOff {
		status = append(status, "repeat "+state.Repeat)
	}
	if !state.Premium {
		status = append(status, m.loc.T("ui.preview_mode"))
	}
	line := styles.muted.Render(strings.Join(status, " • "))
	if state.ReconnectionError {
		line = fmt.Sprintf("%s  %s", line, styles.err.Render(m.loc.T("ui.reconnection_error")))
	}

	return styles.bar.Width(m.width).Render(strings.Join([]string{title, bar, line}, "\n"))
}

func (m *Model) renderNowPlaying(width int) string {
	item := m.state.CurrentlyPlaying
	if item == nil {
		return styles.muted.Render(m.loc.T("ui.nothing_playing"))
	}
	var b strings.Builder
	b.WriteString(styles.section.Render(m.loc.T("ui.now_playing")))
	b.WriteString("\n")
	b.WriteString(styles.current.Render(format.Truncate(item.Name, width)))
	b.WriteString("\n")
	b.WriteString(format.Truncate(item.ArtistName(), width))
	b.WriteString("\n")
	if item.Album.Name != "" {
		b.WriteString(styles.muted.Render(format.Truncate(item.Album.Name, width)))
		b.WriteString("\n")
	}
	if source := m.state.PlayedSource; source != "" {
		b.WriteString(styles.muted.Render(source))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.section.Render(m.loc.T("ui.up_next")))
	b.WriteString("\n")
	for i, next := range m.state.NextTracks {
		if i == upNextRows {
			break
		}
		line := fmt.Sprintf("%2d. %s · %s", i+1, next.Name, next.ArtistName())
		b.WriteString(format.Truncate(line, width))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) renderLyrics(width, height int) string {
	block := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Background(lipgloss.Color(m.theme.Background)).
		Foreground(lipgloss.Color(m.theme.TextColor))

	switch {
	case m.lyricsErr != nil && errors.Is(m.lyricsErr, lyrics.ErrNotFound):
		return block.Render(m.loc.T("error.lyrics_not_found"))
	case m.lyricsErr != nil:
		return block.Render(m.loc.T("error.generic"))
	case m.lyrics == nil:
		return block.Render(m.loc.T("ui.loading"))
	}

	current := m.lyrics.LineAt(m.state.Position)
	start := 0
	if current >= 0 {
		start = max(current-height/2, 0)
	}
	end := min(start+height, len(m.lyrics.Lines))

	active := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color(m.theme.LineColor)).
		Background(lipgloss.Color(m.theme.Background))
	rest := lipgloss.NewStyle().Faint(current >= 0).
		Foreground(lipgloss.Color(m.theme.TextColor)).
		Background(lipgloss.Color(m.theme.Background))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := format.Truncate(m.lyrics.Lines[i].Text, width)
		if i == current {
			lines = append(lines, active.Render(text))
			continue
		}
		lines = append(lines, rest.Render(text))
	}
	return block.Render(strings.Join(lines, "\n"))
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if m.menu != nil {
		m.menu = nil
		return m, nil
	}

	barY := headerHeight + m.contentHeight() + 2
	if msg.Button == tea.MouseButtonLeft && msg.Y == barY {
		x := msg.X - progressX
		if x < 0 || x >= m.progress.Width {
			return m, nil
		}
		percent := 100 * float64(x) / float64(m.progress.Width)
		return m, m.seekTo(core.SeekTarget(percent, m.state.Duration))
	}

	if m.view != TracksView || m.tracks == nil || m.showLyrics {
		return m, nil
	}
	t := m.tracks
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		t.move(-1)
		return m, m.ensureVisible()
	case tea.MouseButtonWheelDown:
		t.move(1)
		return m, m.ensureVisible()
	}

	i, ok := t.rowAt(msg.Y - headerHeight - trackHeaderHeight)
	if !ok {
		return m, nil
	}
	t.cursor = i
	t.clamp()
	if msg.Button == tea.MouseButtonRight {
		if row, ok := t.selected(); ok && row.Loaded() {
			m.openMenu(row, msg.X, msg.Y)
		}
	}
	return m, nil
}
