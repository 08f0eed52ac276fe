package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
	"tunedeck/pkg/format"
)

var (
	_ list.Item = sectionItem{}
	_ list.Item = playlistItem{}
	_ list.Item = albumItem{}
	_ list.Item = showItem{}
	_ list.Item = artistItem{}
	_ list.Item = deviceItem{}
	_ list.Item = historyItem{}
	_ list.Item = languageItem{}
)

// sectionItem is an entry of the home screen.
type sectionItem struct {
	title string
	view  View
}

func (i sectionItem) FilterValue() string { return i.title }
func (i sectionItem) Title() string       { return i.title }
func (i sectionItem) Description() string { return "" }

type playlistItem struct {
	playlist core.Playlist
	loc      *i18n.Localizer
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := i.loc.T("ui.tracks_count", i.playlist.TrackCount)
	if i.playlist.OwnerName != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.OwnerName)
	}
	return desc
}

type albumItem struct {
	album core.Album
}

func (i albumItem) FilterValue() string { return i.album.Name }
func (i albumItem) Title() string       { return i.album.Name }
func (i albumItem) Description() string {
	names := make([]string, len(i.album.Artists))
	for j, artist := range i.album.Artists {
		names[j] = artist.Name
	}
	desc := strings.Join(names, ", ")
	if len(i.album.ReleaseDate) >= 4 {
		desc = fmt.Sprintf("%s • %s", desc, i.album.ReleaseDate[:4])
	}
	return desc
}

type showItem struct {
	show core.Show
}

func (i showItem) FilterValue() string { return i.show.Name }
func (i showItem) Title() string       { return i.show.Name }
func (i showItem) Description() string { return i.show.Publisher }

type artistItem struct {
	artist core.FollowedArtist
	loc    *i18n.Localizer
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	desc := i.loc.T("ui.followers", format.FormatNumber(i.artist.Followers))
	if len(i.artist.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, format.Conjunction(i.artist.Genres, ""))
	}
	return desc
}

type deviceItem struct {
	device core.Device
	loc    *i18n.Localizer
}

func (i deviceItem) FilterValue() string { return i.device.Name }
func (i deviceItem) Title() string       { return i.device.Name }
func (i deviceItem) Description() string {
	desc := i.device.Type
	if i.device.Active {
		desc = fmt.Sprintf("%s • %s", desc, i.loc.T("ui.active"))
	}
	return desc
}

type historyItem struct {
	entry core.HistoryEntry
	now   time.Time
}

func (i historyItem) FilterValue() string { return i.entry.Name }
func (i historyItem) Title() string       { return i.entry.Name }
func (i historyItem) Description() string {
	return fmt.Sprintf("%s • %s", i.entry.Artist, format.TimeAgo(i.entry.PlayedAt, i.now))
}

type languageItem struct {
	code string
	name string
}

func (i languageItem) FilterValue() string { return i.name }
func (i languageItem) Title() string       { return i.name }
func (i languageItem) Description() string { return i.code }

var languageNames = map[string]string{
	i18n.DefaultLanguage: "English",
	i18n.SpanishMessages: "Español",
}
