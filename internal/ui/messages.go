package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"tunedeck/internal/core"
	"tunedeck/internal/lyrics"
	"tunedeck/internal/player"
	"tunedeck/internal/tracklist"
)

// stateMsg carries a playback snapshot from the state store.
type stateMsg core.PlaybackState

type stateClosedMsg struct{}

// collectionMsg fills the list of view.
type collectionMsg struct {
	view      View
	items     []list.Item
	playlists []core.Playlist
	err       error
}

type pageMsg struct {
	page *core.PageDetails
	list *tracklist.List
	err  error
}

// rowsLoadedMsg follows a visible-window load of the open track list.
type rowsLoadedMsg struct {
	list *tracklist.List
	err  error
}

type outcomeMsg player.Outcome

type toastMsg core.Toast

type toastExpiredMsg struct {
	id int
}

type lyricsMsg struct {
	itemID string
	lyrics *lyrics.Lyrics
	err    error
}

// navTarget is a page the menu asked to open.
type navTarget struct {
	pageType string
	id       string
	name     string
}

type menuDoneMsg struct {
	toast    core.Toast
	nav      *navTarget
	action   core.MenuAction
	position int
}

type deviceSelectedMsg struct {
	device core.Device
	err    error
}
