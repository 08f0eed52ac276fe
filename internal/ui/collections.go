package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"tunedeck/internal/core"
)

const historyLimit = 100

// collectPages walks a paged endpoint until it reports no next page.
func collectPages[T any](ctx context.Context, fetch func(context.Context, int) (*core.Page[T], error)) ([]T, error) {
	var all []T
	offset := 0
	for range maxPages {
		page, err := fetch(ctx, offset)
		if err != nil {
			return all, err
		}
		all = append(all, page.Items...)
		if !page.Next || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	return all, nil
}

// loadCollection fetches the items of a library view in the background.
func (m *Model) loadCollection(view View) tea.Cmd {
	if m.loading[view] {
		return nil
	}
	client := m.deps.Client
	history := m.deps.History
	loc := m.loc
	ctx := m.ctx

	var fetch func() collectionMsg
	switch view {
	case PlaylistsView:
		if client == nil {
			return nil
		}
		fetch = func() collectionMsg {
			playlists, err := collectPages(ctx, client.MyPlaylists)
			items := make([]list.Item, len(playlists))
			for i, p := range playlists {
				items[i] = playlistItem{playlist: p, loc: loc}
			}
			return collectionMsg{view: view, items: items, playlists: playlists, err: err}
		}
	case AlbumsView:
		if client == nil {
			return nil
		}
		fetch = func() collectionMsg {
			albums, err := collectPages(ctx, client.SavedAlbums)
			items := make([]list.Item, len(albums))
			for i, a := range albums {
				items[i] = albumItem{album: a}
			}
			return collectionMsg{view: view, items: items, err: err}
		}
	case ShowsView:
		if client == nil {
			return nil
		}
		fetch = func() collectionMsg {
			shows, err := collectPages(ctx, client.SavedShows)
			items := make([]list.Item, len(shows))
			for i, s := range shows {
				items[i] = showItem{show: s}
			}
			return collectionMsg{view: view, items: items, err: err}
		}
	case ArtistsView:
		if client == nil {
			return nil
		}
		fetch = func() collectionMsg {
			artists, err := client.FollowedArtists(ctx)
			items := make([]list.Item, len(artists))
			for i, a := range artists {
				items[i] = artistItem{artist: a, loc: loc}
			}
			return collectionMsg{view: view, items: items, err: err}
		}
	case DevicesView:
		if client == nil {
			return nil
		}
		fetch = func() collectionMsg {
			devices, err := client.Devices(ctx)
			items := make([]list.Item, len(devices))
			for i, d := range devices {
				items[i] = deviceItem{device: d, loc: loc}
			}
			return collectionMsg{view: view, items: items, err: err}
		}
	case HistoryView:
		if history == nil {
			return nil
		}
		fetch = func() collectionMsg {
			entries, err := history.Recent(ctx, historyLimit)
			now := time.Now()
			items := make([]list.Item, len(entries))
			for i, e := range entries {
				items[i] = historyItem{entry: e, now: now}
			}
			return collectionMsg{view: view, items: items, err: err}
		}
	default:
		return nil
	}

	m.loading[view] = true
	return func() tea.Msg {
		return fetch()
	}
}
