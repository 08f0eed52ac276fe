package core

import (
	"context"
	"fmt"
	"strings"
)

// MenuAction identifies a context menu entry.
type MenuAction int

const (
	MenuAddToQueue MenuAction = iota
	MenuAddToPlaylist
	MenuSaveToLibrary
	MenuRemoveFromLibrary
	MenuGoToArtist
	MenuGoToAlbum
	MenuCopyLink
	MenuSongRadio
)

// MenuBounds are the margins used when placing a menu on screen.
type MenuBounds struct {
	EdgeX    int
	EdgeY    int
	Min      int
	Fallback int
}

var (
	// PixelMenuBounds are the margins of a pointer-driven menu.
	PixelMenuBounds = MenuBounds{EdgeX: 30, EdgeY: 10, Min: 45, Fallback: 50}
	// CellMenuBounds are the margins of a terminal menu, in cells.
	CellMenuBounds = MenuBounds{EdgeX: 2, EdgeY: 1, Min: 2, Fallback: 2}
)

// MenuEntry is one line of a context menu. Playlists is set for MenuAddToPlaylist.
type MenuEntry struct {
	Action    MenuAction
	LabelKey  string
	Playlists []Playlist
}

// ToastVariant classifies feedback shown after an action.
type ToastVariant string

const (
	ToastSuccess ToastVariant = "success"
	ToastError   ToastVariant = "error"
	ToastInfo    ToastVariant = "info"
)

// Toast is a transient message keyed for translation.
type Toast struct {
	Variant ToastVariant
	Key     string
	Args    []any
}

// MenuContext is the data a context menu is opened on.
type MenuContext struct {
	Item      Item
	DeviceID  string
	User      *User
	Playlists []Playlist
	InLibrary bool
}

// OwnPlaylists keeps playlists owned by the user; only those accept new items.
func OwnPlaylists(playlists []Playlist, user *User) []Playlist {
	if user == nil {
		return nil
	}
	own := make([]Playlist, 0, len(playlists))
	for _, p := range playlists {
		if p.OwnerID == user.ID {
			own = append(own, p)
		}
	}
	return own
}

// MenuFor lists the entries available for an item.
func MenuFor(mc MenuContext) []MenuEntry {
	var entries []MenuEntry
	if mc.Item.URI != "" && mc.DeviceID != "" {
		entries = append(entries, MenuEntry{Action: MenuAddToQueue, LabelKey: "menu.add_to_queue"})
	}
	entries = append(entries, MenuEntry{
		Action:    MenuAddToPlaylist,
		LabelKey:  "menu.add_to_playlist",
		Playlists: OwnPlaylists(mc.Playlists, mc.User),
	})
	if mc.Item.ID != "" && !mc.Item.IsLocal {
		if mc.InLibrary {
			entries = append(entries, MenuEntry{Action: MenuRemoveFromLibrary, LabelKey: "menu.remove_from_library"})
		} else {
			entries = append(entries, MenuEntry{Action: MenuSaveToLibrary, LabelKey: "menu.save_to_library"})
		}
	}
	entries = append(entries, MenuEntry{Action: MenuSongRadio, LabelKey: "menu.song_radio"})
	if len(mc.Item.Artists) > 0 && mc.Item.Artists[0].ID != "" {
		entries = append(entries, MenuEntry{Action: MenuGoToArtist, LabelKey: "menu.go_to_artist"})
	}
	if mc.Item.Album.ID != "" {
		entries = append(entries, MenuEntry{Action: MenuGoToAlbum, LabelKey: "menu.go_to_album"})
	}
	if mc.Item.ID != "" {
		entries = append(entries, MenuEntry{Action: MenuCopyLink, LabelKey: "menu.copy_link"})
	}
	return entries
}

// MenuExecutor runs the side effects of menu entries.
type MenuExecutor struct {
	Client   SpotifyClient
	Library  LibraryIndex
	CopyText func(string) error
	Navigate func(pageType, id string)
	SiteURL  string
}

// Execute performs the action and returns the toast to show. playlistID is
// only used by MenuAddToPlaylist.
func (e *MenuExecutor) Execute(ctx context.Context, entry MenuEntry, mc MenuContext, playlistID string) Toast {
	item := mc.Item
	switch entry.Action {
	case MenuAddToQueue:
		if item.URI == "" || mc.DeviceID == "" {
			return Toast{Variant: ToastError, Key: "toast.queue_failed"}
		}
		if err := e.Client.AddToQueue(ctx, item.URI, mc.DeviceID); err != nil {
			return Toast{Variant: ToastError, Key: "toast.queue_failed"}
		}
		return Toast{Variant: ToastSuccess, Key: "toast.queue_added"}

	case MenuAddToPlaylist:
		if item.URI == "" || playlistID == "" {
			return Toast{Variant: ToastError, Key: "toast.playlist_failed"}
		}
		if err := e.Client.AddItemsToPlaylist(ctx, playlistID, []string{item.URI}); err != nil {
			return Toast{Variant: ToastError, Key: "toast.playlist_failed"}
		}
		return Toast{Variant: ToastSuccess, Key: "toast.playlist_added"}

	case MenuSaveToLibrary, MenuRemoveFromLibrary:
		return e.toggleLibrary(ctx, item, entry.Action == MenuSaveToLibrary)

	case MenuGoToArtist:
		if e.Navigate != nil && len(item.Artists) > 0 {
			e.Navigate(PageTypeArtist, item.Artists[0].ID)
		}
		return Toast{}

	case MenuGoToAlbum:
		if e.Navigate != nil && item.Album.ID != "" {
			e.Navigate(PageTypeAlbum, item.Album.ID)
		}
		return Toast{}

	case MenuCopyLink:
		link := ItemLink(e.SiteURL, item)
		if e.CopyText == nil || link == "" {
			return Toast{Variant: ToastError, Key: "toast.copy_failed"}
		}
		if err := e.CopyText(link); err != nil {
			return Toast{Variant: ToastError, Key: "toast.copy_failed"}
		}
		return Toast{Variant: ToastSuccess, Key: "toast.copied"}

	case MenuSongRadio:
		return Toast{Variant: ToastError, Key: "toast.not_implemented"}
	}
	return Toast{Variant: ToastError, Key: "error.generic"}
}

func (e *MenuExecutor) toggleLibrary(ctx context.Context, item Item, save bool) Toast {
	var err error
	episode := item.Type == ItemTypeEpisode
	switch {
	case save && episode:
		err = e.Client.SaveEpisodes(ctx, item.ID)
	case save:
		err = e.Client.SaveTracks(ctx, item.ID)
	case episode:
		err = e.Client.RemoveEpisodes(ctx, item.ID)
	default:
		err = e.Client.RemoveTracks(ctx, item.ID)
	}
	if err != nil {
		return Toast{Variant: ToastError, Key: "error.generic"}
	}
	if e.Library != nil {
		e.Library.Set(item.ID, save)
	}
	if save {
		return Toast{Variant: ToastSuccess, Key: "toast.saved", Args: []any{item.Name}}
	}
	return Toast{Variant: ToastSuccess, Key: "toast.removed", Args: []any{item.Name}}
}

// ItemLink builds the public web link of an item.
func ItemLink(siteURL string, item Item) string {
	if item.ID == "" {
		return ""
	}
	kind := item.Type
	if kind == "" {
		kind = ItemTypeTrack
	}
	if siteURL == "" {
		siteURL = "https://open.spotify.com"
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(siteURL, "/"), kind, item.ID)
}

// ClampMenuPosition keeps a w×h menu opened at (x, y) inside the screen.
// Coordinates too close to the top-left corner snap to b.Fallback.
func ClampMenuPosition(x, y, w, h, screenW, screenH int, b MenuBounds) (left, top int) {
	left, top = x, y
	offX := x != 0 && screenW-x < w
	offY := y != 0 && screenH-y < h
	if offX {
		left = max(screenW-w-b.EdgeX, 0)
	} else if x < b.Min {
		left = b.Fallback
	}
	if offY {
		top = max(screenH-h-b.EdgeY, 0)
	} else if y < b.Min {
		top = b.Fallback
	}
	return left, top
}
