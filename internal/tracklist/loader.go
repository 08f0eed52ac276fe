// Package tracklist keeps long, sparsely loaded lists of tracks and episodes.
package tracklist

import (
	"context"
	"fmt"

	"tunedeck/internal/core"
)

const (
	SourcePlaylist = "playlist"
	SourceLibrary  = "library"
	SourceAlbum    = "album"
	SourceShow     = "show"
	SourceArtist   = "artist"
)

// Loader fetches the page of rows starting at offset.
type Loader interface {
	Load(ctx context.Context, offset int) (items []core.Item, total int, err error)
	// Source names the loader for logs and metrics.
	Source() string
}

type PlaylistLoader struct {
	Client     core.SpotifyClient
	PlaylistID string
	Market     string
}

func (l PlaylistLoader) Load(ctx context.Context, offset int) ([]core.Item, int, error) {
	page, err := l.Client.PlaylistItems(ctx, l.PlaylistID, offset, l.Market)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load playlist %s: %w", l.PlaylistID, err)
	}
	return page.Items, page.Total, nil
}

func (l PlaylistLoader) Source() string { return SourcePlaylist }

// LibraryLoader pages through the user's saved tracks.
type LibraryLoader struct {
	Client core.SpotifyClient
}

func (l LibraryLoader) Load(ctx context.Context, offset int) ([]core.Item, int, error) {
	page, err := l.Client.SavedTracks(ctx, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load saved tracks: %w", err)
	}
	return page.Items, page.Total, nil
}

func (l LibraryLoader) Source() string { return SourceLibrary }

type AlbumLoader struct {
	Client  core.SpotifyClient
	AlbumID string
}

func (l AlbumLoader) Load(ctx context.Context, offset int) ([]core.Item, int, error) {
	page, err := l.Client.AlbumTracks(ctx, l.AlbumID, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load album %s: %w", l.AlbumID, err)
	}
	return page.Items, page.Total, nil
}

func (l AlbumLoader) Source() string { return SourceAlbum }

type ShowLoader struct {
	Client core.SpotifyClient
	ShowID string
}

func (l ShowLoader) Load(ctx context.Context, offset int) ([]core.Item, int, error) {
	page, err := l.Client.ShowEpisodes(ctx, l.ShowID, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load show %s: %w", l.ShowID, err)
	}
	return page.Items, page.Total, nil
}

func (l ShowLoader) Source() string { return SourceShow }

// ArtistLoader returns the artist's top tracks as a single page.
type ArtistLoader struct {
	Client   core.SpotifyClient
	ArtistID string
	Market   string
}

func (l ArtistLoader) Load(ctx context.Context, offset int) ([]core.Item, int, error) {
	if offset > 0 {
		return nil, 0, nil
	}
	items, err := l.Client.ArtistTopTracks(ctx, l.ArtistID, l.Market)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load artist %s: %w", l.ArtistID, err)
	}
	for i := range items {
		items[i].Position = i
	}
	return items, len(items), nil
}

func (l ArtistLoader) Source() string { return SourceArtist }

// LoaderFor picks the loader of a page.
func LoaderFor(client core.SpotifyClient, page core.PageDetails, market string) (Loader, error) {
	switch page.Type {
	case core.PageTypePlaylist:
		return PlaylistLoader{Client: client, PlaylistID: page.ID, Market: market}, nil
	case core.PageTypeCollection:
		return LibraryLoader{Client: client}, nil
	case core.PageTypeAlbum:
		return AlbumLoader{Client: client, AlbumID: page.ID}, nil
	case core.PageTypeShow:
		return ShowLoader{Client: client, ShowID: page.ID}, nil
	case core.PageTypeArtist:
		return ArtistLoader{Client: client, ArtistID: page.ID, Market: market}, nil
	}
	return nil, fmt.Errorf("no loader for page type %q", page.Type)
}
