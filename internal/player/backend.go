// Package player drives playback through Spotify Connect or the local preview
// player and keeps the shared playback state current.
package player

import (
	"context"
	"time"

	"tunedeck/internal/core"
	"tunedeck/pkg/spotifyuri"
)

const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Backend is one way of producing sound.
type Backend interface {
	Name() string
	Play(ctx context.Context, req PlayRequest) (core.PlayStatus, error)
	TogglePlay(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	Close() error
}

// PlayRequest describes what to start. AllTracks are the rows of the page the
// request comes from, in order.
type PlayRequest struct {
	Track         *core.Item
	AllTracks     []core.Item
	ContextURI    string
	PlaylistID    string
	IsSingleTrack bool
	Position      int
	// URI plays exactly this item in single-track mode.
	URI string
	// Source becomes PlayedSource once the play succeeded.
	Source string
}

// AudioPlayer is the local output the non-premium backend streams previews to.
type AudioPlayer interface {
	Play(ctx context.Context, url string) error
	TogglePause() (bool, error)
	Pause() error
	Resume() error
	Paused() bool
	Seek(position time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	SetVolume(percent int)
	Volume() int
	Stop()
	Finished() <-chan struct{}
}

// playOptions maps a request onto a Connect play call. Rows without a uri
// are left out of the uri list, so the offset is shifted by the number of
// such rows before Position.
func playOptions(req PlayRequest) core.PlayOptions {
	if !req.IsSingleTrack {
		// Artist contexts reject an offset.
		if spotifyuri.IsArtistURI(req.ContextURI) {
			return core.PlayOptions{ContextURI: req.ContextURI}
		}
		offset := req.Track.Position
		return core.PlayOptions{ContextURI: req.ContextURI, Offset: &offset}
	}

	if req.URI != "" {
		zero := 0
		return core.PlayOptions{URIs: []string{req.URI}, Offset: &zero}
	}

	uris := make([]string, 0, len(req.AllTracks))
	missingBefore := 0
	for i, track := range req.AllTracks {
		if track.URI != "" {
			uris = append(uris, track.URI)
		} else if i < req.Position {
			missingBefore++
		}
	}
	offset := req.Position - missingBefore
	return core.PlayOptions{URIs: uris, Offset: &offset}
}

func playable(item core.Item) bool {
	return item.PreviewURL != "" && !item.Corrupted
}

func historyEntry(item *core.Item, source, backend string) core.HistoryEntry {
	return core.HistoryEntry{
		URI:      item.URI,
		Name:     item.Name,
		Artist:   item.ArtistName(),
		Source:   source,
		Backend:  backend,
		PlayedAt: time.Now(),
	}
}
