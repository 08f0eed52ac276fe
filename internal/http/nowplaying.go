package http

import (
	"time"

	"tunedeck/internal/core"
	"tunedeck/pkg/format"
)

// artworkWidth is the smallest cover width worth serving.
const artworkWidth = 300

type nowPlaying struct {
	Playing    bool      `json:"playing"`
	Item       *itemView `json:"item,omitempty"`
	PositionMs int64     `json:"position_ms"`
	DurationMs int64     `json:"duration_ms"`
	DeviceID   string    `json:"device_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	Volume     int       `json:"volume"`
	Shuffle    bool      `json:"shuffle"`
	Repeat     string    `json:"repeat,omitempty"`
	Next       []string  `json:"next,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type itemView struct {
	ID      string   `json:"id"`
	URI     string   `json:"uri"`
	Name    string   `json:"name"`
	Artists []string `json:"artists,omitempty"`
	Album   string   `json:"album,omitempty"`
	Type    string   `json:"type,omitempty"`
	Artwork string   `json:"artwork,omitempty"`
}

func newNowPlaying(state core.PlaybackState) nowPlaying {
	view := nowPlaying{
		Playing:    state.IsPlaying,
		PositionMs: state.Position.Milliseconds(),
		DurationMs: state.Duration.Milliseconds(),
		DeviceID:   state.DeviceID,
		Source:     state.PlayedSource,
		Volume:     state.Volume,
		Shuffle:    state.Shuffle,
		Repeat:     state.Repeat,
		UpdatedAt:  state.UpdatedAt,
	}
	if item := state.CurrentlyPlaying; item != nil {
		view.Item = &itemView{
			ID:      item.ID,
			URI:     item.URI,
			Name:    item.Name,
			Album:   item.Album.Name,
			Type:    item.Type,
			Artwork: artwork(*item),
		}
		for _, artist := range item.Artists {
			view.Item.Artists = append(view.Item.Artists, artist.Name)
		}
	}
	for _, next := range state.NextTracks {
		view.Next = append(view.Next, next.Name)
	}
	return view
}

// artwork picks a cover for item. Episodes carry their own images, tracks
// use the album's.
func artwork(item core.Item) string {
	images := item.Images
	if len(images) == 0 {
		images = item.Album.Images
	}
	candidates := make([]format.Image, len(images))
	for i, img := range images {
		candidates[i] = format.Image{URL: img.URL, Width: img.Width}
	}
	return format.ChooseImage(candidates, artworkWidth)
}
