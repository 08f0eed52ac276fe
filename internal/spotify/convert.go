package spotify

import (
	"time"

	"github.com/tidwall/gjson"
	"github.com/zmb3/spotify/v2"

	"tunedeck/internal/core"
)

func convertImages(images []spotify.Image) []core.Image {
	out := make([]core.Image, 0, len(images))
	for _, img := range images {
		out = append(out, core.Image{URL: img.URL, Width: int(img.Width), Height: int(img.Height)})
	}
	return out
}

func convertArtists(artists []spotify.SimpleArtist) []core.Artist {
	out := make([]core.Artist, 0, len(artists))
	for _, a := range artists {
		out = append(out, core.Artist{ID: a.ID.String(), Name: a.Name, URI: string(a.URI)})
	}
	return out
}

func convertSimpleTrack(track *spotify.SimpleTrack) core.Item {
	item := core.Item{
		ID:         track.ID.String(),
		URI:        string(track.URI),
		Name:       track.Name,
		Artists:    convertArtists(track.Artists),
		Duration:   time.Duration(int(track.Duration)) * time.Millisecond,
		PreviewURL: track.PreviewURL,
		Explicit:   track.Explicit,
		Type:       core.ItemTypeTrack,
		IsPlayable: true,
	}
	item.Corrupted = core.IsCorrupted(item.Name, item.ArtistName(), int(track.Duration))
	return item
}

func convertFullTrack(track *spotify.FullTrack) core.Item {
	item := convertSimpleTrack(&track.SimpleTrack)
	item.Album = core.Album{
		ID:          track.Album.ID.String(),
		Name:        track.Album.Name,
		URI:         string(track.Album.URI),
		Images:      convertImages(track.Album.Images),
		ReleaseDate: track.Album.ReleaseDate,
	}
	item.Images = item.Album.Images
	if track.IsPlayable != nil {
		item.IsPlayable = *track.IsPlayable
	}
	return item
}

func convertDevice(d *spotify.PlayerDevice) core.Device {
	return core.Device{
		ID:     d.ID.String(),
		Name:   d.Name,
		Type:   d.Type,
		Active: d.Active,
		Volume: int(d.Volume),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func imagesFromJSON(r gjson.Result) []core.Image {
	var images []core.Image
	r.ForEach(func(_, img gjson.Result) bool {
		images = append(images, core.Image{
			URL:    img.Get("url").String(),
			Width:  int(img.Get("width").Int()),
			Height: int(img.Get("height").Int()),
		})
		return true
	})
	return images
}

// itemFromJSON maps a track or episode object. Null entries, which the API
// returns for removed content, become corrupted placeholders.
func itemFromJSON(r gjson.Result, position int) core.Item {
	if !r.Exists() || r.Type == gjson.Null {
		return core.Item{Position: position, Corrupted: true}
	}

	kind := r.Get("type").String()
	if kind == "" {
		kind = core.ItemTypeTrack
	}
	item := core.Item{
		ID:         r.Get("id").String(),
		URI:        r.Get("uri").String(),
		Name:       r.Get("name").String(),
		Duration:   time.Duration(r.Get("duration_ms").Int()) * time.Millisecond,
		Explicit:   r.Get("explicit").Bool(),
		Type:       kind,
		IsLocal:    r.Get("is_local").Bool(),
		Position:   position,
		IsPlayable: true,
	}
	if playable := r.Get("is_playable"); playable.Exists() {
		item.IsPlayable = playable.Bool()
	}

	if kind == core.ItemTypeEpisode {
		item.PreviewURL = r.Get("audio_preview_url").String()
		item.Images = imagesFromJSON(r.Get("images"))
		show := r.Get("show")
		item.ShowName = show.Get("name").String()
		item.Album = core.Album{
			ID:          show.Get("id").String(),
			Name:        item.ShowName,
			URI:         show.Get("uri").String(),
			Images:      item.Images,
			ReleaseDate: r.Get("release_date").String(),
		}
	} else {
		item.PreviewURL = r.Get("preview_url").String()
		r.Get("artists").ForEach(func(_, a gjson.Result) bool {
			item.Artists = append(item.Artists, core.Artist{
				ID:   a.Get("id").String(),
				Name: a.Get("name").String(),
				URI:  a.Get("uri").String(),
			})
			return true
		})
		album := r.Get("album")
		item.Album = core.Album{
			ID:          album.Get("id").String(),
			Name:        album.Get("name").String(),
			URI:         album.Get("uri").String(),
			Images:      imagesFromJSON(album.Get("images")),
			ReleaseDate: album.Get("release_date").String(),
		}
		item.Images = item.Album.Images
	}

	item.Corrupted = core.IsCorrupted(item.Name, item.ArtistName(), int(item.Duration/time.Millisecond))
	return item
}
