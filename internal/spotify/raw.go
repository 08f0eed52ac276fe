package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"tunedeck/internal/core"
	"tunedeck/pkg/format"
)

// playlistAddBatchSize is the most uris the add-items endpoint accepts per call.
const playlistAddBatchSize = 100

// do issues a request against the Web API for endpoints the library does not
// cover (episodes, mixed playlists, queueing by uri). Error responses are
// returned as spotify.Error so StatusCode works on them too.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

func decodeError(status int, body []byte) error {
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = http.StatusText(status)
	}
	return spotify.Error{Message: message, Status: status}
}

func pageQuery(offset int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(PageSize)},
		"offset": {strconv.Itoa(offset)},
	}
}

// PlaylistItems returns one page of a playlist, tracks and episodes alike.
// Rows the API returns without content keep their position as corrupted rows.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string, offset int, market string) (*core.Page[core.Item], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	query := pageQuery(offset)
	query.Set("additional_types", "track,episode")
	if market != "" {
		query.Set("market", market)
	}

	data, err := c.do(ctx, http.MethodGet, "playlists/"+url.PathEscape(playlistID)+"/tracks", query, nil)
	if err != nil {
		return nil, c.fail("get_playlist_items", err)
	}

	page := gjson.ParseBytes(data)
	entries := page.Get("items").Array()
	items := make([]core.Item, 0, len(entries))
	for i, entry := range entries {
		item := itemFromJSON(entry.Get("track"), offset+i)
		item.AddedAt = parseTime(entry.Get("added_at").String())
		if entry.Get("is_local").Bool() {
			item.IsLocal = true
		}
		items = append(items, item)
	}

	return &core.Page[core.Item]{
		Items:  items,
		Offset: offset,
		Total:  int(page.Get("total").Int()),
		Next:   page.Get("next").String() != "",
	}, nil
}

func (c *Client) SavedAlbums(ctx context.Context, offset int) (*core.Page[core.Album], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodGet, "me/albums", pageQuery(offset), nil)
	if err != nil {
		return nil, c.fail("get_saved_albums", err)
	}

	page := gjson.ParseBytes(data)
	var albums []core.Album
	page.Get("items.#.album").ForEach(func(_, album gjson.Result) bool {
		var artists []core.Artist
		album.Get("artists").ForEach(func(_, artist gjson.Result) bool {
			artists = append(artists, core.Artist{
				ID:   artist.Get("id").String(),
				Name: artist.Get("name").String(),
				URI:  artist.Get("uri").String(),
			})
			return true
		})
		albums = append(albums, core.Album{
			ID:          album.Get("id").String(),
			Name:        album.Get("name").String(),
			URI:         album.Get("uri").String(),
			Artists:     artists,
			Images:      imagesFromJSON(album.Get("images")),
			ReleaseDate: album.Get("release_date").String(),
		})
		return true
	})

	return &core.Page[core.Album]{
		Items:  albums,
		Offset: offset,
		Total:  int(page.Get("total").Int()),
		Next:   page.Get("next").String() != "",
	}, nil
}

func (c *Client) SavedShows(ctx context.Context, offset int) (*core.Page[core.Show], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodGet, "me/shows", pageQuery(offset), nil)
	if err != nil {
		return nil, c.fail("get_saved_shows", err)
	}

	page := gjson.ParseBytes(data)
	var shows []core.Show
	page.Get("items.#.show").ForEach(func(_, show gjson.Result) bool {
		shows = append(shows, core.Show{
			ID:        show.Get("id").String(),
			URI:       show.Get("uri").String(),
			Name:      show.Get("name").String(),
			Publisher: show.Get("publisher").String(),
			Images:    imagesFromJSON(show.Get("images")),
		})
		return true
	})

	return &core.Page[core.Show]{
		Items:  shows,
		Offset: offset,
		Total:  int(page.Get("total").Int()),
		Next:   page.Get("next").String() != "",
	}, nil
}

func (c *Client) ShowDetails(ctx context.Context, showID string) (*core.PageDetails, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodGet, "shows/"+url.PathEscape(showID), nil, nil)
	if err != nil {
		return nil, c.fail("get_show", err)
	}

	show := gjson.ParseBytes(data)
	return &core.PageDetails{
		ID:          show.Get("id").String(),
		URI:         show.Get("uri").String(),
		Type:        core.PageTypeShow,
		Name:        show.Get("name").String(),
		Description: show.Get("description").String(),
		OwnerID:     show.Get("publisher").String(),
		Total:       int(show.Get("total_episodes").Int()),
	}, nil
}

func (c *Client) ShowEpisodes(ctx context.Context, showID string, offset int) (*core.Page[core.Item], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodGet, "shows/"+url.PathEscape(showID)+"/episodes", pageQuery(offset), nil)
	if err != nil {
		return nil, c.fail("get_show_episodes", err)
	}

	page := gjson.ParseBytes(data)
	entries := page.Get("items").Array()
	items := make([]core.Item, 0, len(entries))
	for i, entry := range entries {
		item := itemFromJSON(entry, offset+i)
		item.Type = core.ItemTypeEpisode
		if item.Album.ID == "" {
			item.Album.ID = showID
		}
		items = append(items, item)
	}

	return &core.Page[core.Item]{
		Items:  items,
		Offset: offset,
		Total:  int(page.Get("total").Int()),
		Next:   page.Get("next").String() != "",
	}, nil
}

// FollowedArtists walks the cursor-paged list of followed artists.
func (c *Client) FollowedArtists(ctx context.Context) ([]core.FollowedArtist, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	var artists []core.FollowedArtist
	after := ""
	for {
		query := url.Values{
			"type":  {"artist"},
			"limit": {strconv.Itoa(PageSize)},
		}
		if after != "" {
			query.Set("after", after)
		}

		data, err := c.do(ctx, http.MethodGet, "me/following", query, nil)
		if err != nil {
			return nil, c.fail("get_followed_artists", err)
		}

		page := gjson.GetBytes(data, "artists")
		page.Get("items").ForEach(func(_, a gjson.Result) bool {
			var genres []string
			for _, g := range a.Get("genres").Array() {
				genres = append(genres, g.String())
			}
			artists = append(artists, core.FollowedArtist{
				Artist: core.Artist{
					ID:   a.Get("id").String(),
					Name: a.Get("name").String(),
					URI:  a.Get("uri").String(),
				},
				Genres:    genres,
				Followers: int(a.Get("followers.total").Int()),
				Images:    imagesFromJSON(a.Get("images")),
			})
			return true
		})

		after = page.Get("cursors.after").String()
		if after == "" || page.Get("next").String() == "" {
			break
		}
	}

	return artists, nil
}

func (c *Client) SaveEpisodes(ctx context.Context, ids ...string) error {
	return c.episodeLibrary(ctx, http.MethodPut, "save_episodes", ids)
}

func (c *Client) RemoveEpisodes(ctx context.Context, ids ...string) error {
	return c.episodeLibrary(ctx, http.MethodDelete, "remove_episodes", ids)
}

func (c *Client) episodeLibrary(ctx context.Context, method, operation string, ids []string) error {
	if err := c.ready(); err != nil {
		return err
	}
	for _, batch := range format.Chunk(ids, LibraryBatchSize) {
		query := url.Values{"ids": {strings.Join(batch, ",")}}
		if _, err := c.do(ctx, method, "me/episodes", query, nil); err != nil {
			return c.fail(operation, err)
		}
	}
	return nil
}

// AddToQueue queues a track or episode uri on the given device.
func (c *Client) AddToQueue(ctx context.Context, uri, deviceID string) error {
	if err := c.ready(); err != nil {
		return err
	}

	query := url.Values{"uri": {uri}}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}
	if _, err := c.do(ctx, http.MethodPost, "me/player/queue", query, nil); err != nil {
		return c.failPlayer("add_to_queue", err)
	}

	c.logger.Info("Item added to queue", zap.String("uri", uri))
	return nil
}

func (c *Client) AddItemsToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if err := c.ready(); err != nil {
		return err
	}

	path := "playlists/" + url.PathEscape(playlistID) + "/tracks"
	for _, batch := range format.Chunk(uris, playlistAddBatchSize) {
		if _, err := c.do(ctx, http.MethodPost, path, nil, map[string][]string{"uris": batch}); err != nil {
			return c.fail("add_to_playlist", err)
		}
	}

	c.logger.Info("Items added to playlist",
		zap.String("playlistID", playlistID),
		zap.Int("count", len(uris)))
	return nil
}
