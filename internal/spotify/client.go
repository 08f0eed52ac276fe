// Package spotify wraps the Spotify Web API for library browsing and Connect playback.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tunedeck/internal/core"
	"tunedeck/pkg/format"
)

const (
	// DefaultBaseURL is the Web API root every path is resolved against.
	DefaultBaseURL = "https://api.spotify.com/v1/"
	// PageSize is the number of rows requested per page.
	PageSize = core.DefaultPageSize
	// LibraryBatchSize is the most ids a library endpoint accepts per call.
	LibraryBatchSize = 50
	// maxParallelLookups bounds concurrent library membership batches.
	maxParallelLookups = 4
)

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		c.baseURL = baseURL
	}
}

type Client struct {
	client     *spotify.Client
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	metrics    core.Metrics
}

var _ core.SpotifyClient = (*Client)(nil)

// NewClient wraps an authenticated HTTP client.
func NewClient(httpClient *http.Client, logger *zap.Logger, metrics core.Metrics, opts ...Option) *Client {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		logger:     logger,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = spotify.New(httpClient, spotify.WithBaseURL(c.baseURL))
	return c
}

func (c *Client) ready() error {
	if c == nil || c.client == nil {
		return core.ErrNotAuthenticated
	}
	return nil
}

// fail counts and wraps an API error.
func (c *Client) fail(operation string, err error) error {
	c.metrics.RecordAPIError(operation)
	return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(operation, "_", " "), err)
}

// failPlayer is fail for player endpoints, where 404 means the device is gone.
func (c *Client) failPlayer(operation string, err error) error {
	if StatusCode(err) == http.StatusNotFound {
		c.metrics.RecordAPIError(operation)
		return fmt.Errorf("failed to %s: %w: %v", strings.ReplaceAll(operation, "_", " "), core.ErrDeviceNotFound, err)
	}
	return c.fail(operation, err)
}

// StatusCode extracts the HTTP status carried by a Web API error, or 0.
func StatusCode(err error) int {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status
	}
	return 0
}

func (c *Client) CurrentUser(ctx context.Context) (*core.User, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return nil, c.fail("get_current_user", err)
	}

	return &core.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

func (c *Client) MyPlaylists(ctx context.Context, offset int) (*core.Page[core.Playlist], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	page, err := c.client.CurrentUsersPlaylists(ctx, spotify.Limit(PageSize), spotify.Offset(offset))
	if err != nil {
		return nil, c.fail("get_playlists", err)
	}

	playlists := make([]core.Playlist, 0, len(page.Playlists))
	for i := range page.Playlists {
		p := &page.Playlists[i]
		playlists = append(playlists, core.Playlist{
			ID:          p.ID.String(),
			URI:         string(p.URI),
			Name:        p.Name,
			Description: p.Description,
			OwnerID:     p.Owner.ID,
			OwnerName:   p.Owner.DisplayName,
			TrackCount:  int(p.Tracks.Total),
			Images:      convertImages(p.Images),
		})
	}

	return &core.Page[core.Playlist]{
		Items:  playlists,
		Offset: offset,
		Total:  int(page.Total),
		Next:   page.Next != "",
	}, nil
}

// AllMyPlaylists walks every playlist page.
func (c *Client) AllMyPlaylists(ctx context.Context) ([]core.Playlist, error) {
	var all []core.Playlist
	for offset := 0; ; offset += PageSize {
		page, err := c.MyPlaylists(ctx, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.Next || len(page.Items) == 0 {
			break
		}
	}

	c.logger.Debug("Retrieved playlists", zap.Int("count", len(all)))
	return all, nil
}

func (c *Client) PlaylistDetails(ctx context.Context, playlistID string) (*core.PageDetails, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	playlist, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, c.fail("get_playlist", err)
	}

	return &core.PageDetails{
		ID:          playlist.ID.String(),
		URI:         string(playlist.URI),
		Type:        core.PageTypePlaylist,
		Name:        playlist.Name,
		Description: playlist.Description,
		OwnerID:     playlist.Owner.ID,
		Total:       int(playlist.Tracks.Total),
	}, nil
}

func (c *Client) SavedTracks(ctx context.Context, offset int) (*core.Page[core.Item], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	page, err := c.client.CurrentUsersTracks(ctx, spotify.Limit(PageSize), spotify.Offset(offset))
	if err != nil {
		return nil, c.fail("get_saved_tracks", err)
	}

	items := make([]core.Item, 0, len(page.Tracks))
	for i := range page.Tracks {
		item := convertFullTrack(&page.Tracks[i].FullTrack)
		item.Position = offset + i
		item.AddedAt = parseTime(page.Tracks[i].AddedAt)
		items = append(items, item)
	}

	return &core.Page[core.Item]{
		Items:  items,
		Offset: offset,
		Total:  int(page.Total),
		Next:   page.Next != "",
	}, nil
}

func (c *Client) AlbumDetails(ctx context.Context, albumID string) (*core.PageDetails, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	album, err := c.client.GetAlbum(ctx, spotify.ID(albumID))
	if err != nil {
		return nil, c.fail("get_album", err)
	}

	owner := ""
	if len(album.Artists) > 0 {
		owner = album.Artists[0].Name
	}
	return &core.PageDetails{
		ID:          album.ID.String(),
		URI:         string(album.URI),
		Type:        core.PageTypeAlbum,
		Name:        album.Name,
		Description: album.ReleaseDate,
		OwnerID:     owner,
		Total:       int(album.Tracks.Total),
	}, nil
}

func (c *Client) AlbumTracks(ctx context.Context, albumID string, offset int) (*core.Page[core.Item], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	page, err := c.client.GetAlbumTracks(ctx, spotify.ID(albumID), spotify.Limit(PageSize), spotify.Offset(offset))
	if err != nil {
		return nil, c.fail("get_album_tracks", err)
	}

	items := make([]core.Item, 0, len(page.Tracks))
	for i := range page.Tracks {
		item := convertSimpleTrack(&page.Tracks[i])
		item.Position = offset + i
		item.Album.ID = albumID
		items = append(items, item)
	}

	return &core.Page[core.Item]{
		Items:  items,
		Offset: offset,
		Total:  int(page.Total),
		Next:   page.Next != "",
	}, nil
}

// ArtistTopTracks returns the artist's most played tracks in market.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID, market string) ([]core.Item, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if market == "" {
		market = core.DefaultMarket
	}

	tracks, err := c.client.GetArtistsTopTracks(ctx, spotify.ID(artistID), market)
	if err != nil {
		return nil, c.fail("get_artist_top_tracks", err)
	}

	items := make([]core.Item, 0, len(tracks))
	for i := range tracks {
		item := convertFullTrack(&tracks[i])
		item.Position = i
		items = append(items, item)
	}
	return items, nil
}

// CheckTracksInLibrary reports saved state per id, in order. Ids are checked
// in batches of 50, a few batches at a time.
func (c *Client) CheckTracksInLibrary(ctx context.Context, ids []string) ([]bool, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	result := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)

	for n, batch := range format.Chunk(ids, LibraryBatchSize) {
		start := n * LibraryBatchSize
		g.Go(func() error {
			spotifyIDs := make([]spotify.ID, len(batch))
			for i, id := range batch {
				spotifyIDs[i] = spotify.ID(id)
			}
			saved, err := c.client.UserHasTracks(gctx, spotifyIDs...)
			if err != nil {
				return err
			}
			copy(result[start:start+len(batch)], saved)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, c.fail("check_library", err)
	}
	return result, nil
}

func (c *Client) SaveTracks(ctx context.Context, ids ...string) error {
	if err := c.ready(); err != nil {
		return err
	}
	for _, batch := range format.Chunk(toIDs(ids), LibraryBatchSize) {
		if err := c.client.AddTracksToLibrary(ctx, batch...); err != nil {
			return c.fail("save_tracks", err)
		}
	}
	c.logger.Debug("Tracks saved", zap.Strings("trackIDs", ids))
	return nil
}

func (c *Client) RemoveTracks(ctx context.Context, ids ...string) error {
	if err := c.ready(); err != nil {
		return err
	}
	for _, batch := range format.Chunk(toIDs(ids), LibraryBatchSize) {
		if err := c.client.RemoveTracksFromLibrary(ctx, batch...); err != nil {
			return c.fail("remove_tracks", err)
		}
	}
	c.logger.Debug("Tracks removed", zap.Strings("trackIDs", ids))
	return nil
}

func (c *Client) Play(ctx context.Context, deviceID string, opts core.PlayOptions) error {
	if err := c.ready(); err != nil {
		return err
	}

	playOpts := &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}
	if opts.ContextURI != "" {
		contextURI := spotify.URI(opts.ContextURI)
		playOpts.PlaybackContext = &contextURI
	}
	if len(opts.URIs) > 0 {
		playOpts.URIs = make([]spotify.URI, len(opts.URIs))
		for i, uri := range opts.URIs {
			playOpts.URIs[i] = spotify.URI(uri)
		}
	}
	if opts.Offset != nil {
		position := *opts.Offset
		playOpts.PlaybackOffset = &spotify.PlaybackOffset{Position: &position}
	}

	if err := c.client.PlayOpt(ctx, playOpts); err != nil {
		return c.failPlayer("start_playback", err)
	}

	c.logger.Debug("Playback started",
		zap.String("deviceID", deviceID),
		zap.String("contextURI", opts.ContextURI),
		zap.Int("uris", len(opts.URIs)))
	return nil
}

func (c *Client) Resume(ctx context.Context, deviceID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.PlayOpt(ctx, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("resume_playback", err)
	}
	return nil
}

func (c *Client) Pause(ctx context.Context, deviceID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.PauseOpt(ctx, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("pause_playback", err)
	}
	return nil
}

func (c *Client) Next(ctx context.Context, deviceID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.NextOpt(ctx, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("skip_next", err)
	}
	return nil
}

func (c *Client) Previous(ctx context.Context, deviceID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.PreviousOpt(ctx, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("skip_previous", err)
	}
	return nil
}

func (c *Client) Seek(ctx context.Context, deviceID string, position time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	if position < 0 {
		position = 0
	}
	ms := int(position / time.Millisecond)
	if err := c.client.SeekOpt(ctx, ms, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("seek", err)
	}
	return nil
}

func (c *Client) SetVolume(ctx context.Context, deviceID string, percent int) error {
	if err := c.ready(); err != nil {
		return err
	}
	percent = min(max(percent, 0), 100)
	if err := c.client.VolumeOpt(ctx, percent, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("set_volume", err)
	}
	return nil
}

// SetShuffle sets the shuffle state for the user's playback
func (c *Client) SetShuffle(ctx context.Context, deviceID string, shuffle bool) error {
	if err := c.ready(); err != nil {
		return err
	}

	if err := c.client.ShuffleOpt(ctx, shuffle, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("set_shuffle", err)
	}

	c.logger.Debug("Set Spotify shuffle", zap.Bool("shuffle", shuffle))
	return nil
}

// SetRepeat sets the repeat state for the user's playback
// state should be "track", "context", or "off"
func (c *Client) SetRepeat(ctx context.Context, deviceID, state string) error {
	if err := c.ready(); err != nil {
		return err
	}

	switch state {
	case core.RepeatStateTrack, core.RepeatStateContext, core.RepeatStateOff:
	default:
		return fmt.Errorf("invalid repeat state: %s (must be 'track', 'context', or 'off')", state)
	}

	if err := c.client.RepeatOpt(ctx, state, &spotify.PlayOptions{DeviceID: deviceRef(deviceID)}); err != nil {
		return c.failPlayer("set_repeat", err)
	}

	c.logger.Debug("Set Spotify repeat", zap.String("state", state))
	return nil
}

// PlayerState returns nil without error when nothing is playing on any device.
func (c *Client) PlayerState(ctx context.Context) (*core.RemotePlayerState, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	state, err := c.client.PlayerState(ctx)
	if err != nil {
		return nil, c.fail("get_player_state", err)
	}
	if state == nil {
		return nil, nil
	}

	remote := &core.RemotePlayerState{
		IsPlaying:  state.Playing,
		Progress:   time.Duration(int(state.Progress)) * time.Millisecond,
		ContextURI: string(state.PlaybackContext.URI),
		Device:     convertDevice(&state.Device),
		Shuffle:    state.ShuffleState,
		Repeat:     state.RepeatState,
	}
	if state.Item != nil {
		item := convertFullTrack(state.Item)
		remote.Item = &item
	}
	return remote, nil
}

func (c *Client) Devices(ctx context.Context) ([]core.Device, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	devices, err := c.client.PlayerDevices(ctx)
	if err != nil {
		return nil, c.fail("get_devices", err)
	}

	result := make([]core.Device, 0, len(devices))
	for i := range devices {
		result = append(result, convertDevice(&devices[i]))
	}
	return result, nil
}

func (c *Client) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.TransferPlayback(ctx, spotify.ID(deviceID), play); err != nil {
		return c.failPlayer("transfer_playback", err)
	}
	c.logger.Info("Playback transferred", zap.String("deviceID", deviceID), zap.Bool("play", play))
	return nil
}

// Queue returns the upcoming tracks of the Connect queue.
func (c *Client) Queue(ctx context.Context) ([]core.Item, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	queue, err := c.client.GetQueue(ctx)
	if err != nil {
		return nil, c.fail("get_queue", err)
	}

	items := make([]core.Item, 0, len(queue.Items))
	for i := range queue.Items {
		item := convertFullTrack(&queue.Items[i])
		item.Position = i
		items = append(items, item)
	}
	return items, nil
}

// ResolveDevice picks the configured device (by id or case-insensitive name),
// else the active one, else the first available.
func ResolveDevice(devices []core.Device, preferred string) (core.Device, error) {
	if len(devices) == 0 {
		return core.Device{}, core.ErrNoDevice
	}
	if preferred != "" {
		for _, d := range devices {
			if d.ID == preferred || strings.EqualFold(d.Name, preferred) {
				return d, nil
			}
		}
	}
	for _, d := range devices {
		if d.Active {
			return d, nil
		}
	}
	return devices[0], nil
}

func deviceRef(deviceID string) *spotify.ID {
	if deviceID == "" {
		return nil
	}
	id := spotify.ID(deviceID)
	return &id
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, spotify.ID(id))
		}
	}
	return out
}
