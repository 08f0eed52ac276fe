package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tunedeck/internal/core"
	"tunedeck/pkg/spotifyuri"
)

// SeekStep is how far one seek key press moves.
const SeekStep = 5 * time.Second

// VolumeStep is how much one volume key press changes.
const VolumeStep = 5

// Action is what a press of the play button ended up doing.
type Action string

const (
	ActionNone   Action = "none"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionPlay   Action = "play"
)

// PlayButtonInput is everything a play button knows about what it stands for.
// Track is nil for page and artist buttons; URI is the page, artist or item uri.
type PlayButtonInput struct {
	Track     *core.Item
	IsSingle  bool
	URI       string
	Position  int
	AllTracks []core.Item
	Page      *core.PageDetails
}

// Outcome reports the result of a play button press.
type Outcome struct {
	Action Action
	Status core.PlayStatus
	Toast  core.Toast
	Err    error
}

// PlaybackFlags tell whether a track, playlist or artist is what is playing now.
type PlaybackFlags struct {
	Track    bool
	Playlist bool
	Artist   bool
}

// Controller picks the backend for the signed-in account and implements the
// play button and transport controls on top of it.
type Controller struct {
	store  *core.StateStore
	remote *RemoteBackend
	local  *LocalBackend
	logger *zap.Logger

	mu           sync.RWMutex
	user         *core.User
	forcePreview bool
}

// NewController wires the backends. remote may be nil when Connect is unavailable.
func NewController(store *core.StateStore, remote *RemoteBackend, local *LocalBackend, logger *zap.Logger, forcePreview bool) *Controller {
	return &Controller{
		store:        store,
		remote:       remote,
		local:        local,
		logger:       logger,
		forcePreview: forcePreview,
	}
}

func (c *Controller) SetUser(user *core.User) {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	premium := c.Premium()
	c.store.Update(func(s *core.PlaybackState) {
		s.Premium = premium
	})
}

func (c *Controller) User() *core.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Premium reports whether playback goes through Spotify Connect.
func (c *Controller) Premium() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.IsPremium() && c.remote != nil && !c.forcePreview
}

func (c *Controller) State() core.PlaybackState {
	return c.store.Snapshot()
}

// Backend returns the backend transport controls go to.
func (c *Controller) Backend() Backend {
	if c.Premium() {
		return c.remote
	}
	return c.local
}

func (c *Controller) Remote() *RemoteBackend { return c.remote }

func (c *Controller) Local() *LocalBackend { return c.local }

// Run keeps the state in sync until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if c.Premium() {
		g.Go(func() error { return c.remote.Run(ctx) })
	}
	if c.local != nil {
		g.Go(func() error { return c.local.Run(ctx) })
	}
	return g.Wait()
}

// IsThisPlaybackPlaying derives the playing flags of a button from the state.
func (c *Controller) IsThisPlaybackPlaying(trackID, uri string, isSingle bool, uriID string) PlaybackFlags {
	return playbackFlags(c.store.Snapshot(), trackID, uri, isSingle, uriID)
}

func playbackFlags(s core.PlaybackState, trackID, uri string, isSingle bool, uriID string) PlaybackFlags {
	if !s.IsPlaying {
		return PlaybackFlags{}
	}
	playlist := (uriID != "" && s.PlaylistPlayingID == uriID) || (uri != "" && s.PlayedSource == uri)
	return PlaybackFlags{
		Track:    trackID != "" && s.CurrentID() == trackID,
		Playlist: !isSingle && playlist,
		Artist:   spotifyuri.IsArtistURI(uri) && s.PlayedSource == uri,
	}
}

// ShowPause tells whether a button shows the pause icon. trackGiven is false
// for page and artist buttons.
func ShowPause(f PlaybackFlags, trackGiven bool) bool {
	return (f.Track && !f.Playlist) ||
		f.Artist ||
		(f.Playlist && !f.Artist && !f.Track && !trackGiven)
}

// PlayedSource is the source recorded for an item started from page. Saved
// collections are recorded as spotify:<type>:<id>.
func PlayedSource(page *core.PageDetails, itemURI string) string {
	if page == nil || page.URI == "" {
		return itemURI
	}
	if spotifyuri.IsCollectionURI(page.URI) && page.Type != "" && page.ID != "" {
		return spotifyuri.Build(page.Type, page.ID)
	}
	return page.URI
}

// sameSource reports whether a Connect context uri names the recorded source.
func sameSource(contextURI, source string) bool {
	if contextURI == source {
		return true
	}
	parsed, err := spotifyuri.Parse(contextURI)
	return err == nil && parsed.Type == spotifyuri.TypeCollection &&
		source == spotifyuri.Build(spotifyuri.TypeCollection, parsed.User)
}

// HandlePlayButton pauses, resumes or starts what the button stands for.
func (c *Controller) HandlePlayButton(ctx context.Context, in PlayButtonInput) Outcome {
	if c.User() == nil || (in.Page == nil && in.Track == nil && in.URI == "") {
		return Outcome{Action: ActionNone}
	}

	if c.Premium() && c.ensureDevice(ctx) {
		return c.premiumPlay(ctx, in)
	}
	return c.previewPlay(ctx, in)
}

// ensureDevice makes sure Connect has a device to target.
func (c *Controller) ensureDevice(ctx context.Context) bool {
	if c.store.Snapshot().DeviceID != "" {
		return true
	}
	if _, err := c.remote.ResolveDevice(ctx); err != nil {
		c.logger.Debug("No Connect device available", zap.Error(err))
		return false
	}
	return true
}

func buttonIDs(in PlayButtonInput) (trackID, uriID string) {
	if in.Track != nil {
		trackID = in.Track.ID
	}
	return trackID, spotifyuri.IDFromURI(in.URI)
}

// isCurrent reports whether the button stands for what is loaded, playing or not.
func isCurrent(s core.PlaybackState, in PlayButtonInput, uriID string) bool {
	if in.Track != nil {
		return in.Track.ID != "" && s.CurrentID() == in.Track.ID
	}
	return (uriID != "" && s.PlaylistPlayingID == uriID) || (in.URI != "" && s.PlayedSource == in.URI)
}

func (c *Controller) premiumPlay(ctx context.Context, in PlayButtonInput) Outcome {
	state := c.store.Snapshot()
	trackID, uriID := buttonIDs(in)
	flags := playbackFlags(state, trackID, in.URI, in.IsSingle, uriID)

	if ShowPause(flags, in.Track != nil) {
		return c.transport(ctx, ActionPause, c.remote.Pause)
	}
	if !state.IsPlaying && state.CurrentlyPlaying != nil && isCurrent(state, in, uriID) {
		return c.transport(ctx, ActionResume, c.remote.Resume)
	}

	req, ok := remoteRequest(in, uriID)
	if !ok {
		return Outcome{Action: ActionNone, Toast: core.Toast{Variant: core.ToastError, Key: "toast.nothing_to_play"}}
	}
	return c.start(ctx, c.remote, req, in)
}

// remoteRequest maps a button onto a Connect play: context mode when a page
// is shown and the button is not a single track, uri list mode otherwise.
func remoteRequest(in PlayButtonInput, uriID string) (PlayRequest, bool) {
	switch {
	case in.Track == nil && in.URI != "" && (in.IsSingle || isItemURI(in.URI)):
		return PlayRequest{
			Track:         &core.Item{URI: in.URI},
			IsSingleTrack: true,
			URI:           in.URI,
		}, true

	case in.Track == nil && in.URI != "":
		return PlayRequest{
			Track:      &core.Item{URI: in.URI},
			AllTracks:  in.AllTracks,
			ContextURI: in.URI,
			PlaylistID: uriID,
		}, true

	case in.Track == nil && in.Page != nil && in.Page.URI != "":
		return PlayRequest{
			Track:      &core.Item{},
			AllTracks:  in.AllTracks,
			ContextURI: in.Page.URI,
			PlaylistID: in.Page.ID,
		}, true

	case in.Track != nil && in.Page != nil && in.Page.URI != "" && !in.IsSingle:
		return PlayRequest{
			Track:      in.Track,
			AllTracks:  in.AllTracks,
			ContextURI: in.Page.URI,
			PlaylistID: in.Page.ID,
			Position:   in.Position,
		}, true

	case in.Track != nil:
		return PlayRequest{
			Track:         in.Track,
			AllTracks:     in.AllTracks,
			IsSingleTrack: true,
			Position:      in.Position,
			URI:           in.URI,
		}, true
	}
	return PlayRequest{}, false
}

func isItemURI(uri string) bool {
	kind := spotifyuri.TypeFromURI(uri)
	return kind == spotifyuri.TypeTrack || kind == spotifyuri.TypeEpisode
}

func (c *Controller) previewPlay(ctx context.Context, in PlayButtonInput) Outcome {
	state := c.store.Snapshot()
	trackID, uriID := buttonIDs(in)
	flags := playbackFlags(state, trackID, in.URI, in.IsSingle, uriID)

	if flags.Track || (in.Track == nil && flags.Playlist) {
		return c.transport(ctx, ActionPause, c.local.Pause)
	}
	if !state.IsPlaying && state.CurrentlyPlaying != nil && isCurrent(state, in, uriID) {
		return c.transport(ctx, ActionResume, c.local.Resume)
	}

	track := in.Track
	if track == nil {
		for i := range in.AllTracks {
			if playable(in.AllTracks[i]) {
				track = &in.AllTracks[i]
				break
			}
		}
	}
	if track == nil {
		return Outcome{Action: ActionNone, Status: core.PlayStatusFailed, Err: core.ErrNoPreview,
			Toast: core.Toast{Variant: core.ToastError, Key: "toast.no_preview"}}
	}

	playlistID := uriID
	if in.Page != nil {
		playlistID = in.Page.ID
	}
	return c.start(ctx, c.local, PlayRequest{
		Track:      track,
		AllTracks:  in.AllTracks,
		PlaylistID: playlistID,
		Position:   track.Position,
	}, in)
}

// start plays req from the source the button stands for, reconnecting once
// on a missing Connect device.
func (c *Controller) start(ctx context.Context, backend Backend, req PlayRequest, in PlayButtonInput) Outcome {
	itemURI := in.URI
	if itemURI == "" && in.Track != nil {
		itemURI = in.Track.URI
	}
	if itemURI == "" && req.Track != nil {
		itemURI = req.Track.URI
	}
	req.Source = PlayedSource(in.Page, itemURI)

	status, err := backend.Play(ctx, req)
	if status == core.PlayStatusDeviceNotFound && c.remote != nil && backend == Backend(c.remote) {
		status, err = c.retryAfterReconnect(ctx, req)
	}

	if status != core.PlayStatusOK {
		c.logger.Warn("Play failed", zap.String("backend", backend.Name()), zap.Int("status", int(status)), zap.Error(err))
		return Outcome{Action: ActionPlay, Status: status, Err: err, Toast: playErrorToast(status, err)}
	}

	return Outcome{Action: ActionPlay, Status: status}
}

func (c *Controller) retryAfterReconnect(ctx context.Context, req PlayRequest) (core.PlayStatus, error) {
	if err := c.remote.Reconnect(ctx); err != nil {
		c.setReconnectionError(true)
		return core.PlayStatusDeviceNotFound, err
	}
	status, err := c.remote.Play(ctx, req)
	if status != core.PlayStatusOK {
		c.setReconnectionError(true)
	}
	return status, err
}

func (c *Controller) setReconnectionError(failed bool) {
	c.store.Update(func(s *core.PlaybackState) {
		s.ReconnectionError = failed
	})
}

func playErrorToast(status core.PlayStatus, err error) core.Toast {
	switch {
	case status == core.PlayStatusDeviceNotFound:
		return core.Toast{Variant: core.ToastError, Key: "toast.device_not_found"}
	case errors.Is(err, core.ErrNoDevice):
		return core.Toast{Variant: core.ToastError, Key: "toast.no_device"}
	case errors.Is(err, core.ErrNoPreview):
		return core.Toast{Variant: core.ToastError, Key: "toast.no_preview"}
	case errors.Is(err, core.ErrNothingToPlay):
		return core.Toast{Variant: core.ToastError, Key: "toast.nothing_to_play"}
	}
	return core.Toast{Variant: core.ToastError, Key: "error.generic"}
}

// transport runs a control on the active backend. A Connect 404 triggers
// one reconnect and a retry.
func (c *Controller) transport(ctx context.Context, action Action, fn func(context.Context) error) Outcome {
	err := fn(ctx)
	if errors.Is(err, core.ErrDeviceNotFound) && c.Premium() {
		if rerr := c.remote.Reconnect(ctx); rerr != nil {
			c.setReconnectionError(true)
			return Outcome{Action: action, Status: core.PlayStatusDeviceNotFound, Err: rerr,
				Toast: core.Toast{Variant: core.ToastError, Key: "toast.device_not_found"}}
		}
		err = fn(ctx)
	}
	if err != nil {
		c.logger.Debug("Playback control failed", zap.String("action", string(action)), zap.Error(err))
		return Outcome{Action: action, Status: core.PlayStatusFailed, Err: err, Toast: playErrorToast(core.PlayStatusFailed, err)}
	}
	return Outcome{Action: action, Status: core.PlayStatusOK}
}

func (c *Controller) TogglePlay(ctx context.Context) Outcome {
	action := ActionResume
	if c.store.Snapshot().IsPlaying {
		action = ActionPause
	}
	return c.transport(ctx, action, c.Backend().TogglePlay)
}

func (c *Controller) Next(ctx context.Context) Outcome {
	return c.transport(ctx, ActionPlay, c.Backend().Next)
}

func (c *Controller) Previous(ctx context.Context) Outcome {
	return c.transport(ctx, ActionPlay, c.Backend().Previous)
}

// SeekBy moves the position by delta, clamped to the current item.
func (c *Controller) SeekBy(ctx context.Context, delta time.Duration) Outcome {
	state := c.store.Snapshot()
	target := state.Position + delta
	if target < 0 {
		target = 0
	}
	if state.Duration > 0 && target > state.Duration {
		target = state.Duration
	}
	return c.SeekTo(ctx, target)
}

func (c *Controller) SeekTo(ctx context.Context, position time.Duration) Outcome {
	return c.transport(ctx, ActionNone, func(ctx context.Context) error {
		return c.Backend().Seek(ctx, position)
	})
}

// VolumeBy changes the volume by delta percent.
func (c *Controller) VolumeBy(ctx context.Context, delta int) Outcome {
	target := max(0, min(100, c.store.Snapshot().Volume+delta))
	return c.transport(ctx, ActionNone, func(ctx context.Context) error {
		return c.Backend().SetVolume(ctx, target)
	})
}

// SetSliderBusy forwards progress bar dragging to the preview backend.
func (c *Controller) SetSliderBusy(busy bool) {
	if c.local != nil {
		c.local.SetSliderBusy(busy)
	}
}

func (c *Controller) Close() error {
	var errs []error
	if c.remote != nil {
		errs = append(errs, c.remote.Close())
	}
	if c.local != nil {
		errs = append(errs, c.local.Close())
	}
	return errors.Join(errs...)
}
