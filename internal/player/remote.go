package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tunedeck/internal/core"
	"tunedeck/internal/spotify"
	"tunedeck/pkg/spotifyuri"
)

// maxPreviousTracks bounds the played-before list kept in the state.
const maxPreviousTracks = 20

// RemoteBackend plays through Spotify Connect. The server is authoritative;
// Run keeps the shared state in line with it.
type RemoteBackend struct {
	client  core.SpotifyClient
	store   *core.StateStore
	history core.HistoryRecorder
	metrics core.Metrics
	logger  *zap.Logger
	config  core.PlayerConfig

	mu      sync.Mutex
	lastURI string
	wake    chan struct{}
}

func NewRemoteBackend(client core.SpotifyClient, store *core.StateStore, history core.HistoryRecorder,
	metrics core.Metrics, logger *zap.Logger, config core.PlayerConfig) *RemoteBackend {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &RemoteBackend{
		client:  client,
		store:   store,
		history: history,
		metrics: metrics,
		logger:  logger,
		config:  config,
		wake:    make(chan struct{}, 1),
	}
}

func (b *RemoteBackend) Name() string { return BackendRemote }

func (b *RemoteBackend) deviceID() string {
	return b.store.Snapshot().DeviceID
}

// SetDevice makes deviceID the target of every command.
func (b *RemoteBackend) SetDevice(deviceID string) {
	b.store.Update(func(s *core.PlaybackState) {
		s.DeviceID = deviceID
	})
}

// ResolveDevice picks the configured, active or first available device and
// makes it current.
func (b *RemoteBackend) ResolveDevice(ctx context.Context) (core.Device, error) {
	devices, err := b.client.Devices(ctx)
	if err != nil {
		return core.Device{}, fmt.Errorf("failed to list devices: %w", err)
	}
	device, err := spotify.ResolveDevice(devices, b.config.Device)
	if err != nil {
		return core.Device{}, err
	}
	b.SetDevice(device.ID)
	return device, nil
}

// Reconnect resolves a device again and transfers playback to it. It is used
// after the player API answered 404 for the current device.
func (b *RemoteBackend) Reconnect(ctx context.Context) error {
	device, err := b.ResolveDevice(ctx)
	if err != nil {
		b.metrics.RecordReconnect("failed")
		return err
	}
	if err := b.client.TransferPlayback(ctx, device.ID, false); err != nil {
		b.metrics.RecordReconnect("failed")
		return fmt.Errorf("failed to transfer playback: %w", err)
	}
	b.metrics.RecordReconnect("ok")
	b.logger.Info("Reconnected to device", zap.String("device", device.Name), zap.String("device_id", device.ID))
	return nil
}

// Play starts req on the current device. It returns PlayStatusDeviceNotFound
// when the device is gone and PlayStatusFailed for every other failure.
func (b *RemoteBackend) Play(ctx context.Context, req PlayRequest) (core.PlayStatus, error) {
	status, err := b.play(ctx, req)
	b.metrics.RecordPlay(BackendRemote, status)
	return status, err
}

func (b *RemoteBackend) play(ctx context.Context, req PlayRequest) (core.PlayStatus, error) {
	if req.Track == nil {
		return core.PlayStatusFailed, core.ErrNothingToPlay
	}
	deviceID := b.deviceID()
	if deviceID == "" {
		return core.PlayStatusFailed, core.ErrNoDevice
	}

	err := b.client.Play(ctx, deviceID, playOptions(req))
	if errors.Is(err, core.ErrDeviceNotFound) {
		return core.PlayStatusDeviceNotFound, err
	}
	if err != nil {
		return core.PlayStatusFailed, err
	}

	b.store.Update(func(s *core.PlaybackState) {
		if req.IsSingleTrack {
			s.PlaylistPlayingID = ""
		} else {
			s.PlaylistPlayingID = req.PlaylistID
		}
		if req.Source != "" {
			s.PlayedSource = req.Source
		}
		s.IsPlaying = true
		s.ReconnectionError = false
	})
	b.Wake()
	return core.PlayStatusOK, nil
}

func (b *RemoteBackend) TogglePlay(ctx context.Context) error {
	if b.store.Snapshot().IsPlaying {
		return b.Pause(ctx)
	}
	return b.Resume(ctx)
}

func (b *RemoteBackend) Pause(ctx context.Context) error {
	if err := b.client.Pause(ctx, b.deviceID()); err != nil {
		return err
	}
	b.setPlaying(false)
	return nil
}

func (b *RemoteBackend) Resume(ctx context.Context) error {
	if err := b.client.Resume(ctx, b.deviceID()); err != nil {
		return err
	}
	b.setPlaying(true)
	return nil
}

func (b *RemoteBackend) setPlaying(playing bool) {
	b.store.Update(func(s *core.PlaybackState) {
		s.IsPlaying = playing
	})
	b.metrics.SetPlaying(playing)
	b.Wake()
}

func (b *RemoteBackend) Seek(ctx context.Context, position time.Duration) error {
	if position < 0 {
		position = 0
	}
	if err := b.client.Seek(ctx, b.deviceID(), position); err != nil {
		return err
	}
	b.store.Update(func(s *core.PlaybackState) {
		s.Position = position
	})
	return nil
}

func (b *RemoteBackend) Next(ctx context.Context) error {
	if err := b.client.Next(ctx, b.deviceID()); err != nil {
		return err
	}
	b.Wake()
	return nil
}

func (b *RemoteBackend) Previous(ctx context.Context) error {
	if err := b.client.Previous(ctx, b.deviceID()); err != nil {
		return err
	}
	b.Wake()
	return nil
}

func (b *RemoteBackend) SetVolume(ctx context.Context, percent int) error {
	percent = max(0, min(100, percent))
	if err := b.client.SetVolume(ctx, b.deviceID(), percent); err != nil {
		return err
	}
	b.store.Update(func(s *core.PlaybackState) {
		s.Volume = percent
	})
	return nil
}

func (b *RemoteBackend) SetShuffle(ctx context.Context, shuffle bool) error {
	if err := b.client.SetShuffle(ctx, b.deviceID(), shuffle); err != nil {
		return err
	}
	b.store.Update(func(s *core.PlaybackState) {
		s.Shuffle = shuffle
	})
	return nil
}

// CycleRepeat moves repeat through off, context and track.
func (b *RemoteBackend) CycleRepeat(ctx context.Context) error {
	next := core.RepeatStateContext
	switch b.store.Snapshot().Repeat {
	case core.RepeatStateContext:
		next = core.RepeatStateTrack
	case core.RepeatStateTrack:
		next = core.RepeatStateOff
	}
	if err := b.client.SetRepeat(ctx, b.deviceID(), next); err != nil {
		return err
	}
	b.store.Update(func(s *core.PlaybackState) {
		s.Repeat = next
	})
	return nil
}

func (b *RemoteBackend) Close() error {
	return nil
}

// Wake makes Run poll right away.
func (b *RemoteBackend) Wake() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Run polls the player until ctx is done. The interval starts at
// PollInterval and doubles up to IdlePollInterval while nothing changes.
func (b *RemoteBackend) Run(ctx context.Context) error {
	b.logger.Info("Starting player sync")

	fast := b.config.PollInterval()
	slow := b.config.IdlePollInterval()
	interval := fast

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Player sync stopped")
			return nil
		case <-b.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			interval = fast
		case <-timer.C:
		}

		changed, playing := b.Sync(ctx)
		if changed || playing {
			interval = fast
		} else {
			interval = min(interval*2, slow)
		}
		timer.Reset(interval)
	}
}

// Sync reads the player once and folds it into the state. It reports whether
// the item or play state changed and whether something is playing.
func (b *RemoteBackend) Sync(ctx context.Context) (changed, playing bool) {
	remote, err := b.client.PlayerState(ctx)
	if err != nil {
		b.logger.Debug("Could not read player state", zap.Error(err))
		return false, false
	}

	if remote == nil || remote.Item == nil {
		before := b.store.Snapshot()
		if before.IsPlaying {
			b.store.Update(func(s *core.PlaybackState) {
				s.IsPlaying = false
			})
			b.metrics.SetPlaying(false)
			return true, false
		}
		return false, false
	}

	var queue []core.Item
	if remote.IsPlaying {
		queue, err = b.client.Queue(ctx)
		if err != nil {
			b.logger.Debug("Could not read queue", zap.Error(err))
		}
	}

	b.mu.Lock()
	trackChanged := remote.Item.URI != b.lastURI
	b.lastURI = remote.Item.URI
	b.mu.Unlock()

	stateChanged := false
	after := b.store.Update(func(s *core.PlaybackState) {
		stateChanged = s.IsPlaying != remote.IsPlaying
		if trackChanged && s.CurrentlyPlaying != nil && s.CurrentlyPlaying.URI != remote.Item.URI {
			s.PreviousTracks = append([]core.Item{*s.CurrentlyPlaying}, s.PreviousTracks...)
			if len(s.PreviousTracks) > maxPreviousTracks {
				s.PreviousTracks = s.PreviousTracks[:maxPreviousTracks]
			}
		}
		item := *remote.Item
		s.CurrentlyPlaying = &item
		s.IsPlaying = remote.IsPlaying
		s.Position = remote.Progress
		s.Duration = remote.Item.Duration
		if queue != nil {
			s.NextTracks = queue
		}
		if remote.Device.ID != "" {
			s.DeviceID = remote.Device.ID
			s.Volume = remote.Device.Volume
		}
		s.Shuffle = remote.Shuffle
		if remote.Repeat != "" {
			s.Repeat = remote.Repeat
		}
		// A context started elsewhere replaces the recorded source.
		if remote.ContextURI != "" && (s.PlayedSource == "" || trackChanged && !sameSource(remote.ContextURI, s.PlayedSource)) {
			s.PlayedSource = remote.ContextURI
			s.PlaylistPlayingID = spotifyuri.IDFromURI(remote.ContextURI)
		}
		s.Premium = true
	})
	b.metrics.SetPlaying(remote.IsPlaying)

	if trackChanged {
		b.logger.Debug("Now playing", zap.String("uri", remote.Item.URI), zap.String("name", remote.Item.Name))
		b.record(ctx, after)
	}
	return trackChanged || stateChanged, remote.IsPlaying
}

func (b *RemoteBackend) record(ctx context.Context, state core.PlaybackState) {
	if b.history == nil || state.CurrentlyPlaying == nil {
		return
	}
	if err := b.history.Record(ctx, historyEntry(state.CurrentlyPlaying, state.PlayedSource, BackendRemote)); err != nil {
		b.logger.Warn("Failed to record history", zap.Error(err))
	}
}
