package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tunedeck/internal/core"
)

// DefaultTickInterval is how often the local backend publishes progress.
const DefaultTickInterval = 250 * time.Millisecond

// LocalBackend plays 30 second previews for accounts without Connect. The
// client is authoritative: the queue is the list of rows the play came from.
type LocalBackend struct {
	audio   AudioPlayer
	store   *core.StateStore
	history core.HistoryRecorder
	metrics core.Metrics
	logger  *zap.Logger
	tick    time.Duration

	mu         sync.Mutex
	allTracks  []core.Item
	index      int
	playlistID string
	source     string
	sliderBusy atomic.Bool
	// stopped is set once the end of the queue was reached.
	stopped atomic.Bool
}

func NewLocalBackend(audio AudioPlayer, store *core.StateStore, history core.HistoryRecorder,
	metrics core.Metrics, logger *zap.Logger) *LocalBackend {
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &LocalBackend{
		audio:   audio,
		store:   store,
		history: history,
		metrics: metrics,
		logger:  logger,
		tick:    DefaultTickInterval,
		index:   -1,
	}
}

func (b *LocalBackend) Name() string { return BackendLocal }

// SetSliderBusy stops progress ticks from overwriting the position while the
// user drags the progress bar.
func (b *LocalBackend) SetSliderBusy(busy bool) {
	b.sliderBusy.Store(busy)
}

func (b *LocalBackend) SliderBusy() bool {
	return b.sliderBusy.Load()
}

// Play streams the preview of req.Track and adopts req.AllTracks as the queue.
func (b *LocalBackend) Play(ctx context.Context, req PlayRequest) (core.PlayStatus, error) {
	status, err := b.play(ctx, req)
	b.metrics.RecordPlay(BackendLocal, status)
	return status, err
}

func (b *LocalBackend) play(ctx context.Context, req PlayRequest) (core.PlayStatus, error) {
	if req.Track == nil {
		return core.PlayStatusFailed, core.ErrNothingToPlay
	}
	if req.Track.PreviewURL == "" {
		return core.PlayStatusFailed, core.ErrNoPreview
	}

	b.mu.Lock()
	b.allTracks = append([]core.Item(nil), req.AllTracks...)
	b.index = indexOf(b.allTracks, *req.Track)
	b.playlistID = req.PlaylistID
	b.source = req.Source
	b.mu.Unlock()

	if err := b.start(ctx, *req.Track); err != nil {
		return core.PlayStatusFailed, err
	}
	return core.PlayStatusOK, nil
}

// start plays item and publishes it as the current item.
func (b *LocalBackend) start(ctx context.Context, item core.Item) error {
	if err := b.audio.Play(ctx, item.PreviewURL); err != nil {
		return err
	}

	b.mu.Lock()
	next := b.following(b.index, 1)
	previous := b.following(b.index, -1)
	playlistID := b.playlistID
	source := b.source
	b.mu.Unlock()
	b.stopped.Store(false)

	state := b.store.Update(func(s *core.PlaybackState) {
		current := item
		s.CurrentlyPlaying = &current
		s.IsPlaying = true
		s.Position = 0
		s.Duration = b.audio.Duration()
		s.PlaylistPlayingID = playlistID
		if source != "" {
			s.PlayedSource = source
		}
		s.NextTracks = next
		s.PreviousTracks = previous
		s.Volume = b.audio.Volume()
		s.Premium = false
	})
	b.metrics.SetPlaying(true)

	if b.history != nil {
		if err := b.history.Record(ctx, historyEntry(&item, state.PlayedSource, BackendLocal)); err != nil {
			b.logger.Warn("Failed to record history", zap.Error(err))
		}
	}
	b.logger.Debug("Playing preview", zap.String("uri", item.URI), zap.String("name", item.Name))
	return nil
}

// following lists the previewable rows after (step 1) or before (step -1)
// index, nearest first. Callers hold mu.
func (b *LocalBackend) following(index, step int) []core.Item {
	var items []core.Item
	for i := index + step; i >= 0 && i < len(b.allTracks); i += step {
		if playable(b.allTracks[i]) {
			items = append(items, b.allTracks[i])
		}
	}
	return items
}

// advance moves step rows through the queue, skipping rows without a
// preview. It reports false when the queue has no such row.
func (b *LocalBackend) advance(ctx context.Context, step int) (bool, error) {
	b.mu.Lock()
	target := -1
	for i := b.index + step; i >= 0 && i < len(b.allTracks); i += step {
		if playable(b.allTracks[i]) {
			target = i
			break
		}
	}
	if target < 0 {
		b.mu.Unlock()
		return false, nil
	}
	b.index = target
	item := b.allTracks[target]
	b.mu.Unlock()

	return true, b.start(ctx, item)
}

func (b *LocalBackend) TogglePlay(_ context.Context) error {
	paused, err := b.audio.TogglePause()
	if err != nil {
		return err
	}
	b.setPlaying(!paused)
	return nil
}

func (b *LocalBackend) Pause(_ context.Context) error {
	if err := b.audio.Pause(); err != nil {
		return err
	}
	b.setPlaying(false)
	return nil
}

func (b *LocalBackend) Resume(_ context.Context) error {
	if err := b.audio.Resume(); err != nil {
		return err
	}
	b.setPlaying(true)
	return nil
}

func (b *LocalBackend) setPlaying(playing bool) {
	b.store.Update(func(s *core.PlaybackState) {
		s.IsPlaying = playing
	})
	b.metrics.SetPlaying(playing)
}

func (b *LocalBackend) Seek(_ context.Context, position time.Duration) error {
	if err := b.audio.Seek(position); err != nil {
		return err
	}
	b.store.Update(func(s *core.PlaybackState) {
		s.Position = b.audio.Position()
	})
	return nil
}

// Next plays the following previewable row. At the end of the queue playback stops.
func (b *LocalBackend) Next(ctx context.Context) error {
	moved, err := b.advance(ctx, 1)
	if err != nil || moved {
		return err
	}
	b.finish()
	return nil
}

// Previous plays the preceding previewable row, or restarts the current one.
func (b *LocalBackend) Previous(ctx context.Context) error {
	moved, err := b.advance(ctx, -1)
	if err != nil || moved {
		return err
	}
	return b.Seek(ctx, 0)
}

func (b *LocalBackend) SetVolume(_ context.Context, percent int) error {
	b.audio.SetVolume(percent)
	b.store.Update(func(s *core.PlaybackState) {
		s.Volume = b.audio.Volume()
	})
	return nil
}

func (b *LocalBackend) Close() error {
	b.audio.Stop()
	return nil
}

// finish marks the end of the queue.
func (b *LocalBackend) finish() {
	b.stopped.Store(true)
	b.audio.Stop()
	b.store.Update(func(s *core.PlaybackState) {
		s.IsPlaying = false
		s.Position = s.Duration
		s.NextTracks = nil
	})
	b.metrics.SetPlaying(false)
}

// Run publishes progress and advances the queue when a preview ends.
func (b *LocalBackend) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.audio.Finished():
			if err := b.Next(ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.logger.Warn("Failed to play next preview", zap.Error(err))
			}
		case <-ticker.C:
			b.publishProgress()
		}
	}
}

func (b *LocalBackend) publishProgress() {
	if b.sliderBusy.Load() || b.stopped.Load() {
		return
	}
	if b.store.Snapshot().CurrentlyPlaying == nil {
		return
	}
	position := b.audio.Position()
	duration := b.audio.Duration()
	playing := !b.audio.Paused()
	b.store.Update(func(s *core.PlaybackState) {
		s.Position = position
		if duration > 0 {
			s.Duration = duration
		}
		s.IsPlaying = playing
	})
}

// indexOf finds item in items by id, then uri, then position.
func indexOf(items []core.Item, item core.Item) int {
	for i, candidate := range items {
		if item.ID != "" && candidate.ID == item.ID {
			return i
		}
	}
	for i, candidate := range items {
		if item.URI != "" && candidate.URI == item.URI {
			return i
		}
	}
	if item.Position >= 0 && item.Position < len(items) && items[item.Position].Name == item.Name {
		return item.Position
	}
	return -1
}
