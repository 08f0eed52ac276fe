package player

import (
	"context"
	"sync"
	"time"

	"tunedeck/internal/core"
)

// fakeClient implements the player surface of core.SpotifyClient.
type fakeClient struct {
	core.SpotifyClient

	mu        sync.Mutex
	playErrs  []error
	plays     []playCall
	devices   []core.Device
	transfers []string
	state     *core.RemotePlayerState
	queue     []core.Item
	calls     []string
	failWith  error
}

type playCall struct {
	deviceID string
	opts     core.PlayOptions
}

func (f *fakeClient) Play(_ context.Context, deviceID string, opts core.PlayOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, playCall{deviceID: deviceID, opts: opts})
	if len(f.playErrs) > 0 {
		err := f.playErrs[0]
		f.playErrs = f.playErrs[1:]
		return err
	}
	return nil
}

func (f *fakeClient) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failWith != nil {
		err := f.failWith
		f.failWith = nil
		return err
	}
	return nil
}

func (f *fakeClient) Pause(context.Context, string) error  { return f.record("pause") }
func (f *fakeClient) Resume(context.Context, string) error { return f.record("resume") }
func (f *fakeClient) Next(context.Context, string) error   { return f.record("next") }
func (f *fakeClient) Previous(context.Context, string) error {
	return f.record("previous")
}

func (f *fakeClient) Seek(context.Context, string, time.Duration) error {
	return f.record("seek")
}

func (f *fakeClient) SetVolume(context.Context, string, int) error {
	return f.record("volume")
}

func (f *fakeClient) SetRepeat(context.Context, string, string) error {
	return f.record("repeat")
}

func (f *fakeClient) Devices(context.Context) ([]core.Device, error) {
	return f.devices, nil
}

func (f *fakeClient) TransferPlayback(_ context.Context, deviceID string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, deviceID)
	return nil
}

func (f *fakeClient) PlayerState(context.Context) (*core.RemotePlayerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

func (f *fakeClient) Queue(context.Context) ([]core.Item, error) {
	return f.queue, nil
}

// fakeAudio is an AudioPlayer that never makes a sound.
type fakeAudio struct {
	mu       sync.Mutex
	played   []string
	paused   bool
	loaded   bool
	position time.Duration
	volume   int
	playErr  error
	finished chan struct{}
}

func newFakeAudio() *fakeAudio {
	return &fakeAudio{volume: 80, finished: make(chan struct{}, 1)}
}

func (a *fakeAudio) Play(_ context.Context, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playErr != nil {
		return a.playErr
	}
	a.played = append(a.played, url)
	a.loaded = true
	a.paused = false
	a.position = 0
	return nil
}

func (a *fakeAudio) TogglePause() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = !a.paused
	return a.paused, nil
}

func (a *fakeAudio) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = true
	return nil
}

func (a *fakeAudio) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = false
	return nil
}

func (a *fakeAudio) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused || !a.loaded
}

func (a *fakeAudio) Seek(position time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = position
	return nil
}

func (a *fakeAudio) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

func (a *fakeAudio) Duration() time.Duration { return 30 * time.Second }

func (a *fakeAudio) SetVolume(percent int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = percent
}

func (a *fakeAudio) Volume() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func (a *fakeAudio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loaded = false
}

func (a *fakeAudio) Finished() <-chan struct{} { return a.finished }

func (a *fakeAudio) lastPlayed() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.played) == 0 {
		return ""
	}
	return a.played[len(a.played)-1]
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []core.HistoryEntry
}

func (h *fakeHistory) Record(_ context.Context, entry core.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *fakeHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *fakeHistory) sources() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	sources := make([]string, len(h.entries))
	for i, entry := range h.entries {
		sources[i] = entry.Source
	}
	return sources
}

func track(id string, position int, preview bool) core.Item {
	item := core.Item{
		ID:       id,
		URI:      "spotify:track:" + id,
		Name:     "Song " + id,
		Position: position,
		Duration: 3 * time.Minute,
		Type:     core.ItemTypeTrack,
	}
	if preview {
		item.PreviewURL = "https://p.scdn.co/mp3-preview/" + id
	}
	return item
}
