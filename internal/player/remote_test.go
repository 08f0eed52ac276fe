package player

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunedeck/internal/core"
)

func newRemote(client *fakeClient, history core.HistoryRecorder, deviceID string) (*RemoteBackend, *core.StateStore) {
	store := core.NewStateStore(core.PlaybackState{DeviceID: deviceID, Premium: true})
	remote := NewRemoteBackend(client, store, history, nil, zap.NewNop(), core.PlayerConfig{})
	return remote, store
}

func TestRemoteBackend_Play(t *testing.T) {
	ctx := context.Background()
	item := track("t1", 3, false)

	tests := []struct {
		name         string
		req          PlayRequest
		deviceID     string
		playErr      error
		wantStatus   core.PlayStatus
		wantErr      error
		wantPlaylist string
	}{
		{
			name:       "No track",
			req:        PlayRequest{ContextURI: "spotify:playlist:p1"},
			deviceID:   "d1",
			wantStatus: core.PlayStatusFailed,
			wantErr:    core.ErrNothingToPlay,
		},
		{
			name:       "No device",
			req:        PlayRequest{Track: &item, ContextURI: "spotify:playlist:p1"},
			wantStatus: core.PlayStatusFailed,
			wantErr:    core.ErrNoDevice,
		},
		{
			name:       "Device gone",
			req:        PlayRequest{Track: &item, ContextURI: "spotify:playlist:p1"},
			deviceID:   "d1",
			playErr:    fmt.Errorf("play: %w", core.ErrDeviceNotFound),
			wantStatus: core.PlayStatusDeviceNotFound,
			wantErr:    core.ErrDeviceNotFound,
		},
		{
			name:       "Other failure",
			req:        PlayRequest{Track: &item, ContextURI: "spotify:playlist:p1"},
			deviceID:   "d1",
			playErr:    errors.New("boom"),
			wantStatus: core.PlayStatusFailed,
		},
		{
			name:         "Context play sets the playing playlist",
			req:          PlayRequest{Track: &item, ContextURI: "spotify:playlist:p1", PlaylistID: "p1"},
			deviceID:     "d1",
			wantStatus:   core.PlayStatusOK,
			wantPlaylist: "p1",
		},
		{
			name:       "Single track clears the playing playlist",
			req:        PlayRequest{Track: &item, PlaylistID: "p1", IsSingleTrack: true, URI: item.URI},
			deviceID:   "d1",
			wantStatus: core.PlayStatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			if tt.playErr != nil {
				client.playErrs = []error{tt.playErr}
			}
			remote, store := newRemote(client, nil, tt.deviceID)
			store.Update(func(s *core.PlaybackState) { s.PlaylistPlayingID = "previous" })

			status, err := remote.Play(ctx, tt.req)
			if status != tt.wantStatus {
				t.Errorf("Play() status = %v, expected %v", status, tt.wantStatus)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Play() error = %v, expected %v", err, tt.wantErr)
			}
			if status != core.PlayStatusOK {
				return
			}
			if err != nil {
				t.Errorf("Play() unexpected error: %v", err)
			}
			state := store.Snapshot()
			if state.PlaylistPlayingID != tt.wantPlaylist {
				t.Errorf("PlaylistPlayingID = %q, expected %q", state.PlaylistPlayingID, tt.wantPlaylist)
			}
			if !state.IsPlaying {
				t.Error("IsPlaying should be set after a successful play")
			}
			if len(client.plays) != 1 || client.plays[0].deviceID != "d1" {
				t.Errorf("plays = %+v, expected one call on d1", client.plays)
			}
		})
	}
}

func TestRemoteBackend_Sync(t *testing.T) {
	ctx := context.Background()
	first, second := track("a", 0, false), track("b", 1, false)
	history := &fakeHistory{}
	client := &fakeClient{
		state: &core.RemotePlayerState{
			Item:       &first,
			IsPlaying:  true,
			Progress:   42 * time.Second,
			ContextURI: "spotify:album:x",
			Device:     core.Device{ID: "d2", Volume: 55},
			Repeat:     core.RepeatStateContext,
		},
		queue: []core.Item{second},
	}
	remote, store := newRemote(client, history, "")

	changed, playing := remote.Sync(ctx)
	if !changed || !playing {
		t.Errorf("Sync() = (%v, %v), expected (true, true)", changed, playing)
	}

	state := store.Snapshot()
	if state.CurrentID() != "a" || state.Position != 42*time.Second || state.Duration != first.Duration {
		t.Errorf("state = %+v, expected track a at 42s", state)
	}
	if state.DeviceID != "d2" || state.Volume != 55 || state.Repeat != core.RepeatStateContext {
		t.Errorf("device fields = (%q, %d, %q), expected (d2, 55, context)", state.DeviceID, state.Volume, state.Repeat)
	}
	if len(state.NextTracks) != 1 || state.NextTracks[0].ID != "b" {
		t.Errorf("NextTracks = %+v, expected [b]", state.NextTracks)
	}
	if state.PlayedSource != "spotify:album:x" {
		t.Errorf("PlayedSource = %q, expected the player context", state.PlayedSource)
	}

	// Same item again: no history entry, no change
	changed, _ = remote.Sync(ctx)
	if changed {
		t.Error("Sync() reported a change for an identical state")
	}
	if history.count() != 1 {
		t.Errorf("history entries = %d, expected 1", history.count())
	}

	client.mu.Lock()
	client.state = &core.RemotePlayerState{Item: &second, IsPlaying: true}
	client.mu.Unlock()
	remote.Sync(ctx)

	state = store.Snapshot()
	if len(state.PreviousTracks) != 1 || state.PreviousTracks[0].ID != "a" {
		t.Errorf("PreviousTracks = %+v, expected [a]", state.PreviousTracks)
	}
	if history.count() != 2 {
		t.Errorf("history entries = %d, expected 2", history.count())
	}

	// Nothing playing anymore
	client.mu.Lock()
	client.state = nil
	client.mu.Unlock()
	changed, playing = remote.Sync(ctx)
	if !changed || playing || store.Snapshot().IsPlaying {
		t.Errorf("Sync() with no playback = (%v, %v), expected (true, false)", changed, playing)
	}
}

func TestRemoteBackend_Reconnect(t *testing.T) {
	client := &fakeClient{devices: []core.Device{
		{ID: "d1", Name: "Phone"},
		{ID: "d2", Name: "Laptop", Active: true},
	}}
	remote, store := newRemote(client, nil, "gone")

	if err := remote.Reconnect(context.Background()); err != nil {
		t.Fatalf("Reconnect() unexpected error: %v", err)
	}
	if store.Snapshot().DeviceID != "d2" {
		t.Errorf("DeviceID = %q, expected the active device", store.Snapshot().DeviceID)
	}
	if len(client.transfers) != 1 || client.transfers[0] != "d2" {
		t.Errorf("transfers = %v, expected [d2]", client.transfers)
	}

	empty := &fakeClient{}
	remote, _ = newRemote(empty, nil, "gone")
	if err := remote.Reconnect(context.Background()); !errors.Is(err, core.ErrNoDevice) {
		t.Errorf("Reconnect() without devices error = %v, expected ErrNoDevice", err)
	}
}

func TestRemoteBackend_Controls(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	remote, store := newRemote(client, nil, "d1")

	if err := remote.TogglePlay(ctx); err != nil {
		t.Fatal(err)
	}
	if !store.Snapshot().IsPlaying {
		t.Error("TogglePlay() from paused should resume")
	}
	if err := remote.TogglePlay(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Snapshot().IsPlaying {
		t.Error("TogglePlay() from playing should pause")
	}

	if err := remote.SetVolume(ctx, 130); err != nil {
		t.Fatal(err)
	}
	if store.Snapshot().Volume != 100 {
		t.Errorf("Volume = %d, expected 100", store.Snapshot().Volume)
	}

	if err := remote.CycleRepeat(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Snapshot().Repeat != core.RepeatStateContext {
		t.Errorf("Repeat = %q, expected context after off", store.Snapshot().Repeat)
	}

	want := []string{"resume", "pause", "volume", "repeat"}
	if fmt.Sprint(client.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, expected %v", client.calls, want)
	}
}

func TestRemoteBackend_RunStops(t *testing.T) {
	client := &fakeClient{}
	remote, _ := newRemote(client, nil, "d1")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- remote.Run(ctx) }()
	remote.Wake()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, expected nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}

func TestRemoteBackend_SyncFollowsContext(t *testing.T) {
	ctx := context.Background()
	first, second := track("a", 0, false), track("b", 1, false)

	tests := []struct {
		name         string
		source       string
		playlistID   string
		contextURI   string
		wantSource   string
		wantPlaylist string
	}{
		{
			name:         "Context changed on another device",
			source:       "spotify:playlist:p1",
			playlistID:   "p1",
			contextURI:   "spotify:playlist:p2",
			wantSource:   "spotify:playlist:p2",
			wantPlaylist: "p2",
		},
		{
			name:         "Same liked songs collection",
			source:       "spotify:collection:u1",
			playlistID:   "u1",
			contextURI:   "spotify:user:u1:collection",
			wantSource:   "spotify:collection:u1",
			wantPlaylist: "u1",
		},
		{
			name:         "Uri list keeps the recorded page",
			source:       "spotify:artist:a1",
			playlistID:   "",
			contextURI:   "",
			wantSource:   "spotify:artist:a1",
			wantPlaylist: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{state: &core.RemotePlayerState{Item: &first, IsPlaying: true, ContextURI: tt.source}}
			remote, store := newRemote(client, nil, "d1")
			remote.Sync(ctx)
			store.Update(func(s *core.PlaybackState) {
				s.PlayedSource = tt.source
				s.PlaylistPlayingID = tt.playlistID
			})

			client.mu.Lock()
			client.state = &core.RemotePlayerState{Item: &second, IsPlaying: true, ContextURI: tt.contextURI}
			client.mu.Unlock()
			remote.Sync(ctx)

			state := store.Snapshot()
			if state.PlayedSource != tt.wantSource || state.PlaylistPlayingID != tt.wantPlaylist {
				t.Errorf("state = (%q, %q), expected (%q, %q)", state.PlayedSource, state.PlaylistPlayingID, tt.wantSource, tt.wantPlaylist)
			}
		})
	}
}

func TestRemoteBackend_PlayRecordsSource(t *testing.T) {
	client := &fakeClient{}
	remote, store := newRemote(client, nil, "d1")
	item := track("t1", 0, false)

	req := PlayRequest{Track: &item, ContextURI: "spotify:album:x", PlaylistID: "x", Source: "spotify:album:x"}
	if status, err := remote.Play(context.Background(), req); status != core.PlayStatusOK || err != nil {
		t.Fatalf("Play() = (%v, %v), expected (200, nil)", status, err)
	}
	if store.Snapshot().PlayedSource != "spotify:album:x" {
		t.Errorf("PlayedSource = %q, expected spotify:album:x", store.Snapshot().PlayedSource)
	}
}
