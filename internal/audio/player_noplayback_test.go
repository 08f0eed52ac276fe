//go:build noplayback

package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSilentPlayer(t *testing.T) {
	player := NewPlayer(nil, zap.NewNop(), 150)

	if player.Volume() != 100 {
		t.Errorf("Volume() = %d, expected 100", player.Volume())
	}
	if _, err := player.TogglePause(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("TogglePause() before Play error = %v, expected ErrNotPlaying", err)
	}

	if err := player.Play(context.Background(), "https://p.scdn.co/mp3-preview/x"); err != nil {
		t.Fatalf("Play() unexpected error: %v", err)
	}
	if player.Duration() != previewLength {
		t.Errorf("Duration() = %v, expected %v", player.Duration(), previewLength)
	}

	if err := player.Seek(40 * time.Second); err != nil {
		t.Fatalf("Seek() unexpected error: %v", err)
	}
	if err := player.Pause(); err != nil {
		t.Fatal(err)
	}
	if player.Position() != previewLength {
		t.Errorf("Position() = %v, expected seek to clamp at %v", player.Position(), previewLength)
	}

	paused, err := player.TogglePause()
	if err != nil || paused {
		t.Errorf("TogglePause() = (%v, %v), expected (false, nil)", paused, err)
	}

	player.Stop()
	if !player.Paused() || player.Position() != 0 {
		t.Error("Stop() should unload the stream")
	}
}
