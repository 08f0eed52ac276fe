//go:build noplayback

package audio

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// previewLength is the duration reported for every stream in silent builds.
const previewLength = 30 * time.Second

// Player is a silent stand-in for builds without an audio device. It keeps
// the wall clock position so the rest of the client behaves normally.
type Player struct {
	logger *zap.Logger

	mu       sync.Mutex
	loaded   bool
	paused   bool
	started  time.Time
	offset   time.Duration
	percent  int
	finished chan struct{}
}

func NewPlayer(_ *http.Client, logger *zap.Logger, volume int) *Player {
	return &Player{
		logger:   logger,
		percent:  clampVolume(volume),
		finished: make(chan struct{}, 1),
	}
}

func (p *Player) Play(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded = true
	p.paused = false
	p.offset = 0
	p.started = time.Now()
	p.logger.Debug("Silent preview started", zap.String("url", url))
	return nil
}

func (p *Player) TogglePause() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return false, ErrNotPlaying
	}
	p.setPausedLocked(!p.paused)
	return p.paused, nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return ErrNotPlaying
	}
	p.setPausedLocked(true)
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return ErrNotPlaying
	}
	p.setPausedLocked(false)
	return nil
}

func (p *Player) setPausedLocked(paused bool) {
	if paused == p.paused {
		return
	}
	if paused {
		p.offset = p.positionLocked()
	} else {
		p.started = time.Now()
	}
	p.paused = paused
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.loaded || p.paused
}

func (p *Player) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return ErrNotPlaying
	}
	p.offset = clampPosition(position, previewLength)
	p.started = time.Now()
	return nil
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if !p.loaded {
		return 0
	}
	if p.paused {
		return p.offset
	}
	return clampPosition(p.offset+time.Since(p.started), previewLength)
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return 0
	}
	return previewLength
}

func (p *Player) SetVolume(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percent = clampVolume(percent)
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
	p.offset = 0
}

func (p *Player) Finished() <-chan struct{} {
	return p.finished
}
