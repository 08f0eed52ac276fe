//go:build !noplayback

package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

// speakerRate is the rate the speaker runs at; other streams are resampled.
const speakerRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	return speakerErr
}

// Player streams MP3 previews through beep.
type Player struct {
	httpClient *http.Client
	logger     *zap.Logger

	mu       sync.Mutex
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	stream   beep.StreamSeekCloser
	format   beep.Format
	percent  int
	finished chan struct{}
	// generation identifies the current stream so stale end callbacks are ignored.
	generation atomic.Uint64
}

func NewPlayer(httpClient *http.Client, logger *zap.Logger, volume int) *Player {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DownloadTimeout}
	}
	return &Player{
		httpClient: httpClient,
		logger:     logger,
		percent:    clampVolume(volume),
		finished:   make(chan struct{}, 1),
	}
}

type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }

// Play downloads the preview at url and starts it, replacing any current stream.
func (p *Player) Play(ctx context.Context, url string) error {
	data, err := p.download(ctx, url)
	if err != nil {
		return err
	}

	stream, format, err := mp3.Decode(readSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("failed to decode preview: %w", err)
	}

	if err := initSpeaker(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	var source beep.Streamer = stream
	if format.SampleRate != speakerRate {
		source = beep.Resample(4, format.SampleRate, speakerRate, stream)
	}

	ctrl := &beep.Ctrl{Streamer: source}
	volume := &effects.Volume{Streamer: ctrl, Base: 2}
	applyVolume(volume, p.percent)

	generation := p.generation.Add(1)
	p.ctrl = ctrl
	p.volume = volume
	p.stream = stream
	p.format = format

	speaker.Play(beep.Seq(volume, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker locked.
		if p.generation.Load() != generation {
			return
		}
		select {
		case p.finished <- struct{}{}:
		default:
		}
	})))

	p.logger.Debug("Preview started", zap.String("url", url), zap.Int("sample_rate", int(format.SampleRate)))
	return nil
}

func (p *Player) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch preview: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPreviewBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read preview: %w", err)
	}
	return data, nil
}

// TogglePause flips the paused flag and returns whether playback is now paused.
func (p *Player) TogglePause() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return false, ErrNotPlaying
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	paused := p.ctrl.Paused
	speaker.Unlock()
	return paused, nil
}

func (p *Player) Pause() error {
	return p.setPaused(true)
}

func (p *Player) Resume() error {
	return p.setPaused(false)
}

func (p *Player) setPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return ErrNotPlaying
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

// Paused reports whether the stream is paused. Nothing loaded counts as paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return true
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.ctrl.Paused
}

// Seek moves to position, clamped to the stream.
func (p *Player) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotPlaying
	}

	target := clampPosition(position, p.format.SampleRate.D(p.stream.Len()))
	sample := p.format.SampleRate.N(target)
	if sample >= p.stream.Len() {
		sample = p.stream.Len() - 1
	}
	if sample < 0 {
		sample = 0
	}

	speaker.Lock()
	err := p.stream.Seek(sample)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return 0
	}
	speaker.Lock()
	position := p.stream.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(position)
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return 0
	}
	return p.format.SampleRate.D(p.stream.Len())
}

// SetVolume sets the output volume in percent (0..100).
func (p *Player) SetVolume(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.percent = clampVolume(percent)
	if p.volume == nil {
		return
	}
	speaker.Lock()
	applyVolume(p.volume, p.percent)
	speaker.Unlock()
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

// Stop ends the current stream without signalling Finished.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stream == nil {
		return
	}
	p.generation.Add(1)
	speaker.Clear()
	if err := p.stream.Close(); err != nil {
		p.logger.Debug("Failed to close stream", zap.Error(err))
	}
	p.ctrl = nil
	p.volume = nil
	p.stream = nil
}

// Finished receives once each time a stream plays to its end.
func (p *Player) Finished() <-chan struct{} {
	return p.finished
}

// applyVolume maps 0..100 onto beep's exponential volume. 100 is unity gain.
func applyVolume(v *effects.Volume, percent int) {
	v.Silent = percent == 0
	v.Volume = float64(percent-100) / 20
}
