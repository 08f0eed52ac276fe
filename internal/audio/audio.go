// Package audio plays 30 second track previews on the local sound device.
package audio

import (
	"errors"
	"time"
)

const (
	// MaxPreviewBytes bounds the download of a single preview.
	MaxPreviewBytes = 10 << 20
	// DownloadTimeout bounds fetching a preview.
	DownloadTimeout = 15 * time.Second
)

// ErrNotPlaying is returned by controls that need a loaded stream.
var ErrNotPlaying = errors.New("nothing is playing")

// clampVolume keeps a volume percentage within 0..100.
func clampVolume(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// clampPosition keeps a seek target within the stream.
func clampPosition(target, duration time.Duration) time.Duration {
	if target < 0 {
		return 0
	}
	if duration > 0 && target > duration {
		return duration
	}
	return target
}
