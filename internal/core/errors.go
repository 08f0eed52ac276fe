package core

import "errors"

var (
	// ErrNotAuthenticated is returned by clients used before a successful login.
	ErrNotAuthenticated = errors.New("client not authenticated")
	// ErrLoginRequired means neither the stored token nor a refresh produced a user.
	ErrLoginRequired = errors.New("login required")
	// ErrNoDevice means no Spotify Connect device is available for playback.
	ErrNoDevice = errors.New("no spotify connect device available")
	// ErrDeviceNotFound is the player API's 404: the device id is gone.
	ErrDeviceNotFound = errors.New("playback device not found")
	// ErrNoPreview is returned when a non-premium play targets a track without a preview.
	ErrNoPreview = errors.New("track has no preview")
	// ErrNothingToPlay is returned when a play request carries no track, uri or page.
	ErrNothingToPlay = errors.New("nothing to play")
	// ErrNotImplemented marks menu actions that exist but do nothing yet.
	ErrNotImplemented = errors.New("not implemented")
)
