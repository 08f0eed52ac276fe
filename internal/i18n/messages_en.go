package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic":          "Something went wrong. Please try again.",
	"error.load_failed":      "Could not load {0}",
	"error.login_required":   "Log in with `tunedeck login` first",
	"error.lyrics_not_found": "No lyrics found for this song",

	// Context menu entries
	"menu.add_to_queue":        "Add to queue",
	"menu.add_to_playlist":     "Add to playlist",
	"menu.save_to_library":     "Save to your Liked Songs",
	"menu.remove_from_library": "Remove from your Liked Songs",
	"menu.song_radio":          "Go to song radio",
	"menu.go_to_artist":        "Go to artist",
	"menu.go_to_album":         "Go to album",
	"menu.copy_link":           "Copy link to song",

	// Toasts
	"toast.queue_added":      "Added to queue",
	"toast.queue_failed":     "Could not add to queue",
	"toast.playlist_added":   "Added to playlist",
	"toast.playlist_failed":  "Could not add to playlist",
	"toast.saved":            "Saved %s to your Liked Songs",
	"toast.removed":          "Removed %s from your Liked Songs",
	"toast.copied":           "Link copied to clipboard",
	"toast.copy_failed":      "Could not copy the link",
	"toast.not_implemented":  "Not implemented yet",
	"toast.device_not_found": "The device was not found. Trying to reconnect",
	"toast.no_device":        "No Spotify device available. Open Spotify on any device",
	"toast.no_preview":       "This song has no preview",
	"toast.nothing_to_play":  "Nothing to play",
	"toast.device_selected":  "Playing on {0}",
	"toast.language_changed": "Language changed",

	// Interface labels
	"ui.home":               "Home",
	"ui.playlists":          "Playlists",
	"ui.liked_songs":        "Liked Songs",
	"ui.albums":             "Albums",
	"ui.shows":              "Podcasts",
	"ui.artists":            "Artists",
	"ui.devices":            "Devices",
	"ui.history":            "Recently played",
	"ui.preferences":        "Preferences",
	"ui.language":           "Language",
	"ui.now_playing":        "Now playing",
	"ui.up_next":            "Next in queue",
	"ui.lyrics":             "Lyrics",
	"ui.loading":            "Loading...",
	"ui.nothing_playing":    "Nothing playing",
	"ui.no_devices":         "No devices found",
	"ui.active":             "active",
	"ui.preview_mode":       "Preview mode",
	"ui.reconnection_error": "Lost connection to the device",
	"ui.unavailable":        "Unavailable",
	"ui.tracks_count":       "{0} songs",
	"ui.loaded_of":          "{0} of {1} loaded",
	"ui.followers":          "{0} followers",
	"ui.episodes":           "Episodes",
	"ui.top_tracks":         "Popular",
	"ui.help":               "space play/pause · enter play · n/p next/prev · ←/→ seek · +/- volume · m menu · f full screen · l lyrics · s save · tab section · esc back · q quit",
}
