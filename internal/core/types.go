package core

import (
	"context"
	"time"
)

const (
	// ProductPremium is the Spotify product value of accounts allowed to stream full tracks.
	ProductPremium = "premium"

	// ItemTypeTrack marks a music track row.
	ItemTypeTrack = "track"
	// ItemTypeEpisode marks a podcast episode row.
	ItemTypeEpisode = "episode"

	// RepeatStateOff represents the "off" repeat state
	RepeatStateOff = "off"
	// RepeatStateTrack represents the "track" repeat state
	RepeatStateTrack = "track"
	// RepeatStateContext represents the "context" repeat state
	RepeatStateContext = "context"
)

type User struct {
	ID          string
	DisplayName string
	Country     string
	Product     string
}

// IsPremium reports whether the account can drive Spotify Connect playback.
func (u *User) IsPremium() bool {
	return u != nil && u.Product == ProductPremium
}

// Market returns the country used for track relinking.
func (u *User) Market() string {
	if u == nil || u.Country == "" {
		return DefaultMarket
	}
	return u.Country
}

type Artist struct {
	ID   string
	Name string
	URI  string
}

type Image struct {
	URL    string
	Width  int
	Height int
}

type Album struct {
	ID          string
	Name        string
	URI         string
	Artists     []Artist
	Images      []Image
	ReleaseDate string
}

// Item is one playable row: a track or an episode.
type Item struct {
	ID         string
	URI        string
	Name       string
	Artists    []Artist
	Album      Album
	Images     []Image
	Duration   time.Duration
	PreviewURL string
	Explicit   bool
	Position   int
	Corrupted  bool
	AddedAt    time.Time
	Type       string
	IsLocal    bool
	IsPlayable bool
	ShowName   string
}

// Loaded reports whether the row has been fetched.
func (i *Item) Loaded() bool {
	return i != nil && i.Name != ""
}

// ArtistName returns the first artist name, or the show name for episodes.
func (i *Item) ArtistName() string {
	if i == nil {
		return ""
	}
	if len(i.Artists) > 0 {
		return i.Artists[0].Name
	}
	return i.ShowName
}

// IsCorrupted reports rows the API returns without any usable metadata.
func IsCorrupted(name, firstArtist string, durationMs int) bool {
	return name == "" && firstArtist == "" && durationMs == 0
}

const (
	PageTypePlaylist   = "playlist"
	PageTypeAlbum      = "album"
	PageTypeCollection = "collection"
	PageTypeShow       = "show"
	PageTypeArtist     = "artist"
)

// PageDetails describes the page a list of items was loaded from.
type PageDetails struct {
	ID          string
	URI         string
	Type        string
	Name        string
	Description string
	OwnerID     string
	Total       int
}

type Playlist struct {
	ID          string
	URI         string
	Name        string
	Description string
	OwnerID     string
	OwnerName   string
	TrackCount  int
	Images      []Image
}

type Show struct {
	ID        string
	URI       string
	Name      string
	Publisher string
	Images    []Image
}

type FollowedArtist struct {
	Artist
	Genres    []string
	Followers int
	Images    []Image
}

type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
	Volume int
}

// Page is one slice of a paged Spotify collection.
type Page[T any] struct {
	Items  []T
	Offset int
	Total  int
	Next   bool
}

// PlayOptions is the body of a Connect play request.
type PlayOptions struct {
	ContextURI string
	URIs       []string
	// Offset is the index into ContextURI or URIs; nil starts at the beginning.
	Offset *int
}

// RemotePlayerState is the server-side view of Connect playback.
type RemotePlayerState struct {
	Item       *Item
	IsPlaying  bool
	Progress   time.Duration
	ContextURI string
	Device     Device
	Shuffle    bool
	Repeat     string
}

type SpotifyClient interface {
	CurrentUser(ctx context.Context) (*User, error)

	MyPlaylists(ctx context.Context, offset int) (*Page[Playlist], error)
	PlaylistDetails(ctx context.Context, playlistID string) (*PageDetails, error)
	PlaylistItems(ctx context.Context, playlistID string, offset int, market string) (*Page[Item], error)
	SavedTracks(ctx context.Context, offset int) (*Page[Item], error)
	AlbumDetails(ctx context.Context, albumID string) (*PageDetails, error)
	AlbumTracks(ctx context.Context, albumID string, offset int) (*Page[Item], error)
	SavedAlbums(ctx context.Context, offset int) (*Page[Album], error)
	SavedShows(ctx context.Context, offset int) (*Page[Show], error)
	ShowDetails(ctx context.Context, showID string) (*PageDetails, error)
	ShowEpisodes(ctx context.Context, showID string, offset int) (*Page[Item], error)
	ArtistTopTracks(ctx context.Context, artistID, market string) ([]Item, error)
	FollowedArtists(ctx context.Context) ([]FollowedArtist, error)

	CheckTracksInLibrary(ctx context.Context, ids []string) ([]bool, error)
	SaveTracks(ctx context.Context, ids ...string) error
	RemoveTracks(ctx context.Context, ids ...string) error
	SaveEpisodes(ctx context.Context, ids ...string) error
	RemoveEpisodes(ctx context.Context, ids ...string) error
	AddToQueue(ctx context.Context, uri, deviceID string) error
	AddItemsToPlaylist(ctx context.Context, playlistID string, uris []string) error

	Play(ctx context.Context, deviceID string, opts PlayOptions) error
	Pause(ctx context.Context, deviceID string) error
	Resume(ctx context.Context, deviceID string) error
	Next(ctx context.Context, deviceID string) error
	Previous(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, deviceID string, position time.Duration) error
	SetVolume(ctx context.Context, deviceID string, percent int) error
	SetShuffle(ctx context.Context, deviceID string, shuffle bool) error
	SetRepeat(ctx context.Context, deviceID, state string) error
	PlayerState(ctx context.Context) (*RemotePlayerState, error)
	Devices(ctx context.Context) ([]Device, error)
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
	Queue(ctx context.Context) ([]Item, error)
}

// HistoryEntry is one item started by the client.
type HistoryEntry struct {
	URI      string
	Name     string
	Artist   string
	Source   string
	Backend  string
	PlayedAt time.Time
}

type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

type LibraryIndex interface {
	Set(id string, saved bool)
	Lookup(id string) (saved, known bool)
}

// Metrics is the subset of the metrics server used outside cmd.
type Metrics interface {
	RecordPlay(backend string, status PlayStatus)
	RecordAPIError(operation string)
	RecordTokenRefresh()
	RecordRowsLoaded(source string, n int)
	RecordReconnect(result string)
	SetPlaying(playing bool)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordPlay(string, PlayStatus) {}
func (NopMetrics) RecordAPIError(string)         {}
func (NopMetrics) RecordTokenRefresh()           {}
func (NopMetrics) RecordRowsLoaded(string, int)  {}
func (NopMetrics) RecordReconnect(string)        {}
func (NopMetrics) SetPlaying(bool)               {}
