package core

import (
	"time"
)

const (
	// DefaultLanguage is the UI language used when none is configured.
	DefaultLanguage = "en"
	// DefaultPollIntervalMs is how often the premium backend polls the player while playing.
	DefaultPollIntervalMs = 1000
	// DefaultIdlePollIntervalMs is the slowest poll interval reached while nothing changes.
	DefaultIdlePollIntervalMs = 5000
	// DefaultPageSize is the Spotify page size used for every paged endpoint.
	DefaultPageSize = 50
	// DefaultOverscanRows is the number of rows loaded beyond the visible window.
	DefaultOverscanRows = 2
	// DefaultRequestsPerSecond bounds calls to the Spotify Web API.
	DefaultRequestsPerSecond = 10
	// DefaultRequestBurst is the burst allowance of the API limiter.
	DefaultRequestBurst = 5
	// DefaultVolume is the initial local player volume.
	DefaultVolume = 80
	// DefaultToastSecs is how long a toast stays on screen.
	DefaultToastSecs = 3
	// DefaultLibraryIndexSize bounds the saved-track membership cache.
	DefaultLibraryIndexSize = 20000
	// DefaultLyricsCacheSize bounds the number of cached lyrics.
	DefaultLyricsCacheSize = 128
	// DefaultMarket is used when the user profile carries no country.
	DefaultMarket = "US"
)

type Config struct {
	Spotify SpotifyConfig
	Player  PlayerConfig
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	TokenPath         string
	RequestsPerSecond int
	RequestBurst      int
}

type PlayerConfig struct {
	// Device selects the Spotify Connect device by name or id for premium accounts.
	Device             string
	PollIntervalMs     int
	IdlePollIntervalMs int
	Volume             int
	// ForcePreview uses the local preview player even for premium accounts.
	ForcePreview bool
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StorageConfig struct {
	HistoryPath      string
	LibraryIndexSize int
	LyricsCacheSize  int
}

type LogConfig struct {
	Level string
	File  string
}

type AppConfig struct {
	Language     string
	ToastSecs    int
	OverscanRows int
	OpenBrowser  bool
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL:       "http://127.0.0.1:8888/callback",
			TokenPath:         "./spotify_token.json",
			RequestsPerSecond: DefaultRequestsPerSecond,
			RequestBurst:      DefaultRequestBurst,
		},
		Player: PlayerConfig{
			PollIntervalMs:     DefaultPollIntervalMs,
			IdlePollIntervalMs: DefaultIdlePollIntervalMs,
			Volume:             DefaultVolume,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8888,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			HistoryPath:      "./tunedeck_history.db",
			LibraryIndexSize: DefaultLibraryIndexSize,
			LyricsCacheSize:  DefaultLyricsCacheSize,
		},
		Log: LogConfig{
			Level: "info",
			File:  "./tunedeck.log",
		},
		App: AppConfig{
			Language:     DefaultLanguage,
			ToastSecs:    DefaultToastSecs,
			OverscanRows: DefaultOverscanRows,
			OpenBrowser:  true,
		},
	}
}

// PollInterval returns the active poll interval as a duration.
func (c PlayerConfig) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return time.Duration(DefaultPollIntervalMs) * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// IdlePollInterval returns the slowest poll interval as a duration.
func (c PlayerConfig) IdlePollInterval() time.Duration {
	if c.IdlePollIntervalMs <= 0 {
		return time.Duration(DefaultIdlePollIntervalMs) * time.Millisecond
	}
	return time.Duration(c.IdlePollIntervalMs) * time.Millisecond
}
