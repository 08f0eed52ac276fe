package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/pkg/browser"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"tunedeck/internal/audio"
	"tunedeck/internal/core"
	httpserver "tunedeck/internal/http"
	"tunedeck/internal/lyrics"
	"tunedeck/internal/player"
	"tunedeck/internal/spotify"
	"tunedeck/internal/store"
)

// libraryFalsePositiveRate tunes the bloom filter of the saved track index.
const libraryFalsePositiveRate = 0.001

type services struct {
	state      *core.StateStore
	httpServer *httpserver.Server
	auth       *spotify.Authenticator
	history    *store.HistoryStore
	library    *store.LibraryIndex
	lyrics     *lyrics.Client
	audio      *audio.Player

	// Set once authenticated.
	client     *spotify.Client
	user       *core.User
	controller *player.Controller
}

func initializeServices() (*services, error) {
	state := core.NewStateStore(core.PlaybackState{Volume: config.Player.Volume})
	httpServer := httpserver.NewServer(&config.Server, state, logger.Named("http"))
	metrics := httpServer.Metrics()

	tokens := spotify.NewTokenStore(config.Spotify.TokenPath)
	auth := spotify.NewAuthenticator(&config.Spotify, tokens, logger.Named("spotify"), metrics)

	history, err := store.OpenHistory(config.Storage.HistoryPath, logger.Named("history"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	lyricsClient, err := lyrics.NewClient(config.Storage.LyricsCacheSize, logger.Named("lyrics"), lyrics.WithMetrics(metrics))
	if err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("failed to create lyrics client: %w", err)
	}

	return &services{
		state:      state,
		httpServer: httpServer,
		auth:       auth,
		history:    history,
		library:    store.NewLibraryIndex(config.Storage.LibraryIndexSize, libraryFalsePositiveRate),
		lyrics:     lyricsClient,
		audio:      audio.NewPlayer(nil, logger.Named("audio"), config.Player.Volume),
	}, nil
}

// authenticate restores the session and builds the player on top of it.
func (s *services) authenticate(ctx context.Context) error {
	client, user, err := s.auth.GetAuth(ctx)
	if err != nil {
		return err
	}
	s.client, s.user = client, user

	metrics := s.httpServer.Metrics()
	playerLogger := logger.Named("player")
	remote := player.NewRemoteBackend(client, s.state, s.history, metrics, playerLogger, config.Player)
	local := player.NewLocalBackend(s.audio, s.state, s.history, metrics, playerLogger)
	s.controller = player.NewController(s.state, remote, local, playerLogger, config.Player.ForcePreview)
	s.controller.SetUser(user)

	s.httpServer.SetReady(true)
	logger.Info("Authenticated",
		zap.String("user", user.ID),
		zap.Bool("premium", user.IsPremium()),
		zap.Bool("force_preview", config.Player.ForcePreview))
	return nil
}

// warmLibrary loads the saved tracks into the library index. A failure only
// costs extra membership lookups, so it is logged and not returned.
func (s *services) warmLibrary(ctx context.Context) error {
	count, err := s.library.LoadSaved(ctx, s.client)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("Could not load saved tracks", zap.Error(err))
		}
		return nil
	}
	logger.Debug("Loaded library index", zap.Int("saved_tracks", count))
	return nil
}

// login runs the OAuth flow through the local callback handler. input may be
// nil when the terminal is needed for something else.
func (s *services) login(ctx context.Context, input io.Reader) (*oauth2.Token, error) {
	state := uuid.NewString()
	handler := s.httpServer.ExpectCallback(state, s.auth.Exchange)
	return s.auth.Login(ctx, spotify.LoginOptions{
		State:    state,
		Callback: handler.Wait,
		Input:    input,
		Output:   os.Stdout,
		OpenURL:  openURL,
	})
}

// openURL opens the consent page and leaves it on the clipboard.
func openURL(url string) error {
	if err := clipboard.WriteAll(url); err != nil {
		logger.Debug("Failed to copy URL to clipboard", zap.Error(err))
	}
	if !config.App.OpenBrowser {
		return nil
	}
	return browser.OpenURL(url)
}

func (s *services) Close() {
	if s.controller != nil {
		if err := s.controller.Close(); err != nil {
			logger.Debug("Failed to close player", zap.Error(err))
		}
	} else {
		s.audio.Stop()
	}
	if err := s.history.Close(); err != nil {
		logger.Debug("Failed to close history", zap.Error(err))
	}
}

// requireAuth is the non-interactive variant used by one-shot commands.
func (s *services) requireAuth(ctx context.Context) error {
	err := s.authenticate(ctx)
	if errors.Is(err, core.ErrLoginRequired) {
		return fmt.Errorf("%w: run `tunedeck login` first", err)
	}
	return err
}
