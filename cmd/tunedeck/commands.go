package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tunedeck/internal/core"
	"tunedeck/internal/spotify"
	"tunedeck/pkg/format"
	"tunedeck/pkg/spotifyuri"
)

const defaultHistoryLimit = 20

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize tunedeck with your Spotify account",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved Spotify session",
	Args:  cobra.NoArgs,
	RunE: withServices(false, func(_ context.Context, s *services, _ []string) error {
		if err := s.auth.Logout(); err != nil {
			return fmt.Errorf("failed to remove token: %w", err)
		}
		fmt.Println("Logged out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: withServices(true, func(_ context.Context, s *services, _ []string) error {
		mode := "preview"
		if s.user.IsPremium() {
			mode = "connect"
		}
		fmt.Printf("%s (%s)\nproduct: %s\ncountry: %s\nplayback: %s\n",
			s.user.DisplayName, s.user.ID, s.user.Product, s.user.Market(), mode)
		return nil
	}),
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List Spotify Connect devices",
	Args:  cobra.NoArgs,
	RunE: withServices(true, func(ctx context.Context, s *services, _ []string) error {
		devices, err := s.client.Devices(ctx)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices available, open Spotify on one of your devices")
			return nil
		}
		for _, d := range devices {
			active := " "
			if d.Active {
				active = "*"
			}
			fmt.Printf("%s %-30s %-12s %3d%%  %s\n", active, d.Name, d.Type, d.Volume, d.ID)
		}
		return nil
	}),
}

var playCmd = &cobra.Command{
	Use:   "play <uri|url>",
	Short: "Play a track, album, playlist, show or artist on the Connect device",
	Args:  cobra.ExactArgs(1),
	RunE: withServices(true, func(ctx context.Context, s *services, args []string) error {
		opts, err := playOptionsFor(args[0])
		if err != nil {
			return err
		}
		device, err := connectDevice(ctx, s)
		if err != nil {
			return err
		}
		if err := s.client.Play(ctx, device.ID, opts); err != nil {
			return fmt.Errorf("failed to play: %w", err)
		}
		fmt.Printf("Playing on %s\n", device.Name)
		return nil
	}),
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the Connect device",
	Args:  cobra.NoArgs,
	RunE: withServices(true, func(ctx context.Context, s *services, _ []string) error {
		device, err := connectDevice(ctx, s)
		if err != nil {
			return err
		}
		return s.client.Pause(ctx, device.ID)
	}),
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next item on the Connect device",
	Args:  cobra.NoArgs,
	RunE: withServices(true, func(ctx context.Context, s *services, _ []string) error {
		device, err := connectDevice(ctx, s)
		if err != nil {
			return err
		}
		return s.client.Next(ctx, device.ID)
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what Spotify Connect is playing",
	Args:  cobra.NoArgs,
	RunE: withServices(true, func(ctx context.Context, s *services, _ []string) error {
		state, err := s.client.PlayerState(ctx)
		if err != nil {
			return err
		}
		fmt.Print(formatStatus(state))
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently started items",
	Args:  cobra.NoArgs,
}

func init() {
	// RunE is assigned here because historyLimit reads historyCmd's flags,
	// which would otherwise form a package initialization cycle.
	historyCmd.RunE = withServices(false, func(ctx context.Context, s *services, _ []string) error {
		entries, err := s.history.Recent(ctx, historyLimit())
		if err != nil {
			return err
		}
		fmt.Print(formatHistory(entries, time.Now()))
		return nil
	})
	historyCmd.Flags().Int("limit", defaultHistoryLimit, "Number of entries to show")
}

func historyLimit() int {
	limit, err := historyCmd.Flags().GetInt("limit")
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}

// withServices wraps a one-shot command: it builds the services, optionally
// restores the session, and tears everything down afterwards.
func withServices(needsAuth bool, fn func(context.Context, *services, []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		if needsAuth {
			if err := validateConfig(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svcs, err := initializeServices()
		if err != nil {
			return err
		}
		defer svcs.Close()

		if needsAuth {
			if err := svcs.requireAuth(ctx); err != nil {
				return err
			}
		}
		return fn(ctx, svcs, args)
	}
}

func runLogin(_ *cobra.Command, _ []string) error {
	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svcs, err := initializeServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, cancel := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	_, loginErr := svcs.login(gCtx, os.Stdin)
	if loginErr == nil {
		loginErr = svcs.authenticate(gCtx)
	}
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if loginErr != nil {
		return fmt.Errorf("login failed: %w", loginErr)
	}
	fmt.Printf("\n✅ Logged in as %s\n", svcs.user.DisplayName)
	return nil
}

// playOptionsFor maps a uri or link onto a Connect play request: items play
// alone, everything else plays as a context.
func playOptionsFor(raw string) (core.PlayOptions, error) {
	uri, err := spotifyuri.Parse(raw)
	if err != nil {
		return core.PlayOptions{}, fmt.Errorf("%q: %w", raw, err)
	}
	switch uri.Type {
	case spotifyuri.TypeTrack, spotifyuri.TypeEpisode:
		return core.PlayOptions{URIs: []string{uri.String()}}, nil
	case spotifyuri.TypeAlbum, spotifyuri.TypePlaylist, spotifyuri.TypeArtist, spotifyuri.TypeShow, spotifyuri.TypeCollection:
		return core.PlayOptions{ContextURI: uri.String()}, nil
	}
	return core.PlayOptions{}, fmt.Errorf("cannot play a %s", uri.Type)
}

func connectDevice(ctx context.Context, s *services) (core.Device, error) {
	if !s.user.IsPremium() {
		return core.Device{}, fmt.Errorf("spotify connect needs a premium account")
	}
	devices, err := s.client.Devices(ctx)
	if err != nil {
		return core.Device{}, err
	}
	return spotify.ResolveDevice(devices, config.Player.Device)
}

func formatStatus(state *core.RemotePlayerState) string {
	if state == nil || state.Item == nil {
		return "Nothing is playing\n"
	}
	var b strings.Builder
	icon := "⏸"
	if state.IsPlaying {
		icon = "▶"
	}
	fmt.Fprintf(&b, "%s %s", icon, state.Item.Name)
	if artist := state.Item.ArtistName(); artist != "" {
		fmt.Fprintf(&b, " · %s", artist)
	}
	fmt.Fprintf(&b, "\n  %s / %s", format.FormatTime(state.Progress), format.FormatTime(state.Item.Duration))
	if state.Device.Name != "" {
		fmt.Fprintf(&b, " on %s", state.Device.Name)
	}
	b.WriteString("\n")
	return b.String()
}

func formatHistory(entries []core.HistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return "No history yet\n"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-14s %s · %s (%s)\n", format.TimeAgo(e.PlayedAt, now), e.Name, e.Artist, e.Backend)
	}
	return b.String()
}
