package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
)

const loopbackHost = "127.0.0.1"

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureSpotify(cfg)
	configurePlayer(cfg)
	configureStorage(cfg)
	configureApp(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = loopbackHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.File = viper.GetString("log-file")
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.RedirectURL = viper.GetString("spotify-redirect-url")
	cfg.Spotify.TokenPath = viper.GetString("spotify-token-path")
	if cfg.Spotify.TokenPath == "" {
		cfg.Spotify.TokenPath = "./spotify_token.json"
	}
	cfg.Spotify.RequestsPerSecond = positiveOr(viper.GetInt("spotify-requests-per-second"), core.DefaultRequestsPerSecond)
	cfg.Spotify.RequestBurst = positiveOr(viper.GetInt("spotify-request-burst"), core.DefaultRequestBurst)

	// The redirect must reach the local callback handler.
	if cfg.Spotify.RedirectURL == "" {
		host := cfg.Server.Host
		if host == "0.0.0.0" {
			host = loopbackHost
		}
		cfg.Spotify.RedirectURL = fmt.Sprintf("http://%s:%d/callback", host, cfg.Server.Port)
	}
}

func configurePlayer(cfg *core.Config) {
	cfg.Player.Device = viper.GetString("player-device")
	cfg.Player.PollIntervalMs = positiveOr(viper.GetInt("player-poll-interval-ms"), core.DefaultPollIntervalMs)
	cfg.Player.IdlePollIntervalMs = positiveOr(viper.GetInt("player-idle-poll-interval-ms"), core.DefaultIdlePollIntervalMs)
	if cfg.Player.IdlePollIntervalMs < cfg.Player.PollIntervalMs {
		cfg.Player.IdlePollIntervalMs = cfg.Player.PollIntervalMs
	}
	cfg.Player.Volume = viper.GetInt("player-volume")
	if cfg.Player.Volume < 0 || cfg.Player.Volume > 100 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid volume (%d), using default (%d)\n", cfg.Player.Volume, core.DefaultVolume)
		cfg.Player.Volume = core.DefaultVolume
	}
	cfg.Player.ForcePreview = viper.GetBool("player-force-preview")
}

func configureStorage(cfg *core.Config) {
	if path := viper.GetString("history-path"); path != "" {
		cfg.Storage.HistoryPath = path
	}
	cfg.Storage.LibraryIndexSize = positiveOr(viper.GetInt("library-index-size"), core.DefaultLibraryIndexSize)
	cfg.Storage.LyricsCacheSize = positiveOr(viper.GetInt("lyrics-cache-size"), core.DefaultLyricsCacheSize)
}

func configureApp(cfg *core.Config) {
	cfg.App.ToastSecs = positiveOr(viper.GetInt("toast-secs"), core.DefaultToastSecs)
	cfg.App.OverscanRows = viper.GetInt("overscan-rows")
	if cfg.App.OverscanRows < 0 {
		cfg.App.OverscanRows = core.DefaultOverscanRows
	}
	cfg.App.OpenBrowser = viper.GetBool("open-browser")

	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func validateConfig() error {
	if config.Spotify.ClientID == "" {
		return errors.New("spotify client ID is required")
	}
	if config.Spotify.ClientSecret == "" {
		return errors.New("spotify client secret is required")
	}
	return nil
}

// saveLanguage stores the interface language in the env file so the next
// start uses it.
func saveLanguage(code string) error {
	path := envFile()
	env, err := gotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		env = gotenv.Env{}
	}
	env[flagToEnvVar("language")] = code
	if err := gotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	config.App.Language = code
	return nil
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// lookupFlag finds a flag whether or not the persistent set was merged yet.
func lookupFlag(cmd *cobra.Command, flagName string) *pflag.Flag {
	if f := cmd.Flags().Lookup(flagName); f != nil {
		return f
	}
	return cmd.PersistentFlags().Lookup(flagName)
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := lookupFlag(cmd, flagName); f != nil {
		return f.DefValue
	}
	return ""
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")
	content := generateEnvExampleContent(cmd)
	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}
	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

// envSection groups flags under one heading of .env.example.
type envSection struct {
	title string
	note  string
	flags []string
}

var envSections = []envSection{
	{
		title: "SPOTIFY - Required",
		note:  "Create an app at https://developer.spotify.com/dashboard and add the redirect URL to it",
		flags: []string{
			"spotify-client-id", "spotify-client-secret", "spotify-redirect-url", "spotify-token-path",
			"spotify-requests-per-second", "spotify-request-burst",
		},
	},
	{
		title: "PLAYER",
		note:  "Premium accounts use Spotify Connect, other accounts play previews locally",
		flags: []string{
			"player-device", "player-poll-interval-ms", "player-idle-poll-interval-ms", "player-volume",
			"player-force-preview",
		},
	},
	{
		title: "STORAGE",
		flags: []string{"history-path", "library-index-size", "lyrics-cache-size"},
	},
	{
		title: "INTERFACE",
		flags: []string{"language", "toast-secs", "overscan-rows", "open-browser"},
	},
	{
		title: "SERVER",
		note:  "Serves the OAuth callback, health checks and Prometheus metrics",
		flags: []string{"server-host", "server-port"},
	},
	{
		title: "LOGGING",
		flags: []string{"log-level", "log-file"},
	},
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# tunedeck Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	for _, section := range envSections {
		content.WriteString("# -----------------------------------------------------------------------------\n")
		fmt.Fprintf(&content, "# %s\n", section.title)
		content.WriteString("# -----------------------------------------------------------------------------\n")
		if section.note != "" {
			fmt.Fprintf(&content, "# %s\n", section.note)
		}
		for _, name := range section.flags {
			usage := ""
			if f := lookupFlag(cmd, name); f != nil {
				usage = f.Usage
			}
			fmt.Fprintf(&content, "%s=%s  # %s\n", flagToEnvVar(name), getDefaultValueString(cmd, name), usage)
		}
		content.WriteString("\n")
	}
	return content.String()
}
