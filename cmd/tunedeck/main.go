// Package main provides the tunedeck CLI application entry point.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
)

const envPrefix = "TUNEDECK"

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunedeck",
	Short: "tunedeck - Spotify in your terminal",
	Long: `tunedeck browses your Spotify library and plays it from the terminal.
Premium accounts drive a Spotify Connect device; other accounts play 30 second
previews locally.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-file", defaults.Log.File, "log file, the terminal belongs to the interface")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("spotify-redirect-url", "", "OAuth redirect URL (default derived from the server address)")
	flags.String("spotify-token-path", defaults.Spotify.TokenPath, "Token storage path")
	flags.Int("spotify-requests-per-second", defaults.Spotify.RequestsPerSecond, "Spotify Web API request rate")
	flags.Int("spotify-request-burst", defaults.Spotify.RequestBurst, "Spotify Web API request burst")
	flags.String("player-device", "", "Spotify Connect device name or ID")
	flags.Int("player-poll-interval-ms", defaults.Player.PollIntervalMs, "Player poll interval while playing")
	flags.Int("player-idle-poll-interval-ms", defaults.Player.IdlePollIntervalMs, "Slowest player poll interval")
	flags.Int("player-volume", defaults.Player.Volume, "Initial preview volume in percent")
	flags.Bool("player-force-preview", false, "Play previews locally even with a premium account")
	flags.String("server-host", defaults.Server.Host, "HTTP server host")
	flags.Int("server-port", defaults.Server.Port, "HTTP server port")
	flags.String("history-path", defaults.Storage.HistoryPath, "Play history database path")
	flags.Int("library-index-size", defaults.Storage.LibraryIndexSize, "Saved track cache size")
	flags.Int("lyrics-cache-size", defaults.Storage.LyricsCacheSize, "Lyrics cache size")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Interface language (%s)", supportedLangs))
	flags.Int("toast-secs", defaults.App.ToastSecs, "Seconds a notification stays on screen")
	flags.Int("overscan-rows", defaults.App.OverscanRows, "Rows loaded beyond the visible window")
	flags.Bool("open-browser", defaults.App.OpenBrowser, "Open the login page in a browser")
	rootCmd.Flags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, devicesCmd, playCmd, pauseCmd, nextCmd, statusCmd, historyCmd)

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if err := gotenv.Load(envFile()); err != nil {
		// A missing .env is fine, flags and the environment still apply.
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.File)
}

func envFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return ".env"
}

func buildLogger(level, file string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if file != "" {
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}
	return builtLogger
}
