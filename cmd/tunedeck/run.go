package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
	"tunedeck/internal/ui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tunedeck",
		zap.String("language", config.App.Language),
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	svcs, err := initializeServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	if err := svcs.authenticate(gCtx); err != nil {
		if !errors.Is(err, core.ErrLoginRequired) {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}
		// The interface needs stdin, so only the callback can finish this login.
		if _, err := svcs.login(gCtx, nil); err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("login failed: %w", err)
		}
		if err := svcs.authenticate(gCtx); err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}
	}

	g.Go(func() error {
		return svcs.controller.Run(gCtx)
	})

	g.Go(func() error {
		return svcs.warmLibrary(gCtx)
	})

	g.Go(func() error {
		defer cancel()
		return runProgram(gCtx, svcs)
	})

	if err := g.Wait(); err != nil {
		logger.Error("tunedeck stopped with error", zap.Error(err))
		return err
	}
	logger.Info("tunedeck stopped gracefully")
	return nil
}

func runProgram(ctx context.Context, svcs *services) error {
	model := ui.NewModel(ctx, ui.Deps{
		Controller: svcs.controller,
		Client:     svcs.client,
		State:      svcs.state,
		Library:    svcs.library,
		History:    svcs.history,
		Lyrics:     svcs.lyrics,
		Localizer:  i18n.NewLocalizer(config.App.Language),
		Metrics:    svcs.httpServer.Metrics(),
		CopyText:   clipboard.WriteAll,
		OnLanguage: saveLanguage,
		Config:     config.App,
		Logger:     logger.Named("ui"),
	})
	defer model.Close()

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("interface failed: %w", err)
	}
	return nil
}
