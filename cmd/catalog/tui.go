package main

import (
	"fmt"
	"io"
	"os"

	"product-catalog/internal/app"
	"product-catalog/internal/config"
	"product-catalog/internal/service"
	"product-catalog/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI (same as no command)",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log lines would corrupt the screen, so they go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if cfg.Logger.File != "" {
		f, err := os.OpenFile(cfg.Logger.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLoggerTo(cfg.Logger, logOut)

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	gate := service.NewSearchGate(application.Products)
	defer gate.Stop()

	model := tui.NewModel(ctx, tui.Deps{
		Search: gate,
		Store:  application.Store,
		Remote: application.Remote,
		Logger: logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
