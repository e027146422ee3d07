package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gchang12/aenir/internal/config"
)

// app carries what every subcommand shares once the root has run.
type app struct {
	configPath string
	game       string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "aenir",
		Short:         "Simulate unit progression across the Fire Emblem games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	defaultPath := ConfigPath
	if p := os.Getenv("AENIR_CONFIG"); p != "" {
		defaultPath = p
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultPath, "path to the YAML config")
	root.PersistentFlags().StringVarP(&a.game, "game", "g", "", "ruleset id or name (overrides config)")

	root.AddCommand(
		newMigrateCmd(a),
		newImportCmd(a),
		newMorphCmd(a),
		newCompareCmd(a),
		newGamesCmd(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.game != "" {
		cfg.Game = a.game
	}
	a.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Debug("config loaded", "path", a.configPath, "driver", cfg.Database.Driver, "game", cfg.Game)
	return nil
}
