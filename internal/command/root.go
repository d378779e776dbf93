// Package command contains the CLI command constructors.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/observability"
)

type configKey struct{}

// RootCommand instantiates the root command, with all sub-commands bound.
// Without a sub-command it serves the API.
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "todo-api [command] [flags]",
		Short:        "REST API for per-user todo lists",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger := observability.InitSlog(cfg.LogLevel, cfg.Env == "dev")
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.String("env", cfg.Env),
				slog.String("db_driver", cfg.DBDriver),
				slog.Duration("token_ttl", cfg.TokenTTL),
			)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		RunE: runServe,
	}

	cmd.AddCommand(
		serveCommand(),
		tokenCommand(),
	)
	return cmd
}

func loadConfig(ctx context.Context) (config.Config, *slog.Logger, error) {
	cfg, ok := ctx.Value(configKey{}).(config.Config)
	if !ok {
		return config.Config{}, nil, errors.New("configuration was not loaded")
	}
	return cfg, slog.Default(), nil
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}
