package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nexuschat/nexuschat-server/internal/app"
	"github.com/nexuschat/nexuschat-server/internal/config"
	"github.com/nexuschat/nexuschat-server/internal/log"
	"github.com/nexuschat/nexuschat-server/internal/store/sqlite"
)

type options struct {
	configPath string
	logLevel   string
	addr       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "nexuschat-server",
		Short:         "Real-time multi-room chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address override")

	root.AddCommand(newMigrateCmd(opts))
	return root
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}

			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				logger.Error().Err(err).Str("db_path", cfg.DatabasePath).Msg("migration failed")
				return err
			}
			logger.Info().Str("db_path", cfg.DatabasePath).Msg("database migrated")
			return st.Close()
		},
	}
}

func serve(ctx context.Context, opts *options) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
		cfg.Port = 0
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize app")
		return err
	}

	logger.Info().Str("addr", application.Addr()).Strs("rooms", cfg.Rooms).Msg("starting nexuschat server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func loadConfig(opts *options) (config.Config, *zerolog.Logger, error) {
	bootstrap := log.New(opts.logLevel)

	cfg, path, err := config.Load(bootstrap, opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return config.Config{}, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config_path", path).Msg("configuration loaded")
	return cfg, logger, nil
}
