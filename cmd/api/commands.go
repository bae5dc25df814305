package main

import (
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(deps mainDeps) *cobra.Command {
	serve := newServeCmd(deps)
	root := &cobra.Command{
		Use:           "api",
		Short:         "Social feed HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(deps))
	return root
}

func newServeCmd(deps mainDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := deps.loadConfig()
			log, err := deps.newLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.MigrateOnStart {
				if err := deps.migrate(cmd.Context(), cfg, log); err != nil {
					return err
				}
			}

			pg, err := deps.connectPostgres(cfg)
			if err != nil {
				log.Error("postgres connection failed", zap.Error(err))
				return err
			}
			rdb := deps.connectRedis(cfg)

			signals := make(chan os.Signal, 1)
			deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

			log.Info("starting server", zap.String("addr", cfg.ServerPort))
			if err := deps.run(cmd.Context(), cfg, pg, rdb, log, signals, nil); err != nil {
				log.Error("server exited with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func newMigrateCmd(deps mainDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := deps.loadConfig()
			log, err := deps.newLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return deps.migrate(cmd.Context(), cfg, log)
		},
	}
}
