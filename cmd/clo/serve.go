/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package main

import (
	"context"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/appconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/server"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/store"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"syscall"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the log config API backed by a local versioned store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.StdPortalConfig
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}
			if err := logger.SetupZapLogger(logger.Config{
				Dir:        cfg.Log.Dir,
				Debug:      cfg.Log.Debug,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			}); err != nil {
				return err
			}
			defer logger.Sync()
			logger.Infoz("[bootstrap] config", zap.Any("config", cfg), zap.Any("version", appconfig.VersionInfo()))

			storage, err := store.NewStorage(filepath.Join(cfg.Data.Dir, "clo.db"))
			if err != nil {
				return err
			}
			defer storage.Close()

			checker, closeFn, err := newChecker()
			if err != nil {
				return err
			}
			defer closeFn()

			s := server.NewServer(cfg.Server.Addr, storage, timeformat.NewValidator(checker))
			return serve(cmd.Context(), s)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

// serve runs the server until the context ends or a stop signal arrives.
func serve(ctx context.Context, s *server.Server) error {
	ctx, cancel := context.WithCancel(ctx)

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	g.Add(func() error {
		if err := s.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}, func(error) {
		cancel()
		if err := s.Stop(); err != nil {
			logger.Errorz("[bootstrap] stop server error", zap.Error(err))
		}
	})

	err := g.Run()
	if _, ok := err.(run.SignalError); ok {
		logger.Infoz("[bootstrap] stopped", zap.String("reason", err.Error()))
		return nil
	}
	return err
}
