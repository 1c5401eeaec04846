package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docrag/internal/api"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var (
		addr       string
		indexFirst bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// the memory backend starts empty in every process
			if indexFirst {
				if _, _, err := a.service.IndexDataset(ctx, a.indexRequest()); err != nil {
					return err
				}
			}

			var stats api.CacheStats
			if a.cache != nil {
				stats = a.cache
			}
			srv := api.New(a.service, api.NewMetrics(stats), a.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(cfg.Server.Addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().BoolVar(&indexFirst, "index", false, "rebuild the dataset before serving")
	return cmd
}
