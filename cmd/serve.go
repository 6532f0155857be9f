package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qhttp "diabetescheck/http"
	"diabetescheck/logger"
	"diabetescheck/monitoring"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the artifacts and serve the prediction form and API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()

			metrics := monitoring.NewMetrics()
			service, closeArtifacts, err := newService(ctx, cfg, metrics, log)
			if err != nil {
				log.Error("failed to load artifacts", zap.Error(err))
				return err
			}
			defer func() {
				if err := closeArtifacts(); err != nil {
					log.Warn("failed to release artifacts", zap.Error(err))
				}
			}()
			artifacts := service.Artifacts()
			log.Info("artifacts loaded",
				zap.String("source", cfg.Artifacts.Source),
				zap.String("scaler", artifacts.ScalerKind),
				zap.String("classifier", artifacts.ClassifierKind),
				zap.Int("cache_size", cfg.Cache.Size))

			server, err := qhttp.NewServer(qhttp.ServerConfig{
				Port:           cfg.Http.Port,
				Timeout:        cfg.Http.Timeout,
				AllowedOrigins: cfg.Http.AllowedOrigins,
				RateLimit:      cfg.Http.RateLimit,
				RateWindow:     cfg.Http.RateWindow,
			}, service, metrics, log)
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() {
				errc <- server.Start()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				log.Error("shutdown failed", zap.Error(err))
				return err
			}
			log.Info("exiting")
			return nil
		},
	}
}
