// Package cmd holds the diabetescheck command line.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diabetescheck/config"
	"diabetescheck/db"
	"diabetescheck/monitoring"
	"diabetescheck/predict"
)

const defaultConfigPath = "config.yaml"

type rootOptions struct {
	configPath string
}

// NewRootCommand builds the diabetescheck command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "diabetescheck",
		Short:         "Diabetes risk prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the YAML config (defaults to ./config.yaml when present)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newPredictCommand(opts))
	cmd.AddCommand(newArtifactsCommand(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	return config.Load(path)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newService loads the configured artifacts and builds the prediction service.
// The returned closer releases the artifacts and, for the sqlite source, the store.
func newService(ctx context.Context, cfg *config.Config, metrics *monitoring.Metrics, log *zap.Logger) (*predict.Service, func() error, error) {
	var (
		reader predict.ArtifactReader = predict.FileReader{}
		store  *db.Store
	)
	if cfg.Artifacts.Source == config.SourceSQLite {
		var err error
		store, err = db.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, &predict.ArtifactLoadError{Name: "store", Err: err}
		}
		reader = predict.StoreReader{Store: store}
	}
	closeStore := func() error {
		if store == nil {
			return nil
		}
		return store.Close()
	}

	artifacts, err := predict.LoadArtifacts(ctx, cfg.Artifacts, reader)
	if err != nil {
		return nil, nil, errors.Join(err, closeStore())
	}

	opts := []predict.Option{predict.WithLogger(log), predict.WithCache(cfg.Cache.Size)}
	if metrics != nil {
		opts = append(opts, predict.WithMetrics(metrics))
	}
	service, err := predict.New(artifacts, opts...)
	if err != nil {
		return nil, nil, errors.Join(err, artifacts.Close(), closeStore())
	}

	return service, func() error {
		return errors.Join(artifacts.Close(), closeStore())
	}, nil
}
