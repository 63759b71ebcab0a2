package main

import (
	"context"

	"github.com/goliatone/go-feed-cache/internal/config"
	"github.com/goliatone/go-feed-cache/internal/database"
	"github.com/goliatone/go-feed-cache/internal/logging"
	"github.com/goliatone/go-feed-cache/social"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "feedd",
		Short:         "Feed API server",
		Long:          "feedd serves the posts, profiles and follows of the feed over HTTP and prerenders public profile pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newUserCommand(opts),
		newPrerenderCommand(opts),
	)
	return cmd
}

// app is what every command runs on.
type app struct {
	config config.Config
	logger *zap.Logger
	db     *bun.DB
}

// setup loads the configuration, builds the logger and opens the database.
func (o *rootOptions) setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database, logger.Named("db"))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &app{config: cfg, logger: logger, db: db}, nil
}

func (a *app) service() *social.Service {
	return social.NewService(a.db, social.WithLogger(a.logger.Named("social")))
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
