package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-feed-cache/internal/httpapi"
	"github.com/goliatone/go-feed-cache/social"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API on the configured address.

Example:
  feedd serve --config feedd.toml
  feedd serve --addr :9090 --migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate {
				if err := social.CreateSchema(ctx, a.db); err != nil {
					return err
				}
			}

			cfg := a.config.HTTP
			if addr != "" {
				cfg.Addr = addr
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			server := httpapi.NewServer(a.service(), cfg,
				httpapi.WithLogger(a.logger.Named("http")),
				httpapi.WithGatherer(registry),
			)
			a.logger.Info("starting feedd", zap.String("addr", cfg.Addr), zap.String("driver", a.config.Database.Driver))
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema before serving")
	return cmd
}
