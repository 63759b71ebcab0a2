package main

import (
	"os"

	"github.com/goliatone/go-feed-cache/gateway"
	"github.com/goliatone/go-feed-cache/pkg/di"
	"github.com/goliatone/go-feed-cache/prerender"
	"github.com/spf13/cobra"
)

func newPrerenderCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "prerender <profile-id>",
		Short: "Write the prerendered state of a profile page as JSON",
		Long: `Prefetch a profile with an anonymous viewer and write the page state
a client hydrates its cache from.

Example:
  feedd prerender 0f1c7f0e-3b4e-4a4b-9c55-0d8f7e7a2d11 -o ann.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			container, err := di.NewContainer(a.config.Cache, di.WithLogger(a.logger))
			if err != nil {
				return err
			}

			local := gateway.NewLocal(a.service(), a.config.Feed.PageSize)
			helper := prerender.NewHelper(local, container.NewStore,
				prerender.WithLogger(a.logger.Named("prerender")))

			page, err := helper.ProfilePage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := prerender.Marshal(page)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
