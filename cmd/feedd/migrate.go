package main

import (
	"fmt"

	"github.com/goliatone/go-feed-cache/social"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := social.CreateSchema(cmd.Context(), a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
