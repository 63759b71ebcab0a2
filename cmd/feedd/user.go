package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var image string
	add := &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Create a user and print its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.service().CreateUser(cmd.Context(), args[0], args[1], image)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&image, "image", "", "profile image URL")

	cmd.AddCommand(add)
	return cmd
}
