package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func renderCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render FILE",
		Short: "Mount a tree and print its markup",
		Long: `Mount the tree described in FILE into an empty container and print
the resulting markup.

Examples:
  vpatch render page.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ht, _, err := mount(o, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ht.markup())
			return nil
		},
	}
}
