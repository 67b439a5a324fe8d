package cmd

import (
	"github.com/spf13/cobra"
)

func newDescribeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <artifact>",
		Short: "List the handlers exported by a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, release, err := loadModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer release()

			return NewPrinter(cmd.OutOrStdout(), root.output).PrintManifest(mod.Manifest())
		},
	}
}
