package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Args:  cobra.NoArgs,
		Short: "Print the pyfind version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "pyfind version %s (%s)\n", version, commit)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "pyfind version %s\n", version)
			}
			return nil
		},
	}
}
