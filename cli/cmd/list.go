package cmd

import (
	"github.com/FollowTheProcess/pyfind/cli/app"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func buildListCmd(application *app.App, hints *[]string) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List every python interpreter pyfind can find.",
		Long: heredoc.Doc(`

		List every python interpreter pyfind can find.

		Walks every location provider pyfind knows about and reports back
		each interpreter found, its implementation, its version, and its path.
		`),
		Example: heredoc.Doc(`

		$ pyfind list
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return application.List(cmd.Context(), *hints)
		},
	}

	return listCmd
}
