// Package cmd implements the pyfind CLI.
package cmd

import (
	"github.com/FollowTheProcess/pyfind/cli/app"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // pyfind version, set at compile time by ldflags
	commit  = ""    // pyfind version's commit hash, set at compile time by ldflags
)

// BuildRootCmd assembles the pyfind root command and its subcommands.
func BuildRootCmd() *cobra.Command {
	application := app.New()
	var hints []string

	rootCmd := &cobra.Command{
		Use:           "pyfind [specifier]...",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Find a python interpreter matching a version specifier.",
		Long: heredoc.Doc(`

		Find a python interpreter matching a version specifier.

		pyfind searches your machine for an interpreter satisfying one or more
		version specifiers, looking in a few different places:

		1) A literal path, if the specifier looks like one
		2) Any directories passed with --hint (e.g. a virtual environment's bin dir)
		3) The OS-level registry of installed interpreters (Windows)
		4) $PATH
		5) pyenv, mise and asdf shims and version installations
		6) uv's standalone toolchain cache

		If none of the given specifiers can be satisfied, pyfind exits non-zero.
		`),
		Example: heredoc.Doc(`

		# Find any python3 on $PATH (the default)
		$ pyfind

		# Find a specific version
		$ pyfind 3.12

		# Try 3.12 first, fall back to any python3
		$ pyfind 3.12 python3

		# Search a virtual environment's bin directory first
		$ pyfind --hint ./.venv/bin 3.11

		# List every interpreter pyfind can find
		$ pyfind list
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return application.Find(cmd.Context(), args, hints)
		},
	}

	rootCmd.PersistentFlags().StringSliceVarP(&hints, "hint", "H", nil, "Directory to search before $PATH (may be repeated)")

	rootCmd.AddCommand(
		buildVersionCmd(),
		buildListCmd(application, &hints),
	)

	return rootCmd
}
