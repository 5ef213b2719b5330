/*
pyfind finds a python interpreter matching a version specifier, the way a
shell resolves a command on $PATH, but aware of virtual environments,
version-manager shims, and standalone toolchain caches too.

It searches, in order:

1) A literal path, if the specifier looks like one
2) Any --hint directories passed on the command line
3) The OS-level registry of installed interpreters (Windows only)
4) $PATH
5) pyenv, mise and asdf shims and version installations
6) uv's standalone toolchain cache

If none of the given specifiers can be satisfied, pyfind exits non-zero
with an error message.
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FollowTheProcess/pyfind/cli/cmd"
	"github.com/fatih/color"
)

func main() {
	root := cmd.BuildRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		title := color.New(color.FgRed).Add(color.Bold)
		msg := color.New(color.FgWhite).Add(color.Bold)
		fmt.Fprintf(os.Stderr, "%s: %s\n", title.Sprint("error"), msg.Sprint(err))
		os.Exit(1)
	}
}
