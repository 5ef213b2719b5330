// Package app implements the CLI functionality; the CLI commands defer
// execution to the exported methods in this package.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/FollowTheProcess/pyfind"
	"github.com/FollowTheProcess/pyfind/internal/diag"
)

// App is the pyfind program: the cobra commands are a thin layer over
// these methods so the actual logic stays testable without spawning a
// subprocess.
type App struct {
	Out    io.Writer
	ErrOut io.Writer
	Diag   diag.Sink // nil is valid; diagSink falls back to discarding
}

// New creates a default App wired to os.Stdout/os.Stderr, logging
// provider errors through logrus, plus skipped candidates when
// PYFIND_DEBUG is set.
func New() *App {
	return &App{Out: os.Stdout, ErrOut: os.Stderr, Diag: diag.NewLogrusFromEnv()}
}

// diagSink returns a.Diag, or a no-op sink if the caller built an App
// by hand without setting one.
func (a *App) diagSink() diag.Sink {
	if a.Diag != nil {
		return a.Diag
	}
	return diag.NoOp{}
}

// defaultSpec is what Find searches for when the user gives no
// specifiers at all: any CPython, PyPy or GraalPy with major version 3.
const defaultSpec = "python3"

// Find resolves rawSpecs (falling back to defaultSpec if empty) in
// order and prints the path of the first matching interpreter.
func (a *App) Find(ctx context.Context, rawSpecs []string, hints []string) error {
	if len(rawSpecs) == 0 {
		rawSpecs = []string{defaultSpec}
	} else if len(rawSpecs) == 1 {
		// A single argument that's actually a script file is resolved
		// via its shebang rather than treated as a literal interpreter
		// path, mirroring how a shell dispatches "./script.py".
		if resolved, ok := shebangSpec(rawSpecs[0]); ok {
			rawSpecs = []string{resolved}
		}
	}

	specs := make([]pyfind.Spec, 0, len(rawSpecs))
	for _, raw := range rawSpecs {
		spec, err := pyfind.FromString(raw)
		if err != nil {
			return fmt.Errorf("invalid specifier %q: %w", raw, err)
		}
		specs = append(specs, spec)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	allHints := append(venvHints(cwd), hints...)

	info, ok, err := pyfind.GetInterpreter(ctx, specs, pyfind.WithHints(allHints...), pyfind.WithDiagnostics(a.diagSink()))
	if err != nil {
		return fmt.Errorf("searching for an interpreter: %w", err)
	}
	if !ok {
		return fmt.Errorf("no python interpreter found matching %s", strings.Join(rawSpecs, ", "))
	}

	fmt.Fprintln(a.Out, info.Executable)
	return nil
}

// List reports the interpreters every location provider finds for the
// catch-all "python" specifier, along with their implementation and
// version. Only executables named exactly "python", "pypy" or
// "graalpy" (plus the OS suffix) are candidates; versioned names such
// as "python3.12" are not listed.
func (a *App) List(ctx context.Context, hints []string) error {
	spec, err := pyfind.FromString("python")
	if err != nil {
		return fmt.Errorf("building the catch-all specifier: %w", err)
	}

	found, err := pyfind.ListInterpreters(ctx, spec, pyfind.WithHints(hints...), pyfind.WithDiagnostics(a.diagSink()))
	if err != nil {
		return fmt.Errorf("listing interpreters: %w", err)
	}

	if len(found) == 0 {
		fmt.Fprintln(a.Out, "no python interpreters found")
		return nil
	}

	sort.Slice(found, func(i, j int) bool {
		vi, vj := found[i].VersionInfo, found[j].VersionInfo
		if vi.Major != vj.Major {
			return vi.Major > vj.Major
		}
		if vi.Minor != vj.Minor {
			return vi.Minor > vj.Minor
		}
		return vi.Micro > vj.Micro
	})

	for _, info := range found {
		fmt.Fprintf(a.Out, "%-10s %-10s %s\n", info.Implementation, info.VersionInfo.String(), info.Executable)
	}
	return nil
}
