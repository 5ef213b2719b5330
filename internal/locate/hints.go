package locate

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// HintsProvider searches caller-supplied directories before $PATH: for
// each hint directory, it yields every executable file whose basename
// matches the candidate's generated basenames.
//
// This is where virtual-environment priority (VIRTUAL_ENV, .venv,
// venv) gets threaded back in: the CLI layer resolves those
// directories itself and passes them as hints, keeping the core
// engine agnostic to where a hint came from.
type HintsProvider struct{}

func (HintsProvider) Name() string { return "hints" }

func (HintsProvider) Candidates(req Request) ([]string, error) {
	if req.Spec.IsPath() {
		return nil, nil
	}

	names := Basenames(req.Spec)
	if len(names) == 0 {
		return nil, nil
	}

	var candidates []string
	var firstErr error
	for _, dir := range req.Hints {
		found, err := matchingExecutables(dir, names)
		if err != nil {
			if firstErr == nil {
				firstErr = &ProviderError{Provider: "hints", Err: err}
			}
			continue
		}
		candidates = append(candidates, found...)
	}

	return candidates, firstErr
}

// matchingExecutables scans dir for executable files whose basename
// is in names, preserving the order names are given (first match wins
// within a directory). On Windows the execute bits are not checked.
func matchingExecutables(dir string, names []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name()] = true
	}

	var found []string
	for _, name := range names {
		if !present[name] {
			continue
		}
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() || (runtime.GOOS != "windows" && fi.Mode().Perm()&0o111 == 0) {
			continue
		}
		found = append(found, path)
	}
	return found, nil
}
