package locate

import (
	"os"
	"path/filepath"
)

// PathProvider searches $PATH for candidates, generalizing a
// bare-"python"-prefix PATH scan into the full basename-pattern rule
// every provider here shares.
type PathProvider struct{}

func (PathProvider) Name() string { return "path" }

func (p PathProvider) Candidates(req Request) ([]string, error) {
	if req.Spec.IsPath() {
		return nil, nil
	}

	names := Basenames(req.Spec)
	if len(names) == 0 {
		return nil, nil
	}

	dirs := SplitPath(req.Env.Get("PATH"))

	seen := make(map[string]bool)
	var candidates []string
	var firstErr error

	for _, dir := range dirs {
		found, err := matchingExecutables(dir, names)
		if err != nil {
			if firstErr == nil {
				firstErr = &ProviderError{Provider: "path", Err: err}
			}
			continue
		}
		for _, f := range found {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			candidates = append(candidates, abs)
		}
	}

	return candidates, firstErr
}

// SplitPath splits a $PATH-style string on the OS list separator,
// mapping an empty element to "." per Unix shell semantics.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	dirs := []string{}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		dirs = append(dirs, dir)
	}
	return dirs
}
