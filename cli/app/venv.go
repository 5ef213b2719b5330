package app

import (
	"os"
	"path/filepath"
)

// venvHints returns directories to search before $PATH, reflecting
// the priority a shell-level launcher gives an activated or
// project-local virtual environment: an active $VIRTUAL_ENV first,
// then ".venv" in cwd, then "venv" in cwd.
func venvHints(cwd string) []string {
	var hints []string

	if active := os.Getenv("VIRTUAL_ENV"); active != "" {
		hints = append(hints, filepath.Join(active, "bin"))
	}

	for _, name := range []string{".venv", "venv"} {
		dir := filepath.Join(cwd, name, "bin")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			hints = append(hints, dir)
		}
	}

	return hints
}
