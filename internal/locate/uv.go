package locate

import (
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
)

// UVProvider enumerates directories under UV_PYTHON_INSTALL_DIR (or
// its platform default) looking for
// pre-extracted standalone interpreter trees, e.g.
// "cpython-3.12.1-linux-x86_64-gnu/bin/python3.12".
type UVProvider struct{}

func (UVProvider) Name() string { return "uv" }

func (UVProvider) Candidates(req Request) ([]string, error) {
	if req.Spec.IsPath() {
		return nil, nil
	}

	names := Basenames(req.Spec)
	if len(names) == 0 {
		return nil, nil
	}

	root, err := uvInstallDir(req.Env)
	if err != nil {
		return nil, &ProviderError{Provider: "uv", Err: err}
	}

	trees, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &ProviderError{Provider: "uv", Err: err}
	}

	var candidates []string
	var firstErr error
	for _, tree := range trees {
		if !tree.IsDir() {
			continue
		}
		bin := filepath.Join(root, tree.Name(), "bin")
		if runtime.GOOS == "windows" {
			bin = filepath.Join(root, tree.Name())
		}
		found, err := matchingExecutables(bin, names)
		if err != nil {
			if firstErr == nil {
				firstErr = &ProviderError{Provider: "uv", Err: err}
			}
			continue
		}
		candidates = append(candidates, found...)
	}

	return candidates, firstErr
}

func uvInstallDir(env Env) (string, error) {
	if v, ok := env.Lookup("UV_PYTHON_INSTALL_DIR"); ok && v != "" {
		return v, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "uv", "python"), nil
}
