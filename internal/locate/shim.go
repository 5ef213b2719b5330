package locate

import (
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// Manager describes one version manager's directory layout and
// environment variable conventions, isolated behind data (not code)
// so ResolveShim stays a pure function of the filesystem and
// environment for every manager.
type Manager struct {
	Name           string
	RootEnvVar     string
	VersionEnvVar  string // "" if the manager has no dedicated env var
	DefaultDirName string // relative to $HOME when RootEnvVar is unset
}

var (
	Pyenv = Manager{Name: "pyenv", RootEnvVar: "PYENV_ROOT", VersionEnvVar: "PYENV_VERSION", DefaultDirName: ".pyenv"}
	Mise  = Manager{Name: "mise", RootEnvVar: "MISE_DATA_DIR", DefaultDirName: filepath.Join(".local", "share", "mise")}
	Asdf  = Manager{Name: "asdf", RootEnvVar: "ASDF_DATA_DIR", DefaultDirName: ".asdf"}
)

// versionFileName is the marker file ResolveShim walks up from cwd
// looking for. All three managers honour it for Python in practice.
const versionFileName = ".python-version"

// Root resolves the manager's data directory: the configured
// environment variable if set, else the platform default under the
// user's home directory.
func (m Manager) Root(env Env) (string, error) {
	if v, ok := env.Lookup(m.RootEnvVar); ok && v != "" {
		return v, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, m.DefaultDirName), nil
}

// ResolveShim determines which real version a manager's shim should
// redirect to: env var -> nearest .python-version -> manager's global
// version file. It never touches the shim script itself, which keeps
// it cheap to test in isolation.
func ResolveShim(m Manager, env Env, cwd string) (version string, ok bool) {
	if m.VersionEnvVar != "" {
		if v, ok := env.Lookup(m.VersionEnvVar); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}

	if v, ok := nearestVersionFile(cwd); ok {
		return v, true
	}

	root, err := m.Root(env)
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(root, "version"))
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", false
	}
	return v, true
}

// nearestVersionFile walks up from cwd looking for a ".python-version"
// file.
func nearestVersionFile(cwd string) (string, bool) {
	if cwd == "" {
		return "", false
	}
	dir := cwd
	for {
		data, err := os.ReadFile(filepath.Join(dir, versionFileName))
		if err == nil {
			v := strings.TrimSpace(string(data))
			if v != "" {
				return v, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// InterpreterPath computes the path to the real interpreter a shim
// named base would delegate to, once version has been resolved.
func (m Manager) InterpreterPath(root, version, base string) string {
	return filepath.Join(root, "versions", version, "bin", base)
}

// ShimsDir is where the manager installs its dispatching shim
// scripts.
func (m Manager) ShimsDir(root string) string {
	return filepath.Join(root, "shims")
}

// VersionsDir is the manager's per-version installation tree.
func (m Manager) VersionsDir(root string) string {
	return filepath.Join(root, "versions")
}

// IsShimPath reports whether path lies inside m's shims directory for
// the given root.
func (m Manager) IsShimPath(path, root string) bool {
	shims := m.ShimsDir(root)
	rel, err := filepath.Rel(shims, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}

// shimProviderCandidates enumerates both the real per-version
// interpreters (directly probeable) and the manager's shims (resolved
// lazily by the verifier) for the pyenv/mise/asdf providers, which
// differ only in their Manager configuration.
func shimProviderCandidates(m Manager, req Request) ([]string, error) {
	if req.Spec.IsPath() {
		return nil, nil
	}
	names := Basenames(req.Spec)
	if len(names) == 0 {
		return nil, nil
	}

	root, err := m.Root(req.Env)
	if err != nil {
		return nil, &ProviderError{Provider: m.Name, Err: err}
	}

	var candidates []string
	var firstErr error

	versionDirs, err := os.ReadDir(m.VersionsDir(root))
	if err == nil {
		for _, v := range versionDirs {
			bin := filepath.Join(m.VersionsDir(root), v.Name(), "bin")
			found, err := matchingExecutables(bin, names)
			if err != nil {
				if firstErr == nil {
					firstErr = &ProviderError{Provider: m.Name, Err: err}
				}
				continue
			}
			candidates = append(candidates, found...)
		}
	} else if !os.IsNotExist(err) {
		firstErr = &ProviderError{Provider: m.Name, Err: err}
	}

	shimmed, err := matchingExecutables(m.ShimsDir(root), names)
	if err != nil {
		if firstErr == nil {
			firstErr = &ProviderError{Provider: m.Name, Err: err}
		}
	} else {
		candidates = append(candidates, shimmed...)
	}

	return candidates, firstErr
}
