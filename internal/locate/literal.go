package locate

import "path/filepath"

// LiteralPathProvider handles the case where the raw specifier looks
// like a path: it yields exactly one candidate (the path itself,
// absolutized against cwd if relative); otherwise it yields none.
type LiteralPathProvider struct{}

func (LiteralPathProvider) Name() string { return "literal-path" }

func (LiteralPathProvider) Candidates(req Request) ([]string, error) {
	if !req.Spec.IsPath() {
		return nil, nil
	}

	p := req.Spec.Path
	if filepath.IsAbs(p) {
		return []string{p}, nil
	}

	cwd := req.CWD
	if cwd == "" {
		cwd = "."
	}
	return []string{filepath.Join(cwd, p)}, nil
}
