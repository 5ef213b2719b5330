// Package pyfind locates Python interpreters installed on the current
// machine that satisfy a version specifier, the way a shell would
// resolve a command on $PATH, but aware of virtual environments,
// version-manager shims and standalone toolchain caches too.
package pyfind

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/FollowTheProcess/pyfind/internal/cache"
	"github.com/FollowTheProcess/pyfind/internal/diag"
	"github.com/FollowTheProcess/pyfind/internal/discover"
	"github.com/FollowTheProcess/pyfind/internal/locate"
	"github.com/FollowTheProcess/pyfind/internal/pyinfo"
	"github.com/FollowTheProcess/pyfind/internal/pyspec"
	"github.com/FollowTheProcess/pyfind/internal/verify"
)

// defaultPythonEnvVar names a literal interpreter path to use as "the
// system default", standing in for "the interpreter currently
// executing this code" that a native rewrite has no analogue for.
const defaultPythonEnvVar = "PYFIND_DEFAULT_PYTHON"

// InterpreterInfo is the metadata record returned for a matched
// interpreter: its implementation, full version, platform details and
// sysconfig data as reported by the interpreter itself.
type InterpreterInfo = pyinfo.InterpreterInfo

// Spec is a parsed version specifier, as accepted by FromString.
type Spec = pyspec.PythonSpec

// FromString parses a single specifier such as "3.12", "python3.11t",
// ">=3.9,<3.13", "pypy3", or a literal path. See the package
// documentation on pyspec for the full grammar.
func FromString(s string) (Spec, error) {
	return pyspec.FromString(s)
}

// config holds the resolved option state for a GetInterpreter call.
type config struct {
	hints    []string
	env      locate.Env
	cwd      string
	cache    cache.Cache
	cacheSet bool // true once WithCache or WithNoCache has run
	sink     diag.Sink
}

// Option configures GetInterpreter.
type Option func(*config)

// WithHints supplies directories to search before $PATH, e.g. a
// virtual environment's bin directory.
func WithHints(dirs ...string) Option {
	return func(c *config) { c.hints = append(c.hints, dirs...) }
}

// WithEnv overrides the environment variables location providers and
// shim resolution read from. Defaults to the current process
// environment.
func WithEnv(env map[string]string) Option {
	return func(c *config) { c.env = locate.Env(env) }
}

// WithCWD overrides the working directory used to resolve
// ".python-version" files. Defaults to the current process's working
// directory.
func WithCWD(dir string) Option {
	return func(c *config) { c.cwd = dir }
}

// WithCache overrides the probe result cache. Pass a nil Cache (the
// zero value of this option is never needed directly; call
// WithNoCache instead) to disable caching outright.
func WithCache(c cache.Cache) Option {
	return func(cfg *config) {
		cfg.cache = c
		cfg.cacheSet = true
	}
}

// WithNoCache disables the on-disk probe cache, forcing every
// candidate to be re-probed.
func WithNoCache() Option {
	return func(cfg *config) {
		cfg.cache = nil
		cfg.cacheSet = true
	}
}

// WithDiagnostics routes non-fatal skip/error events (a candidate that
// failed to probe, a provider that couldn't read a directory) to
// sink. Defaults to discarding them.
func WithDiagnostics(sink diag.Sink) Option {
	return func(cfg *config) { cfg.sink = sink }
}

func newConfig(opts []Option) (*config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	cfg := &config{
		env:  locate.FromOS(),
		cwd:  cwd,
		sink: diag.NoOp{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.cacheSet {
		diskCache, err := cache.NewDisk("")
		if err != nil {
			return nil, fmt.Errorf("resolve default cache: %w", err)
		}
		cfg.cache = diskCache
	}
	return cfg, nil
}

// GetInterpreter searches, in order, for an interpreter satisfying any
// of specs (the first spec that yields a match wins; within a spec,
// providers are tried in a fixed order: literal path, hints, OS
// registry, $PATH, pyenv/mise/asdf, then uv's toolchain cache). It
// reports (nil, false, nil) if nothing matches and an error only for
// unrecoverable failures such as a default cache that cannot be set up
// or a cancelled context.
func GetInterpreter(ctx context.Context, specs []Spec, opts ...Option) (*InterpreterInfo, bool, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, false, err
	}

	driver := discover.New(cfg.cache, cfg.sink)
	req := discover.Request{
		Specs: specs,
		Hints: cfg.hints,
		Env:   cfg.env,
		CWD:   cfg.cwd,
	}
	return driver.Discover(ctx, req)
}

// ListInterpreters returns every interpreter on the machine matching
// spec, deduplicated by resolved executable path. Unlike
// GetInterpreter it does not stop at the first match, so it's the
// right call for an inventory/listing use case rather than a launch.
func ListInterpreters(ctx context.Context, spec Spec, opts ...Option) ([]InterpreterInfo, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	driver := discover.New(cfg.cache, cfg.sink)
	req := discover.Request{
		Hints: cfg.hints,
		Env:   cfg.env,
		CWD:   cfg.cwd,
	}
	return driver.DiscoverAll(ctx, spec, req)
}

// CurrentSystem probes a configured "default" interpreter: the path
// named by PYFIND_DEFAULT_PYTHON if set, otherwise whatever "python3"
// resolves to through the normal provider pipeline. It's the closest
// a Go rewrite gets to "the interpreter currently running this code".
func CurrentSystem(ctx context.Context, opts ...Option) (*InterpreterInfo, bool, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, false, err
	}

	if def, ok := cfg.env.Lookup(defaultPythonEnvVar); ok && def != "" {
		v := verify.New(cfg.cache, cfg.sink)
		info, err := v.Verify(ctx, def, cfg.env, cfg.cwd)
		if err != nil {
			var rejectErr *verify.RejectError
			if errors.As(err, &rejectErr) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return &info, true, nil
	}

	spec, err := pyspec.FromString("python3")
	if err != nil {
		return nil, false, err
	}
	return GetInterpreter(ctx, []Spec{spec}, opts...)
}
