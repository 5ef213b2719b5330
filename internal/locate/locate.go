// Package locate implements an ordered enumeration of candidate
// executable paths, pulled from system PATH, OS registry entries,
// version-manager installation trees and shim directories, and
// standalone toolchain caches.
//
// Providers never execute a candidate; that is the verifier's job.
package locate

import (
	"os"
	"strings"

	"github.com/FollowTheProcess/pyfind/internal/pyspec"
)

// Env is a caller-supplied view of environment variables, decoupled
// from os.Environ so discovery stays testable and avoids global
// mutable state: every provider receives its environment explicitly.
type Env map[string]string

// Lookup mirrors os.LookupEnv.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Get returns the value, or "" if unset.
func (e Env) Get(key string) string {
	return e[key]
}

// FromOS snapshots the current process environment.
func FromOS() Env {
	env := Env{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Request bundles everything a provider needs to enumerate
// candidates for one parsed spec.
type Request struct {
	Spec  pyspec.PythonSpec
	Hints []string // directories supplied by the caller, tried before PATH
	Env   Env
	CWD   string
}

// ProviderError is a provider's own enumeration error (permission
// denied, unreadable registry hive): it never aborts discovery, the
// driver routes it to the diagnostics sink and moves on.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider enumerates candidate paths for req; a relative hint
// directory or a relative literal path with no CWD yields a relative
// candidate, which the verifier absolutizes. Errors
// returned alongside a partial candidate list are ProviderErrors; the
// caller should still use whatever candidates were produced.
type Provider interface {
	Name() string
	Candidates(req Request) ([]string, error)
}

// Providers returns every location provider in fixed enumeration
// order: literal path, hints, current process, registry (a no-op on
// non-Windows builds), PATH, version-manager shims (pyenv, mise,
// asdf), then the uv standalone toolchain cache.
func Providers() []Provider {
	return []Provider{
		LiteralPathProvider{},
		HintsProvider{},
		CurrentProcessProvider{},
		RegistryProvider{},
		PathProvider{},
		PyenvProvider{},
		MiseProvider{},
		AsdfProvider{},
		UVProvider{},
	}
}
