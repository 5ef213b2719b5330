package locate

import (
	"runtime"
	"strconv"

	"github.com/FollowTheProcess/pyfind/internal/pyspec"
)

// knownImplPrefixes lists every implementation prefix basenames are
// generated for when a candidate's implementation is "any" (i.e. the
// "python"/"py" alias).
var knownImplPrefixes = []string{"python", "pypy", "graalpy"}

// Basenames generates the candidate executable basenames for spec, in
// priority order: "impl<major>.<minor>", "impl<major>", "impl", each
// with the OS executable suffix appended, and with a trailing "t"
// inserted after the version for free-threaded specs.
//
// Path specs yield no basenames. A version-range spec carries no
// major/minor fields, so it yields only the bare implementation names
// (every known prefix, or just the pinned implementation); its
// constraints are checked by the matcher after probing, not by
// basename generation.
func Basenames(spec pyspec.PythonSpec) []string {
	if spec.IsPath() {
		return nil
	}

	impls := implPrefixesFor(spec)
	var names []string
	for _, impl := range impls {
		names = append(names, versionedNames(impl, spec)...)
	}
	return names
}

func implPrefixesFor(spec pyspec.PythonSpec) []string {
	switch spec.Implementation {
	case "", "any":
		return knownImplPrefixes
	default:
		return []string{spec.Implementation}
	}
}

// versionedNames generates every fallback rung for impl, most specific
// first: "impl<major>.<minor>", "impl<major>", bare "impl". Rungs for
// fields the spec doesn't carry are simply omitted, but every coarser
// rung is always offered alongside the precise one, so a binary
// merely named e.g. "python3" still turns up as a candidate for a
// "python3.12" request; the verifier+matcher reject anything that
// doesn't actually satisfy the full spec once probed. The
// free-threaded "t" marker is only meaningful on the fully-versioned
// rung, since that's the only name real distributions use for it.
func versionedNames(impl string, spec pyspec.PythonSpec) []string {
	var names []string

	if spec.Major != nil && spec.Minor != nil {
		name := impl + strconv.Itoa(*spec.Major) + "." + strconv.Itoa(*spec.Minor)
		if spec.FreeThreaded == pyspec.FreeThreadedRequired {
			name += "t"
		}
		names = append(names, name)
	}
	if spec.Major != nil {
		names = append(names, impl+strconv.Itoa(*spec.Major))
	}
	names = append(names, impl)

	return applyExeSuffix(names)
}

func applyExeSuffix(names []string) []string {
	if runtime.GOOS != "windows" {
		return names
	}
	suffixed := make([]string, len(names))
	for i, n := range names {
		suffixed[i] = n + ".exe"
	}
	return suffixed
}
