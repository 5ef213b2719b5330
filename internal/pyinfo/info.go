// Package pyinfo defines the canonical, serializable description of a
// probed Python interpreter.
package pyinfo

import (
	"fmt"
	"strings"
)

// SchemaVersion is the current on-disk record schema. Incrementing it
// invalidates every prior cache entry without requiring a migration.
const SchemaVersion = 4

// ReleaseLevel is a CPython-style release level.
type ReleaseLevel string

const (
	ReleaseAlpha     ReleaseLevel = "alpha"
	ReleaseBeta      ReleaseLevel = "beta"
	ReleaseCandidate ReleaseLevel = "candidate"
	ReleaseFinal     ReleaseLevel = "final"
)

// VersionInfo mirrors CPython's sys.version_info five-tuple.
type VersionInfo struct {
	Major        int          `json:"major"`
	Minor        int          `json:"minor"`
	Micro        int          `json:"micro"`
	ReleaseLevel ReleaseLevel `json:"release_level"`
	Serial       int          `json:"serial"`
}

// String renders "major.minor.micro", the form used by "===" spec
// comparisons and log output.
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// InterpreterInfo is the immutable metadata record produced by probing
// a candidate executable. It is the leaf data type of the whole
// discovery engine: the matcher reads it, the cache stores it, nothing
// downstream mutates it.
type InterpreterInfo struct {
	Executable       string            `json:"executable"`
	SystemExecutable string            `json:"system_executable"`
	Implementation   string            `json:"implementation"`
	VersionInfo      VersionInfo       `json:"version_info"`
	Architecture     int               `json:"architecture"`
	Platform         string            `json:"platform"`
	Machine          string            `json:"machine"`
	FreeThreaded     bool              `json:"free_threaded"`
	SysconfigVars    map[string]any    `json:"sysconfig_vars"`
	SysconfigPaths   map[string]string `json:"sysconfig_paths"`
	Mtime            int64             `json:"mtime"`
	Size             int64             `json:"size"`
}

// CanonicalImplementation lowercases the implementation name for
// case-insensitive comparison while leaving the display value in
// Implementation untouched.
func (i InterpreterInfo) CanonicalImplementation() string {
	return strings.ToLower(i.Implementation)
}

// displayImplementations maps the lowercase names sys.implementation.name
// self-reports to their canonical display casing. Names with no entry
// here (a custom or unrecognised implementation) are title-cased as a
// best effort.
var displayImplementations = map[string]string{
	"cpython":    "CPython",
	"pypy":       "PyPy",
	"graalpy":    "GraalPy",
	"ironpython": "IronPython",
	"jython":     "Jython",
}

// DisplayImplementation renders name (as self-reported by an
// interpreter, lowercase) in its canonical display casing, e.g.
// "cpython" -> "CPython".
func DisplayImplementation(name string) string {
	if display, ok := displayImplementations[strings.ToLower(name)]; ok {
		return display
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// NormalizedMachine aliases equivalent machine names so "arm64" and
// "aarch64" compare equal.
func NormalizedMachine(machine string) string {
	switch strings.ToLower(machine) {
	case "arm64", "aarch64":
		return "aarch64"
	default:
		return strings.ToLower(machine)
	}
}

// Equal reports whether two records are structurally identical,
// including the cache-validity fields. The implementation is compared
// case-insensitively and machine names through NormalizedMachine.
func (i InterpreterInfo) Equal(other InterpreterInfo) bool {
	if i.Executable != other.Executable ||
		i.SystemExecutable != other.SystemExecutable ||
		i.CanonicalImplementation() != other.CanonicalImplementation() ||
		i.VersionInfo != other.VersionInfo ||
		i.Architecture != other.Architecture ||
		i.Platform != other.Platform ||
		NormalizedMachine(i.Machine) != NormalizedMachine(other.Machine) ||
		i.FreeThreaded != other.FreeThreaded ||
		i.Mtime != other.Mtime ||
		i.Size != other.Size {
		return false
	}
	if len(i.SysconfigPaths) != len(other.SysconfigPaths) {
		return false
	}
	for k, v := range i.SysconfigPaths {
		if other.SysconfigPaths[k] != v {
			return false
		}
	}
	if len(i.SysconfigVars) != len(other.SysconfigVars) {
		return false
	}
	for k, v := range i.SysconfigVars {
		if fmt.Sprint(other.SysconfigVars[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
