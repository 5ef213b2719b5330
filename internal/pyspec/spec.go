// Package pyspec parses Python version specifiers: either a
// structured "[impl][version][t][-arch][-machine]" token or a
// comma-separated PEP 440-style version-range expression, and decides
// whether a probed interpreter satisfies one.
package pyspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FollowTheProcess/pyfind/internal/pyinfo"
)

// FreeThreaded is the tri-state free-threading constraint a spec may
// carry: a spec that says nothing about it must match both GIL and
// no-GIL builds.
type FreeThreaded int

const (
	FreeThreadedUnspecified FreeThreaded = iota
	FreeThreadedRequired
	FreeThreadedForbidden
)

// Op is a PEP 440-style comparison operator used in a version
// constraint clause.
type Op string

const (
	OpLess       Op = "<"
	OpLessEq     Op = "<="
	OpGreater    Op = ">"
	OpGreaterEq  Op = ">="
	OpEqual      Op = "=="
	OpNotEqual   Op = "!="
	OpCompatible Op = "~="
	OpStrictEq   Op = "==="
)

// Constraint is one clause of a version-range expression, e.g. the
// ">=3.11" in ">=3.11,<3.13".
type Constraint struct {
	Op      Op
	Version Version
}

// Version is a release-segment-only version, as PEP 440 requires for
// the purposes of this grammar (pre-release/post-release segments are
// out of scope).
type Version struct {
	Major    int
	Minor    int
	Micro    int
	HasMinor bool
	HasMicro bool
	Raw      string // the literal text, used for "===" comparisons
}

// PythonSpec is a parsed spec: either a structured token or a
// version-constraint expression, never both.
type PythonSpec struct {
	Implementation string // "cpython" | "pypy" | "graalpy" | "any" | custom, lowercased; "" if unset
	Major          *int
	Minor          *int
	Micro          *int
	FreeThreaded   FreeThreaded
	Architecture   int    // 32, 64, or 0 for unspecified
	Machine        string // lowercased, "" for unspecified
	Path           string // absolute/relative literal path, "" unless this is a path spec

	Constraints []Constraint // non-empty only for version-range specs

	raw string
}

// String returns the original input the spec was parsed from, mostly
// useful for diagnostics.
func (s PythonSpec) String() string {
	return s.raw
}

// IsPath reports whether this spec is a literal filesystem path.
func (s PythonSpec) IsPath() bool {
	return s.Path != ""
}

// IsRange reports whether this spec is a version-constraint
// expression rather than a structured token.
func (s PythonSpec) IsRange() bool {
	return len(s.Constraints) > 0
}

// ParseError reports a malformed spec, locating the offending
// substring so callers can produce a useful message.
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid python spec %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

var (
	rangeChars    = regexp.MustCompile(`[<>=!~,]`)
	implLetters   = regexp.MustCompile(`^[a-z]+`)
	versionDigits = regexp.MustCompile(`^\d+(\.\d+){0,2}`)
	machineRe     = regexp.MustCompile(`^[a-z0-9_]+$`)
	constraintRe  = regexp.MustCompile(`^([a-z]+)?(<=|>=|===|==|!=|~=|<|>)(.+)$`)
)

var knownImpls = map[string]string{
	"python": "any",
	"py":     "any",
}

// FromString parses a spec string without touching the filesystem.
func FromString(raw string) (PythonSpec, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: "empty spec"}
	}

	if looksLikePath(trimmed) {
		return PythonSpec{Path: trimmed, raw: raw}, nil
	}

	if rangeChars.MatchString(trimmed) {
		return parseRange(raw, trimmed)
	}

	return parseStructured(raw, trimmed)
}

// looksLikePath reports whether s should be treated as a literal path
// rather than a parsed specifier: a leading /, \, ., or drive-letter
// prefix marks a literal path, with no fields inferred from its text.
func looksLikePath(s string) bool {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "\\") || strings.HasPrefix(s, ".") {
		return true
	}
	if len(s) >= 2 && s[1] == ':' && isASCIILetter(s[0]) {
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func parseStructured(raw, s string) (PythonSpec, error) {
	lower := strings.ToLower(s)
	segments := strings.Split(lower, "-")
	main := segments[0]
	suffixes := segments[1:]

	spec := PythonSpec{raw: raw}

	rest := main
	if m := implLetters.FindString(rest); m != "" {
		rest = rest[len(m):]
		if canon, ok := knownImpls[m]; ok {
			spec.Implementation = canon
		} else {
			spec.Implementation = m
		}
	}

	if m := versionDigits.FindString(rest); m != "" {
		rest = rest[len(m):]
		major, minor, micro, hasMinor, hasMicro, err := decomposeVersion(m)
		if err != nil {
			return PythonSpec{}, &ParseError{Input: raw, Offset: len(s) - len(rest) - len(m), Reason: err.Error()}
		}
		spec.Major = &major
		if hasMinor {
			spec.Minor = &minor
		}
		if hasMicro {
			spec.Micro = &micro
		}
	}

	if rest == "t" {
		if spec.Major == nil {
			return PythonSpec{}, &ParseError{Input: raw, Offset: len(s) - 1, Reason: "free-threaded marker 't' requires a version"}
		}
		spec.FreeThreaded = FreeThreadedRequired
		rest = ""
	}

	if rest != "" {
		return PythonSpec{}, &ParseError{Input: raw, Offset: len(s) - len(rest), Reason: fmt.Sprintf("unrecognised trailing characters %q", rest)}
	}

	if len(suffixes) > 2 {
		return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: "too many '-' separated suffixes"}
	}

	if len(suffixes) > 0 {
		first := suffixes[0]
		if first == "32" || first == "64" {
			arch, _ := strconv.Atoi(first)
			spec.Architecture = arch
			if len(suffixes) == 2 {
				if !machineRe.MatchString(suffixes[1]) {
					return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: fmt.Sprintf("invalid machine tag %q", suffixes[1])}
				}
				spec.Machine = suffixes[1]
			}
		} else {
			if len(suffixes) == 2 {
				return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: fmt.Sprintf("invalid architecture %q: expected 32 or 64", first)}
			}
			if !machineRe.MatchString(first) {
				return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: fmt.Sprintf("invalid machine tag %q", first)}
			}
			spec.Machine = first
		}
	}

	if spec.Implementation == "" && spec.Major == nil && spec.Machine == "" && spec.Architecture == 0 {
		return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: "spec has no recognisable implementation, version, architecture, or machine"}
	}

	return spec, nil
}

// decomposeVersion applies the bare-digit-run decomposition rule: a
// dotted version is split normally, but a bare run of 2+ digits
// starting with '3' or higher is decomposed as major=first digit,
// minor=remaining digits (e.g. "312" -> 3.12, "3100" -> 3.100).
func decomposeVersion(s string) (major, minor, micro int, hasMinor, hasMicro bool, err error) {
	parts := strings.Split(s, ".")
	if len(parts) > 1 {
		major, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, 0, false, false, fmt.Errorf("invalid major version %q", parts[0])
		}
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, false, false, fmt.Errorf("invalid minor version %q", parts[1])
		}
		hasMinor = true
		if len(parts) > 2 {
			micro, err = strconv.Atoi(parts[2])
			if err != nil {
				return 0, 0, 0, false, false, fmt.Errorf("invalid micro version %q", parts[2])
			}
			hasMicro = true
		}
		return major, minor, micro, hasMinor, hasMicro, nil
	}

	// Bare digit run, no dot.
	if len(s) >= 2 && s[0] >= '3' && s[0] <= '9' {
		majorDigit := s[0] - '0'
		minorInt, convErr := strconv.Atoi(s[1:])
		if convErr != nil {
			return 0, 0, 0, false, false, fmt.Errorf("invalid bare version %q", s)
		}
		return int(majorDigit), minorInt, 0, true, false, nil
	}

	major, err = strconv.Atoi(s)
	if err != nil {
		return 0, 0, 0, false, false, fmt.Errorf("invalid version %q", s)
	}
	return major, 0, 0, false, false, nil
}

func parseRange(raw, s string) (PythonSpec, error) {
	clauses := strings.Split(s, ",")
	spec := PythonSpec{raw: raw}

	for idx, clause := range clauses {
		clause = strings.TrimSpace(strings.ToLower(clause))
		m := constraintRe.FindStringSubmatch(clause)
		if m == nil {
			return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: fmt.Sprintf("malformed constraint clause %q", clause)}
		}
		implPrefix, opStr, verStr := m[1], m[2], m[3]

		if implPrefix != "" {
			if idx != 0 {
				return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: "implementation prefix only allowed on the first clause"}
			}
			if canon, ok := knownImpls[implPrefix]; ok {
				spec.Implementation = canon
			} else {
				spec.Implementation = implPrefix
			}
		}

		ver, err := parseVersionSegments(verStr)
		if err != nil {
			return PythonSpec{}, &ParseError{Input: raw, Offset: 0, Reason: err.Error()}
		}

		spec.Constraints = append(spec.Constraints, Constraint{Op: Op(opStr), Version: ver})
	}

	return spec, nil
}

func parseVersionSegments(s string) (Version, error) {
	s = strings.TrimSpace(s)
	v := Version{Raw: s}
	parts := strings.Split(s, ".")
	if len(parts) == 0 || parts[0] == "" {
		return Version{}, fmt.Errorf("empty version in constraint")
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version %q", parts[0])
	}
	v.Major = major

	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return Version{}, fmt.Errorf("invalid minor version %q", parts[1])
		}
		v.Minor = minor
		v.HasMinor = true
	}
	if len(parts) > 2 {
		micro, err := strconv.Atoi(parts[2])
		if err != nil {
			return Version{}, fmt.Errorf("invalid micro version %q", parts[2])
		}
		v.Micro = micro
		v.HasMicro = true
	}
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("version %q has too many segments", s)
	}

	return v, nil
}

// Matches reports whether a probed interpreter satisfies every
// constraint carried by spec. It never touches the filesystem.
func Matches(spec PythonSpec, info pyinfo.InterpreterInfo) bool {
	if spec.IsPath() {
		// A path spec carries no other inferred fields; the literal
		// path provider already restricted the candidate set to
		// exactly this path.
		return true
	}

	if spec.Implementation != "" && spec.Implementation != "any" {
		if spec.Implementation != info.CanonicalImplementation() {
			return false
		}
	}

	if spec.Major != nil && *spec.Major != info.VersionInfo.Major {
		return false
	}
	if spec.Minor != nil && *spec.Minor != info.VersionInfo.Minor {
		return false
	}
	if spec.Micro != nil && *spec.Micro != info.VersionInfo.Micro {
		return false
	}

	switch spec.FreeThreaded {
	case FreeThreadedRequired:
		if !info.FreeThreaded {
			return false
		}
	case FreeThreadedForbidden:
		if info.FreeThreaded {
			return false
		}
	}

	if spec.Architecture != 0 && spec.Architecture != info.Architecture {
		return false
	}

	if spec.Machine != "" && pyinfo.NormalizedMachine(spec.Machine) != pyinfo.NormalizedMachine(info.Machine) {
		return false
	}

	for _, c := range spec.Constraints {
		if !matchesConstraint(c, info) {
			return false
		}
	}

	return true
}

func matchesConstraint(c Constraint, info pyinfo.InterpreterInfo) bool {
	v := info.VersionInfo

	if c.Op == OpStrictEq {
		return strings.TrimSpace(c.Version.Raw) == v.String()
	}

	cmp := compareVersions(v.Major, v.Minor, v.Micro, c.Version)

	switch c.Op {
	case OpLess:
		return cmp < 0
	case OpLessEq:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEq:
		return cmp >= 0
	case OpEqual:
		return equalWithWildcards(v, c.Version)
	case OpNotEqual:
		return !equalWithWildcards(v, c.Version)
	case OpCompatible:
		return matchesCompatible(v, c.Version)
	default:
		return false
	}
}

// compareVersions compares (major, minor, micro) against a
// constraint's version, treating unset constraint segments as 0, as
// PEP 440 ordering requires.
func compareVersions(major, minor, micro int, c Version) int {
	if major != c.Major {
		return sign(major - c.Major)
	}
	cMinor := 0
	if c.HasMinor {
		cMinor = c.Minor
	}
	if minor != cMinor {
		return sign(minor - cMinor)
	}
	cMicro := 0
	if c.HasMicro {
		cMicro = c.Micro
	}
	return sign(micro - cMicro)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// equalWithWildcards implements "==": segments the constraint did not
// specify are wildcards, so "==3.11" matches any 3.11.x.
func equalWithWildcards(v pyinfo.VersionInfo, c Version) bool {
	if v.Major != c.Major {
		return false
	}
	if c.HasMinor && v.Minor != c.Minor {
		return false
	}
	if c.HasMicro && v.Micro != c.Micro {
		return false
	}
	return true
}

// matchesCompatible implements "~=": ~=3.11 means >=3.11,<4.0.0; a
// fully specified ~=3.11.2 means >=3.11.2,<3.12.0.
func matchesCompatible(v pyinfo.VersionInfo, c Version) bool {
	lower := compareVersions(v.Major, v.Minor, v.Micro, c)
	if lower < 0 {
		return false
	}

	var upper Version
	if c.HasMicro {
		upper = Version{Major: c.Major, Minor: c.Minor + 1, HasMinor: true}
	} else {
		upper = Version{Major: c.Major + 1}
	}
	return compareVersions(v.Major, v.Minor, v.Micro, upper) < 0
}
