package pyspec

import (
	"testing"

	"github.com/FollowTheProcess/pyfind/internal/pyinfo"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func intPtr(i int) *int { return &i }

func TestFromString_Structured(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PythonSpec
		wantErr bool
	}{
		{
			name:  "bare python",
			input: "python",
			want:  PythonSpec{Implementation: "any", raw: "python"},
		},
		{
			name:  "py alias",
			input: "py",
			want:  PythonSpec{Implementation: "any", raw: "py"},
		},
		{
			name:  "exact version",
			input: "python3.12",
			want:  PythonSpec{Implementation: "any", Major: intPtr(3), Minor: intPtr(12), raw: "python3.12"},
		},
		{
			name:  "major only",
			input: "python3",
			want:  PythonSpec{Implementation: "any", Major: intPtr(3), raw: "python3"},
		},
		{
			name:  "pypy exact",
			input: "pypy3.9",
			want:  PythonSpec{Implementation: "pypy", Major: intPtr(3), Minor: intPtr(9), raw: "pypy3.9"},
		},
		{
			name:  "free threaded with arch and machine",
			input: "python3.13t-64-arm64",
			want: PythonSpec{
				Implementation: "any",
				Major:          intPtr(3),
				Minor:          intPtr(13),
				FreeThreaded:   FreeThreadedRequired,
				Architecture:   64,
				Machine:        "arm64",
				raw:            "python3.13t-64-arm64",
			},
		},
		{
			name:  "bare digit decomposition",
			input: "python312",
			want:  PythonSpec{Implementation: "any", Major: intPtr(3), Minor: intPtr(12), raw: "python312"},
		},
		{
			name:  "bare digit decomposition long minor",
			input: "python3100",
			want:  PythonSpec{Implementation: "any", Major: intPtr(3), Minor: intPtr(100), raw: "python3100"},
		},
		{
			name:  "micro version",
			input: "cpython3.11.4",
			want:  PythonSpec{Implementation: "cpython", Major: intPtr(3), Minor: intPtr(11), Micro: intPtr(4), raw: "cpython3.11.4"},
		},
		{
			name:  "t without version is part of the implementation name",
			input: "pypyt",
			want:  PythonSpec{Implementation: "pypyt", raw: "pypyt"},
		},
		{
			name:    "bad architecture",
			input:   "python3.12-99-x86_64",
			wantErr: true,
		},
		{
			name:    "empty spec",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromString(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FromString(%q) expected an error, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromString(%q) unexpected error: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(PythonSpec{})); diff != "" {
				t.Errorf("FromString(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestFromString_Path(t *testing.T) {
	tests := []string{
		"/opt/py/bin/python3",
		"./venv/bin/python",
		`C:\Python312\python.exe`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := FromString(in)
			if err != nil {
				t.Fatalf("FromString(%q) unexpected error: %v", in, err)
			}
			if !got.IsPath() {
				t.Errorf("FromString(%q) should be a path spec", in)
			}
			if got.Path != in {
				t.Errorf("FromString(%q).Path = %q, want %q", in, got.Path, in)
			}
		})
	}
}

func TestFromString_Range(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Constraint
		impl  string
	}{
		{
			name:  "simple range",
			input: ">=3.11,<3.13",
			want: []Constraint{
				{Op: OpGreaterEq, Version: Version{Major: 3, Minor: 11, HasMinor: true, Raw: "3.11"}},
				{Op: OpLess, Version: Version{Major: 3, Minor: 13, HasMinor: true, Raw: "3.13"}},
			},
		},
		{
			name:  "implementation pinned",
			input: "cpython>=3.11",
			impl:  "cpython",
			want: []Constraint{
				{Op: OpGreaterEq, Version: Version{Major: 3, Minor: 11, HasMinor: true, Raw: "3.11"}},
			},
		},
		{
			name:  "compatible release",
			input: "~=3.11.2",
			want: []Constraint{
				{Op: OpCompatible, Version: Version{Major: 3, Minor: 11, Micro: 2, HasMinor: true, HasMicro: true, Raw: "3.11.2"}},
			},
		},
		{
			name:  "strict equality",
			input: "===3.11.4",
			want: []Constraint{
				{Op: OpStrictEq, Version: Version{Major: 3, Minor: 11, Micro: 4, HasMinor: true, HasMicro: true, Raw: "3.11.4"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromString(tt.input)
			if err != nil {
				t.Fatalf("FromString(%q) unexpected error: %v", tt.input, err)
			}
			if !got.IsRange() {
				t.Errorf("FromString(%q) should be a range spec", tt.input)
			}
			if got.Implementation != tt.impl {
				t.Errorf("FromString(%q).Implementation = %q, want %q", tt.input, got.Implementation, tt.impl)
			}
			if diff := cmp.Diff(tt.want, got.Constraints, cmpopts.IgnoreFields(Version{}, "Raw")); diff != "" {
				t.Errorf("FromString(%q) constraints mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func fixture(major, minor, micro int, impl, machine string, arch int, ft bool) pyinfo.InterpreterInfo {
	return pyinfo.InterpreterInfo{
		Executable:     "/usr/bin/" + impl,
		Implementation: impl,
		VersionInfo: pyinfo.VersionInfo{
			Major: major, Minor: minor, Micro: micro, ReleaseLevel: pyinfo.ReleaseFinal,
		},
		Architecture: arch,
		Machine:      machine,
		FreeThreaded: ft,
		Platform:     "linux",
	}
}

func TestMatches(t *testing.T) {
	cpython312 := fixture(3, 12, 1, "CPython", "x86_64", 64, false)
	cpython313t := fixture(3, 13, 0, "CPython", "arm64", 64, true)
	pypy39 := fixture(3, 9, 0, "PyPy", "x86_64", 64, false)

	tests := []struct {
		name string
		spec string
		info pyinfo.InterpreterInfo
		want bool
	}{
		{"exact match", "python3.12", cpython312, true},
		{"exact mismatch minor", "python3.13", cpython312, false},
		{"pypy spec vs cpython", "pypy3.9", cpython312, false},
		{"pypy spec vs pypy", "pypy3.9", pypy39, true},
		{"python alias matches any impl", "python3.9", pypy39, true},
		{"free threaded required matches", "python3.13t", cpython313t, true},
		{"free threaded required rejects gil build", "python3.13t", cpython312, false},
		{"arm64 alias matches aarch64 spec", "python3.13-64-aarch64", cpython313t, true},
		{"range matches", ">=3.11,<3.13", cpython312, true},
		{"range excludes too new", ">=3.11,<3.13", cpython313t, false},
		{"range excludes too old", ">=3.11,<3.13", pypy39, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := FromString(tt.spec)
			if err != nil {
				t.Fatalf("FromString(%q) unexpected error: %v", tt.spec, err)
			}
			if got := Matches(spec, tt.info); got != tt.want {
				t.Errorf("Matches(%q, %v) = %v, want %v", tt.spec, tt.info.Implementation, got, tt.want)
			}
		})
	}
}

// TestMatcherMonotonicity verifies that matching is monotonic: if S2's
// constraints are a superset of S1's, anything satisfying S2 also
// satisfies S1.
func TestMatcherMonotonicity(t *testing.T) {
	info := fixture(3, 12, 1, "CPython", "x86_64", 64, false)

	s1, err := FromString("python3.12")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := FromString("python3.12-64-x86_64")
	if err != nil {
		t.Fatal(err)
	}

	if !Matches(s2, info) {
		t.Fatalf("expected the more specific spec to match the fixture")
	}
	if !Matches(s1, info) {
		t.Fatalf("the weaker spec must also match when the stronger one does")
	}
}
