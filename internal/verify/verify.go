// Package verify runs the bounded subprocess probe that turns a
// candidate executable path into a trusted pyinfo.InterpreterInfo,
// transparently resolving version-manager shims and caching the
// result under a cross-process lock.
package verify

import (
	_ "embed"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/FollowTheProcess/pyfind/internal/cache"
	"github.com/FollowTheProcess/pyfind/internal/locate"
	"github.com/FollowTheProcess/pyfind/internal/pyinfo"
)

//go:embed probe.py
var probeScript string

// defaultTimeout bounds how long a single probe subprocess may run
// before it's killed and the candidate rejected.
const defaultTimeout = 15 * time.Second

// Reason classifies why a candidate was rejected without producing an
// InterpreterInfo.
type Reason string

const (
	ReasonNotFound       Reason = "not_found"
	ReasonProbeFailed    Reason = "probe_failed"
	ReasonShimUnresolved Reason = "shim_unresolved"
	ReasonMalformed      Reason = "malformed_output"
)

// RejectError reports that a candidate was turned away. It is never a
// fatal error for the caller's overall search: discover treats it as
// "try the next candidate".
type RejectError struct {
	Candidate string
	Reason    Reason
	Err       error
}

func (e *RejectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reject %s (%s): %v", e.Candidate, e.Reason, e.Err)
	}
	return fmt.Sprintf("reject %s (%s)", e.Candidate, e.Reason)
}

func (e *RejectError) Unwrap() error { return e.Err }

// Sink receives advisory diagnostics about a verification attempt. It
// is a narrower view of diag.Sink so this package doesn't need to
// import it directly.
type Sink interface {
	Skip(candidate, reason string, err error)
}

type noopSink struct{}

func (noopSink) Skip(candidate, reason string, err error) {}

// Verifier runs candidates through the probe pipeline.
type Verifier struct {
	Cache    cache.Cache
	Sink     Sink
	Timeout  time.Duration
	Managers []locate.Manager
}

// New builds a Verifier with the standard pyenv/mise/asdf shim
// managers and the package default timeout.
func New(c cache.Cache, sink Sink) *Verifier {
	if sink == nil {
		sink = noopSink{}
	}
	return &Verifier{
		Cache:    c,
		Sink:     sink,
		Timeout:  defaultTimeout,
		Managers: []locate.Manager{locate.Pyenv, locate.Mise, locate.Asdf},
	}
}

// Verify resolves shims, checks the cache, and if necessary spawns a
// probe subprocess for candidate, returning its InterpreterInfo.
func (v *Verifier) Verify(ctx context.Context, candidate string, env locate.Env, cwd string) (pyinfo.InterpreterInfo, error) {
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: candidate, Reason: ReasonNotFound, Err: err}
	}

	real, err := v.resolveShim(abs, env, cwd)
	if err != nil {
		return pyinfo.InterpreterInfo{}, err
	}

	fi, err := os.Stat(real)
	if err != nil {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: real, Reason: ReasonNotFound, Err: err}
	}
	if fi.IsDir() {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: real, Reason: ReasonNotFound, Err: errors.New("is a directory")}
	}

	if v.Cache == nil {
		return v.probe(ctx, real, env, fi)
	}

	entry, err := v.Cache.EntryFor(real)
	if err != nil {
		v.Sink.Skip(real, "cache_io_error", err)
		return v.probe(ctx, real, env, fi)
	}

	unlock, err := entry.ScopedLock()
	if err != nil {
		v.Sink.Skip(real, "cache_lock_error", err)
		return v.probe(ctx, real, env, fi)
	}
	defer unlock()

	if info, ok, err := entry.Read(); err == nil && ok {
		return info, nil
	}

	info, err := v.probe(ctx, real, env, fi)
	if err != nil {
		return pyinfo.InterpreterInfo{}, err
	}
	if err := entry.Write(info); err != nil {
		v.Sink.Skip(real, "cache_io_error", err)
	}
	return info, nil
}

// resolveShim returns path unchanged unless it lies inside a known
// version manager's shims directory, in which case it resolves and
// returns the real per-version interpreter the shim would delegate
// to. A shim that can't be resolved is rejected without execution,
// per the requirement that a dangling shim never reaches the probe.
func (v *Verifier) resolveShim(path string, env locate.Env, cwd string) (string, error) {
	for _, m := range v.Managers {
		root, err := m.Root(env)
		if err != nil {
			continue
		}
		if !m.IsShimPath(path, root) {
			continue
		}

		version, ok := locate.ResolveShim(m, env, cwd)
		if !ok {
			return "", &RejectError{Candidate: path, Reason: ReasonShimUnresolved, Err: fmt.Errorf("%s: no active version", m.Name)}
		}

		real := m.InterpreterPath(root, version, filepath.Base(path))
		if _, err := os.Stat(real); err != nil {
			return "", &RejectError{Candidate: path, Reason: ReasonShimUnresolved, Err: fmt.Errorf("%s version %s not installed at %s", m.Name, version, real)}
		}
		return real, nil
	}
	return path, nil
}

// probe spawns the embedded probe script against path and parses its
// JSON document into an InterpreterInfo.
func (v *Verifier) probe(ctx context.Context, path string, env locate.Env, fi os.FileInfo) (pyinfo.InterpreterInfo, error) {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	script, err := os.CreateTemp("", "pyfind-probe-*.py")
	if err != nil {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: path, Reason: ReasonProbeFailed, Err: err}
	}
	defer os.Remove(script.Name())
	if _, err := script.WriteString(probeScript); err != nil {
		script.Close()
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: path, Reason: ReasonProbeFailed, Err: err}
	}
	if err := script.Close(); err != nil {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: path, Reason: ReasonProbeFailed, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, "-S", script.Name())
	cmd.Stdin = nil
	cmd.Env = sanitizeEnv(env)

	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: path, Reason: ReasonProbeFailed, Err: fmt.Errorf("probe timed out after %s", timeout)}
	}
	if err != nil {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: path, Reason: ReasonProbeFailed, Err: err}
	}

	info, err := parseProbeOutput(out)
	if err != nil {
		return pyinfo.InterpreterInfo{}, &RejectError{Candidate: path, Reason: ReasonMalformed, Err: err}
	}

	info.Mtime = fi.ModTime().Unix()
	info.Size = fi.Size()
	return info, nil
}

// probeDoc mirrors the JSON document probe.py prints on stdout.
type probeDoc struct {
	Implementation   string            `json:"implementation"`
	VersionInfo      probeVersionInfo  `json:"version_info"`
	Architecture     int               `json:"architecture"`
	Platform         string            `json:"platform"`
	Machine          string            `json:"machine"`
	FreeThreaded     bool              `json:"free_threaded"`
	Executable       string            `json:"executable"`
	SystemExecutable string            `json:"system_executable"`
	SysconfigVars    map[string]any    `json:"sysconfig_vars"`
	SysconfigPaths   map[string]string `json:"sysconfig_paths"`
}

type probeVersionInfo struct {
	Major        int    `json:"major"`
	Minor        int    `json:"minor"`
	Micro        int    `json:"micro"`
	ReleaseLevel string `json:"releaselevel"`
	Serial       int    `json:"serial"`
}

func parseProbeOutput(out []byte) (pyinfo.InterpreterInfo, error) {
	var doc probeDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return pyinfo.InterpreterInfo{}, fmt.Errorf("decode probe output: %w", err)
	}
	return pyinfo.InterpreterInfo{
		Executable:       doc.Executable,
		SystemExecutable: doc.SystemExecutable,
		Implementation:   pyinfo.DisplayImplementation(doc.Implementation),
		VersionInfo: pyinfo.VersionInfo{
			Major:        doc.VersionInfo.Major,
			Minor:        doc.VersionInfo.Minor,
			Micro:        doc.VersionInfo.Micro,
			ReleaseLevel: pyinfo.ReleaseLevel(doc.VersionInfo.ReleaseLevel),
			Serial:       doc.VersionInfo.Serial,
		},
		Architecture:   doc.Architecture,
		Platform:       doc.Platform,
		Machine:        doc.Machine,
		FreeThreaded:   doc.FreeThreaded,
		SysconfigVars:  doc.SysconfigVars,
		SysconfigPaths: doc.SysconfigPaths,
	}, nil
}

// sanitizeEnv builds the child process environment: a copy of the
// caller-supplied env with the variables that would otherwise distort
// probing results stripped, and the ones needed to keep the probe
// deterministic forced on. Combined with the "-S" flag probe passes
// on the command line, this keeps the probe from touching user site
// packages, a startup script, or an unsafe sys.path entry.
func sanitizeEnv(env locate.Env) []string {
	blocked := map[string]bool{
		"PYTHONSTARTUP":           true,
		"PYTHONINSPECT":           true,
		"PYTHONNOUSERSITE":        true,
		"PYTHONDONTWRITEBYTECODE": true,
		"PYTHONSAFEPATH":          true,
	}
	out := make([]string, 0, len(env)+3)
	for k, val := range env {
		if blocked[k] {
			continue
		}
		out = append(out, k+"="+val)
	}
	out = append(out, "PYTHONNOUSERSITE=1", "PYTHONDONTWRITEBYTECODE=1", "PYTHONSAFEPATH=1")
	return out
}
