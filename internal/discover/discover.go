// Package discover wires pyspec, locate and verify together into the
// end-to-end search: for each spec, walk every location provider in
// order, verify each candidate it yields, and return the first one
// that matches.
package discover

import (
	"context"
	"errors"

	"github.com/FollowTheProcess/pyfind/internal/cache"
	"github.com/FollowTheProcess/pyfind/internal/diag"
	"github.com/FollowTheProcess/pyfind/internal/locate"
	"github.com/FollowTheProcess/pyfind/internal/pyinfo"
	"github.com/FollowTheProcess/pyfind/internal/pyspec"
	"github.com/FollowTheProcess/pyfind/internal/verify"
)

// Request bundles everything the driver needs to run a search: one or
// more specs tried in order, optional hint directories searched before
// PATH, and the environment/working directory location providers and
// the verifier's shim resolution read from.
type Request struct {
	Specs []pyspec.PythonSpec
	Hints []string
	Env   locate.Env
	CWD   string
}

// Driver runs discovery against a fixed cache and diagnostics sink,
// reusing both across calls so repeated lookups amortise the on-disk
// cache.
type Driver struct {
	Verifier *verify.Verifier
	Sink     diag.Sink
}

// New builds a Driver backed by c (nil disables caching) and sink
// (nil discards diagnostics).
func New(c cache.Cache, sink diag.Sink) *Driver {
	if sink == nil {
		sink = diag.NoOp{}
	}
	return &Driver{
		Verifier: verify.New(c, sink),
		Sink:     sink,
	}
}

// Discover walks req.Specs in order; for each it walks every location
// provider in the fixed order locate.Providers defines, verifying
// candidates as they're yielded and returning on the first one whose
// probed metadata matches. It returns (nil, false, nil) if no
// candidate, across every spec and provider, satisfies its specifier.
// Provider and verifier errors are routed to the sink and never abort
// the search; ctx cancellation is checked between candidates.
func (d *Driver) Discover(ctx context.Context, req Request) (*pyinfo.InterpreterInfo, bool, error) {
	for _, spec := range req.Specs {
		providerReq := locate.Request{
			Spec:  spec,
			Hints: req.Hints,
			Env:   req.Env,
			CWD:   req.CWD,
		}

		for _, provider := range locate.Providers() {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}

			candidates, err := provider.Candidates(providerReq)
			if err != nil {
				d.Sink.ProviderError(provider.Name(), err)
			}

			for _, candidate := range candidates {
				if err := ctx.Err(); err != nil {
					return nil, false, err
				}

				info, err := d.Verifier.Verify(ctx, candidate, req.Env, req.CWD)
				if err != nil {
					d.recordRejection(candidate, err)
					continue
				}

				if pyspec.Matches(spec, info) {
					found := info
					return &found, true, nil
				}

				d.Sink.Skip(candidate, "version_mismatch", nil)
			}
		}
	}

	return nil, false, nil
}

// DiscoverAll behaves like Discover but, instead of stopping at the
// first match, verifies and matches every candidate for a single
// spec, de-duplicating repeats of the same resolved executable (the
// same interpreter often turns up under more than one provider, e.g.
// both a shim and PATH). Used by listing, where the caller wants the
// full inventory rather than the first hit.
func (d *Driver) DiscoverAll(ctx context.Context, spec pyspec.PythonSpec, req Request) ([]pyinfo.InterpreterInfo, error) {
	providerReq := locate.Request{
		Spec:  spec,
		Hints: req.Hints,
		Env:   req.Env,
		CWD:   req.CWD,
	}

	var found []pyinfo.InterpreterInfo
	seen := make(map[string]bool)

	for _, provider := range locate.Providers() {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		candidates, err := provider.Candidates(providerReq)
		if err != nil {
			d.Sink.ProviderError(provider.Name(), err)
		}

		for _, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				return found, err
			}

			info, err := d.Verifier.Verify(ctx, candidate, req.Env, req.CWD)
			if err != nil {
				d.recordRejection(candidate, err)
				continue
			}
			if seen[info.Executable] {
				continue
			}
			if !pyspec.Matches(spec, info) {
				d.Sink.Skip(candidate, "version_mismatch", nil)
				continue
			}
			seen[info.Executable] = true
			found = append(found, info)
		}
	}

	return found, nil
}

func (d *Driver) recordRejection(candidate string, err error) {
	reason := "probe_failed"
	var rejectErr *verify.RejectError
	if errors.As(err, &rejectErr) {
		reason = string(rejectErr.Reason)
	}
	d.Sink.Skip(candidate, reason, err)
}
