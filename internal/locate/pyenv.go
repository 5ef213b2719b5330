package locate

// PyenvProvider enumerates both pyenv's installed-version tree and
// its shims directory. A shim
// candidate is resolved to its real target later, by the verifier,
// using ResolveShim with the Pyenv manager config.
type PyenvProvider struct{}

func (PyenvProvider) Name() string { return Pyenv.Name }

func (PyenvProvider) Candidates(req Request) ([]string, error) {
	return shimProviderCandidates(Pyenv, req)
}
