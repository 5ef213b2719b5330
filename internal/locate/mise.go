package locate

// MiseProvider enumerates mise's installed-version tree and shims.
type MiseProvider struct{}

func (MiseProvider) Name() string { return Mise.Name }

func (MiseProvider) Candidates(req Request) ([]string, error) {
	return shimProviderCandidates(Mise, req)
}
