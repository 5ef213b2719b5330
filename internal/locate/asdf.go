package locate

// AsdfProvider enumerates asdf's installed-version tree and shims.
type AsdfProvider struct{}

func (AsdfProvider) Name() string { return Asdf.Name }

func (AsdfProvider) Candidates(req Request) ([]string, error) {
	return shimProviderCandidates(Asdf, req)
}
