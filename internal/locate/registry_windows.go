//go:build windows

package locate

import (
	"golang.org/x/sys/windows/registry"
)

// RegistryProvider enumerates PEP 514 registry entries, under HKCU
// then HKLM, each distribution/tag registered under
// "SOFTWARE\Python\<Company>\<Tag>".
type RegistryProvider struct{}

func (RegistryProvider) Name() string { return "registry" }

var registryHives = []registry.Key{registry.CURRENT_USER, registry.LOCAL_MACHINE}

func (RegistryProvider) Candidates(req Request) ([]string, error) {
	if req.Spec.IsPath() {
		return nil, nil
	}

	var candidates []string
	var firstErr error

	for _, hive := range registryHives {
		found, err := candidatesFromHive(hive)
		if err != nil {
			if firstErr == nil {
				firstErr = &ProviderError{Provider: "registry", Err: err}
			}
			continue
		}
		candidates = append(candidates, found...)
	}

	return candidates, firstErr
}

func candidatesFromHive(hive registry.Key) ([]string, error) {
	root, err := registry.OpenKey(hive, `SOFTWARE\Python`, registry.READ)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil, nil
		}
		return nil, err
	}
	defer root.Close()

	companies, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, company := range companies {
		tags, err := companyTags(root, company)
		if err != nil {
			continue
		}
		candidates = append(candidates, tags...)
	}
	return candidates, nil
}

func companyTags(root registry.Key, company string) ([]string, error) {
	companyKey, err := registry.OpenKey(root, company, registry.READ)
	if err != nil {
		return nil, err
	}
	defer companyKey.Close()

	tagNames, err := companyKey.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, tag := range tagNames {
		exe, ok := installPathExecutable(companyKey, tag)
		if ok {
			candidates = append(candidates, exe)
		}
	}
	return candidates, nil
}

func installPathExecutable(companyKey registry.Key, tag string) (string, bool) {
	installPathKey, err := registry.OpenKey(companyKey, tag+`\InstallPath`, registry.READ)
	if err != nil {
		return "", false
	}
	defer installPathKey.Close()

	if exe, _, err := installPathKey.GetStringValue("WindowedExecutablePath"); err == nil && exe != "" {
		return exe, true
	}
	if exe, _, err := installPathKey.GetStringValue("ExecutablePath"); err == nil && exe != "" {
		return exe, true
	}
	return "", false
}
