package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"aptly-ctl/internal/core"
	"aptly-ctl/internal/ports"
	"aptly-ctl/internal/types"
)

// ProfileSourceAdapter loads named endpoint profiles from a YAML config
// file and materializes the selected one with validated signing defaults.
type ProfileSourceAdapter struct{}

func NewProfileSourceAdapter() ProfileSourceAdapter {
	return ProfileSourceAdapter{}
}

type profileFile struct {
	Profiles []profileEntry `yaml:"profiles"`
}

type profileEntry struct {
	Name             string                           `yaml:"name"`
	URL              string                           `yaml:"url"`
	Timeout          int                              `yaml:"timeout"`
	Signing          *types.SigningOverride           `yaml:"signing"`
	SigningOverrides map[string]types.SigningOverride `yaml:"signing_overrides"`
}

func (a ProfileSourceAdapter) LoadProfile(path string, selector string) (types.Profile, error) {
	candidates := []string{path}
	failFast := true
	if strings.TrimSpace(path) == "" {
		candidates = defaultConfigPaths()
		failFast = false
	}
	config, source, err := loadFirstConfig(candidates, failFast)
	if err != nil {
		return types.Profile{}, err
	}
	if len(config.Profiles) == 0 {
		return types.Profile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("no profiles configured (config %q)", source))
	}
	entry, err := selectProfile(config.Profiles, selector)
	if err != nil {
		return types.Profile{}, err
	}
	return materializeProfile(entry)
}

// defaultConfigPaths lists the config discovery order: user locations
// first, then system ones.
func defaultConfigPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		for _, name := range []string{"aptly-ctl.yml", "aptly-ctl.yaml", ".aptly-ctl.yml", ".aptly-ctl.yaml"} {
			paths = append(paths, filepath.Join(home, name))
		}
		paths = append(paths,
			filepath.Join(home, ".config", "aptly-ctl.yml"),
			filepath.Join(home, ".config", "aptly-ctl.yaml"),
		)
	}
	paths = append(paths, "/etc/aptly-ctl.yml", "/etc/aptly-ctl.yaml")
	return paths
}

func loadFirstConfig(paths []string, failFast bool) (profileFile, string, error) {
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			if failFast {
				return profileFile{}, "", errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("cannot read config %q", path)).
					WithCause(err)
			}
			continue
		}
		var config profileFile
		if err := yaml.Unmarshal(raw, &config); err != nil {
			return profileFile{}, "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid YAML in config %q", path)).
				WithCause(err)
		}
		return config, path, nil
	}
	return profileFile{}, "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("no config file found in default locations")
}

// selectProfile picks a profile by numeric index or by name prefix. An
// ambiguous prefix is accepted only when it matches one name exactly.
func selectProfile(profiles []profileEntry, selector string) (profileEntry, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return profiles[0], nil
	}
	if index, err := strconv.Atoi(selector); err == nil {
		if index < 0 || index >= len(profiles) {
			return profileEntry{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("there is no profile numbered %d", index))
		}
		return profiles[index], nil
	}
	var matches []profileEntry
	for _, entry := range profiles {
		if strings.HasPrefix(entry.Name, selector) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		return profileEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("cannot find configuration profile %q", selector))
	case 1:
		return matches[0], nil
	default:
		for _, entry := range matches {
			if entry.Name == selector {
				return entry, nil
			}
		}
		return profileEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("profile %q matches more than one configured profile", selector))
	}
}

func materializeProfile(entry profileEntry) (types.Profile, error) {
	if strings.TrimSpace(entry.URL) == "" {
		return types.Profile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("profile %q has no url", entry.Name))
	}
	signing := types.SigningConfig{Batch: true}
	if entry.Signing != nil {
		signing = core.MergeSigning(signing, *entry.Signing)
	}
	// Signing is skipped by default unless a key was configured and skip
	// was not set explicitly.
	if entry.Signing == nil || entry.Signing.Skip == nil {
		signing.Skip = signing.GpgKey == ""
	}
	profile := types.Profile{
		Name:             entry.Name,
		URL:              entry.URL,
		TimeoutSec:       entry.Timeout,
		Signing:          signing,
		SigningOverrides: entry.SigningOverrides,
	}
	if err := core.ValidateProfileSigning(profile); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

var _ ports.ProfileSourcePort = ProfileSourceAdapter{}
