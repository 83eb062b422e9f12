package ports

import "aptly-ctl/internal/types"

type ProfileSourcePort interface {
	// LoadProfile reads the config file at path (or walks the default
	// search locations when path is empty) and selects one profile by
	// index or name prefix.
	LoadProfile(path string, selector string) (types.Profile, error)
}
