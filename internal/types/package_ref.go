package types

import "fmt"

// PackageRef identifies one package build in one local repository. The
// identity fields mirror an aptly package key: "[prefix]P<arch> <name>
// <version> <hash>".
type PackageRef struct {
	Repo      string
	KeyPrefix string
	Arch      string
	Name      string
	Version   string
	Hash      string
}

// Key renders the aptly package key. It is only meaningful when Hash is
// set; direct references without a hash have no key yet.
func (r PackageRef) Key() string {
	return fmt.Sprintf("%sP%s %s %s %s", r.KeyPrefix, r.Arch, r.Name, r.Version, r.Hash)
}

// DirRef renders the direct reference form "<name>_<version>_<arch>".
func (r PackageRef) DirRef() string {
	return fmt.Sprintf("%s_%s_%s", r.Name, r.Version, r.Arch)
}

// String renders the most specific reference available, prefixed with the
// repo name when known, in the form accepted back by reference parsing.
func (r PackageRef) String() string {
	ref := r.DirRef()
	if r.Hash != "" {
		ref = r.Key()
	}
	if r.Repo != "" {
		return r.Repo + "/" + ref
	}
	return ref
}
