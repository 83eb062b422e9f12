package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/types"
)

// References come in two shapes, optionally prefixed with "<repo>/":
// an aptly key "[<prefix>]P<arch> <name> <version> <hash>" or a direct
// reference "<name>_<version>_<arch>".
var (
	keyPattern    = regexp.MustCompile(`^(\w+?)?P(\w+) (\S+) (\S+) (\w+)$`)
	dirRefPattern = regexp.MustCompile(`^(\S+)_([A-Za-z0-9.+~:-]+)_(\w+)$`)
)

// ParsePackageRef parses a package reference string into a PackageRef,
// validating the embedded version. The repo part is optional.
func ParsePackageRef(reference string) (types.PackageRef, error) {
	repo := ""
	ref := reference
	if idx := strings.IndexByte(reference, '/'); idx >= 0 {
		repo = reference[:idx]
		ref = reference[idx+1:]
	}

	if m := keyPattern.FindStringSubmatch(ref); m != nil {
		if _, err := ParseVersion(m[4]); err != nil {
			return types.PackageRef{}, err
		}
		return types.PackageRef{
			Repo:      repo,
			KeyPrefix: m[1],
			Arch:      m[2],
			Name:      m[3],
			Version:   m[4],
			Hash:      m[5],
		}, nil
	}
	if m := dirRefPattern.FindStringSubmatch(ref); m != nil {
		if _, err := ParseVersion(m[2]); err != nil {
			return types.PackageRef{}, err
		}
		return types.PackageRef{
			Repo:    repo,
			Name:    m[1],
			Version: m[2],
			Arch:    m[3],
		}, nil
	}
	return types.PackageRef{}, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed package reference %q", reference))
}
