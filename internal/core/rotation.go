package core

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/types"
)

// Rotation partitions a package listing into the newest entries per
// (name, arch) group and the surplus left over.
type Rotation struct {
	Retained []types.PackageRef
	Surplus  []types.PackageRef
}

// Rotate keeps the highest `keep` versions of every (name, arch) group and
// marks everything else as surplus. Ties between identical versions keep
// their original relative order, and the surplus is emitted in original
// input order so downstream removals see a stable sequence.
func Rotate(refs []types.PackageRef, keep int) (Rotation, error) {
	if keep < 0 {
		return Rotation{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("keep count must not be negative, got %d", keep))
	}

	parsed := make([]Version, len(refs))
	for i, ref := range refs {
		version, err := ParseVersion(ref.Version)
		if err != nil {
			return Rotation{}, err
		}
		parsed[i] = version
	}

	grouped := map[string][]int{}
	var groupOrder []string
	for i, ref := range refs {
		key := ref.Name + "\x00" + ref.Arch
		if _, ok := grouped[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	retainedSet := map[int]struct{}{}
	var retained []types.PackageRef
	for _, key := range groupOrder {
		indices := append([]int(nil), grouped[key]...)
		sort.SliceStable(indices, func(a, b int) bool {
			return parsed[indices[a]].Compare(parsed[indices[b]]) > 0
		})
		limit := keep
		if limit > len(indices) {
			limit = len(indices)
		}
		for _, idx := range indices[:limit] {
			retainedSet[idx] = struct{}{}
			retained = append(retained, refs[idx])
		}
	}

	var surplus []types.PackageRef
	for i, ref := range refs {
		if _, ok := retainedSet[i]; !ok {
			surplus = append(surplus, ref)
		}
	}
	return Rotation{Retained: retained, Surplus: surplus}, nil
}
