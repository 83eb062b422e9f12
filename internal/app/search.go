package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/core"
	"aptly-ctl/internal/types"
)

// RunSearch lists packages matching the queries across the given repos
// (all repos when none are named) and optionally computes the rotation
// partition. Search never mutates the remote service.
func (s Service) RunSearch(ctx context.Context, req SearchRequest) (SearchResult, error) {
	repos := append([]string(nil), req.Repos...)
	if len(repos) == 0 {
		all, err := s.Aptly.ListRepos(ctx)
		if err != nil {
			return SearchResult{}, err
		}
		for _, repo := range all {
			repos = append(repos, repo.Name)
		}
	}
	if len(repos) == 0 {
		return SearchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("the service has no local repos")
	}
	sort.Strings(repos)

	queries := req.Queries
	if len(queries) == 0 {
		queries = []string{""}
	}

	var found []types.PackageRef
	for _, query := range queries {
		effective := query
		if req.NameRegex && query != "" {
			effective = fmt.Sprintf("Name (~ %s)", query)
		}
		for _, repo := range repos {
			keys, err := s.Aptly.SearchPackages(ctx, repo, effective, req.WithDeps)
			if err != nil {
				return SearchResult{}, err
			}
			refs := make([]types.PackageRef, 0, len(keys))
			for _, key := range keys {
				ref, err := core.ParsePackageRef(repo + "/" + key)
				if err != nil {
					return SearchResult{}, err
				}
				refs = append(refs, ref)
			}
			sortRefs(refs)
			found = append(found, refs...)
		}
	}

	result := SearchResult{Packages: found}
	if req.Rotate {
		rotation, err := core.Rotate(found, req.Keep)
		if err != nil {
			return SearchResult{}, err
		}
		result.Rotation = rotation
		result.Rotated = true
	}
	return result, nil
}

// sortRefs orders references by name, arch, version, then hash. Versions
// were validated at parse time, so comparison cannot fail here.
func sortRefs(refs []types.PackageRef) {
	parsed := make([]core.Version, len(refs))
	for i, ref := range refs {
		version, err := core.ParseVersion(ref.Version)
		if err == nil {
			parsed[i] = version
		}
	}
	order := make([]int, len(refs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		left, right := refs[order[a]], refs[order[b]]
		if left.Name != right.Name {
			return left.Name < right.Name
		}
		if left.Arch != right.Arch {
			return left.Arch < right.Arch
		}
		if diff := parsed[order[a]].Compare(parsed[order[b]]); diff != 0 {
			return diff < 0
		}
		return left.Hash < right.Hash
	})
	sorted := make([]types.PackageRef, len(refs))
	for i, idx := range order {
		sorted[i] = refs[idx]
	}
	copy(refs, sorted)
}
