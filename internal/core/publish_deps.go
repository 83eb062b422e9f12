package core

import "aptly-ctl/internal/types"

// FindDependents returns the publishes whose source list contains the
// given local repository, preserving the input order. Only local-sourced
// publishes qualify; snapshot-based publishes do not track repo contents
// directly. An empty result is valid.
func FindDependents(repoName string, publishes []types.PublishTarget) []types.PublishTarget {
	var dependents []types.PublishTarget
	for _, publish := range publishes {
		if publish.SourceKind != "" && publish.SourceKind != types.SourceKindLocal {
			continue
		}
		for _, source := range publish.Sources {
			if source == repoName {
				dependents = append(dependents, publish)
				break
			}
		}
	}
	return dependents
}
