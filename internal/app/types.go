package app

import (
	"aptly-ctl/internal/core"
	"aptly-ctl/internal/types"
)

type PutRequest struct {
	Repo         string
	Artifacts    []string
	ForceReplace bool
}

type RemoveRequest struct {
	Refs   []string
	DryRun bool
}

type CopyRequest struct {
	Target string
	Refs   []string
	DryRun bool
}

type SearchRequest struct {
	Repos     []string
	Queries   []string
	NameRegex bool
	WithDeps  bool
	Rotate    bool
	Keep      int
}

type PublishCreateRequest struct {
	Spec           string
	SourceKind     types.SourceKind
	Sources        []types.PublishSource
	Architectures  []string
	Label          string
	Origin         string
	ForceOverwrite bool
}

type SearchResult struct {
	Packages []types.PackageRef
	Rotation core.Rotation
	Rotated  bool
}
