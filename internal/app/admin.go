package app

import (
	"context"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/core"
	"aptly-ctl/internal/types"
)

// ListRepos returns the local repos on the service sorted by name.
func (s Service) ListRepos(ctx context.Context) ([]types.RepoInfo, error) {
	repos, err := s.Aptly.ListRepos(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(repos, func(a, b int) bool { return repos[a].Name < repos[b].Name })
	return repos, nil
}

func (s Service) ShowRepo(ctx context.Context, name string) (types.RepoInfo, error) {
	if err := requireRepoName(name); err != nil {
		return types.RepoInfo{}, err
	}
	return s.Aptly.ShowRepo(ctx, name)
}

func (s Service) CreateRepo(ctx context.Context, repo types.RepoInfo) (types.RepoInfo, error) {
	if err := requireRepoName(repo.Name); err != nil {
		return types.RepoInfo{}, err
	}
	created, err := s.Aptly.CreateRepo(ctx, repo)
	if err != nil {
		return types.RepoInfo{}, err
	}
	s.Logger.Info().Str("repo", created.Name).Msg("created local repo")
	return created, nil
}

func (s Service) EditRepo(ctx context.Context, repo types.RepoInfo) (types.RepoInfo, error) {
	if err := requireRepoName(repo.Name); err != nil {
		return types.RepoInfo{}, err
	}
	edited, err := s.Aptly.EditRepo(ctx, repo)
	if err != nil {
		return types.RepoInfo{}, err
	}
	s.Logger.Info().Str("repo", edited.Name).Msg("edited local repo")
	return edited, nil
}

func (s Service) DeleteRepo(ctx context.Context, name string, force bool) error {
	if err := requireRepoName(name); err != nil {
		return err
	}
	if err := s.Aptly.DeleteRepo(ctx, name, force); err != nil {
		return err
	}
	s.Logger.Info().Str("repo", name).Bool("force", force).Msg("deleted local repo")
	return nil
}

// ListPublishes returns the publishes on the service sorted by their
// "[storage:]prefix/distribution" key.
func (s Service) ListPublishes(ctx context.Context) ([]types.PublishTarget, error) {
	publishes, err := s.Aptly.ListPublishes(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(publishes, func(a, b int) bool { return publishes[a].Key() < publishes[b].Key() })
	return publishes, nil
}

// CreatePublish publishes local repos or snapshots under the spec's prefix
// and distribution, signing with the profile configuration resolved for
// that target.
func (s Service) CreatePublish(ctx context.Context, req PublishCreateRequest) (types.PublishTarget, error) {
	target, err := core.ParsePublishSpec(req.Spec)
	if err != nil {
		return types.PublishTarget{}, err
	}
	if req.SourceKind != types.SourceKindLocal && req.SourceKind != types.SourceKindSnapshot {
		return types.PublishTarget{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source kind must be local or snapshot")
	}
	if len(req.Sources) == 0 {
		return types.PublishTarget{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one source is required")
	}
	signing, err := core.ResolveSigning(s.Profile, target)
	if err != nil {
		return types.PublishTarget{}, err
	}
	target.SourceKind = req.SourceKind
	target.Architectures = req.Architectures
	target.Label = req.Label
	target.Origin = req.Origin
	for _, source := range req.Sources {
		target.Sources = append(target.Sources, source.Name)
	}
	created, err := s.Aptly.CreatePublish(ctx, target, req.Sources, req.ForceOverwrite, signing)
	if err != nil {
		return types.PublishTarget{}, err
	}
	s.Logger.Info().Str("publish", created.Key()).Msg("created publish")
	return created, nil
}

// UpdatePublish re-publishes the target named by the spec from its current
// sources, signing with the profile configuration resolved for it.
func (s Service) UpdatePublish(ctx context.Context, spec string) (types.PublishTarget, error) {
	target, err := core.ParsePublishSpec(spec)
	if err != nil {
		return types.PublishTarget{}, err
	}
	signing, err := core.ResolveSigning(s.Profile, target)
	if err != nil {
		return types.PublishTarget{}, err
	}
	if err := s.Aptly.RefreshPublish(ctx, target, signing); err != nil {
		return types.PublishTarget{}, err
	}
	s.Logger.Info().Str("publish", target.Key()).Msg("updated publish")
	return target, nil
}

func (s Service) DropPublish(ctx context.Context, spec string, force bool) error {
	target, err := core.ParsePublishSpec(spec)
	if err != nil {
		return err
	}
	if err := s.Aptly.DropPublish(ctx, target, force); err != nil {
		return err
	}
	s.Logger.Info().Str("publish", target.Key()).Bool("force", force).Msg("dropped publish")
	return nil
}

func requireRepoName(name string) error {
	if name == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repo name must not be empty")
	}
	return nil
}
