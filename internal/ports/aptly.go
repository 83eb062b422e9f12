package ports

import (
	"context"

	"aptly-ctl/internal/types"
)

// AptlyPort is the remote repository-management collaborator. All calls
// are transport-level; retries and timeouts live behind the adapter.
type AptlyPort interface {
	ShowRepo(ctx context.Context, name string) (types.RepoInfo, error)
	ListRepos(ctx context.Context) ([]types.RepoInfo, error)
	CreateRepo(ctx context.Context, repo types.RepoInfo) (types.RepoInfo, error)
	EditRepo(ctx context.Context, repo types.RepoInfo) (types.RepoInfo, error)
	DeleteRepo(ctx context.Context, name string, force bool) error

	UploadFiles(ctx context.Context, dir string, paths []string) ([]string, error)
	DeleteUploadDir(ctx context.Context, dir string) error
	AddUploadedFile(ctx context.Context, repo string, dir string, file string, forceReplace bool) (types.AddReport, error)

	AddByKey(ctx context.Context, repo string, keys []string) error
	RemoveByKey(ctx context.Context, repo string, keys []string) error
	SearchPackages(ctx context.Context, repo string, query string, withDeps bool) ([]string, error)

	ListPublishes(ctx context.Context) ([]types.PublishTarget, error)
	CreatePublish(ctx context.Context, target types.PublishTarget, sources []types.PublishSource, forceOverwrite bool, signing types.SigningConfig) (types.PublishTarget, error)
	RefreshPublish(ctx context.Context, target types.PublishTarget, signing types.SigningConfig) error
	DropPublish(ctx context.Context, target types.PublishTarget, force bool) error
}
