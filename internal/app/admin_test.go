package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptly-ctl/internal/types"
)

// ---------------------------------------------------------------------------
// repo administration
// ---------------------------------------------------------------------------

func TestListReposSortsByName(t *testing.T) {
	aptly := &fakeAptly{repos: []string{"unstable", "stable", "testing"}}
	svc := testService(aptly)

	repos, err := svc.ListRepos(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.Name)
	}
	assert.Equal(t, []string{"stable", "testing", "unstable"}, names)
}

func TestCreateRepoPassesFieldsThrough(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)

	created, err := svc.CreateRepo(context.Background(), types.RepoInfo{
		Name:                "stable",
		Comment:             "production packages",
		DefaultDistribution: "buster",
		DefaultComponent:    "main",
	})
	require.NoError(t, err)
	assert.Equal(t, "stable", created.Name)
	require.Len(t, aptly.createdRepos, 1)
	assert.Equal(t, "buster", aptly.createdRepos[0].DefaultDistribution)
	assert.Equal(t, "main", aptly.createdRepos[0].DefaultComponent)
}

func TestCreateRepoRejectsEmptyName(t *testing.T) {
	svc := testService(&fakeAptly{})

	_, err := svc.CreateRepo(context.Background(), types.RepoInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo name")
}

func TestEditRepoPropagatesServiceError(t *testing.T) {
	aptly := &fakeAptly{repoErr: map[string]error{"missing": errors.New("repo not found")}}
	svc := testService(aptly)

	_, err := svc.EditRepo(context.Background(), types.RepoInfo{Name: "missing"})
	require.Error(t, err)
	assert.Empty(t, aptly.editedRepos)
}

func TestDeleteRepo(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)

	require.NoError(t, svc.DeleteRepo(context.Background(), "stable", true))
	assert.Equal(t, []string{"stable"}, aptly.deletedRepos)
}

// ---------------------------------------------------------------------------
// publish administration
// ---------------------------------------------------------------------------

func TestListPublishesSortsByKey(t *testing.T) {
	aptly := &fakeAptly{publishes: []types.PublishTarget{
		{Prefix: "debian", Distribution: "buster"},
		{Prefix: "archive", Distribution: "buster"},
		{Distribution: "buster"},
	}}
	svc := testService(aptly)

	publishes, err := svc.ListPublishes(context.Background())
	require.NoError(t, err)
	keys := make([]string, 0, len(publishes))
	for _, publish := range publishes {
		keys = append(keys, publish.Key())
	}
	assert.Equal(t, []string{"./buster", "archive/buster", "debian/buster"}, keys)
}

func TestCreatePublishResolvesSigning(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)

	created, err := svc.CreatePublish(context.Background(), PublishCreateRequest{
		Spec:       "debian/buster",
		SourceKind: types.SourceKindLocal,
		Sources: []types.PublishSource{
			{Name: "stable"},
			{Name: "extras", Component: "contrib"},
		},
		Architectures: []string{"amd64", "arm64"},
		Label:         "Debian",
	})
	require.NoError(t, err)
	assert.Equal(t, "debian/buster", created.Key())

	require.Len(t, aptly.createdPublishes, 1)
	call := aptly.createdPublishes[0]
	assert.Equal(t, types.SourceKindLocal, call.Target.SourceKind)
	assert.Equal(t, []string{"stable", "extras"}, call.Target.Sources)
	assert.Equal(t, []string{"amd64", "arm64"}, call.Target.Architectures)
	assert.Equal(t, "ABCD1234", call.Signing.GpgKey)
	assert.Equal(t, "contrib", call.Sources[1].Component)
}

func TestCreatePublishRejectsBadSourceKind(t *testing.T) {
	svc := testService(&fakeAptly{})

	_, err := svc.CreatePublish(context.Background(), PublishCreateRequest{
		Spec:       "debian/buster",
		SourceKind: "mirror",
		Sources:    []types.PublishSource{{Name: "stable"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source kind")
}

func TestCreatePublishRequiresSources(t *testing.T) {
	svc := testService(&fakeAptly{})

	_, err := svc.CreatePublish(context.Background(), PublishCreateRequest{
		Spec:       "debian/buster",
		SourceKind: types.SourceKindLocal,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one source")
}

func TestCreatePublishRejectsMissingSigningKey(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)
	svc.Profile.Signing = types.SigningConfig{Batch: true}

	_, err := svc.CreatePublish(context.Background(), PublishCreateRequest{
		Spec:       "debian/buster",
		SourceKind: types.SourceKindLocal,
		Sources:    []types.PublishSource{{Name: "stable"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpg key")
	assert.Empty(t, aptly.createdPublishes)
}

func TestUpdatePublishRefreshesWithResolvedSigning(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)

	updated, err := svc.UpdatePublish(context.Background(), "debian/buster")
	require.NoError(t, err)
	assert.Equal(t, "debian/buster", updated.Key())
	require.Len(t, aptly.refreshed, 1)
	assert.Equal(t, "ABCD1234", aptly.refreshed[0].Signing.GpgKey)
}

func TestUpdatePublishRejectsBadSpec(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)

	_, err := svc.UpdatePublish(context.Background(), "debian/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid publish spec")
	assert.Empty(t, aptly.refreshed)
}

func TestDropPublish(t *testing.T) {
	aptly := &fakeAptly{}
	svc := testService(aptly)

	require.NoError(t, svc.DropPublish(context.Background(), "s3:mirror/buster", false))
	assert.Equal(t, []string{"s3:mirror/buster"}, aptly.droppedPublishes)
}

func TestDropPublishPropagatesServiceError(t *testing.T) {
	aptly := &fakeAptly{dropErr: map[string]error{"debian/buster": errors.New("404 not found")}}
	svc := testService(aptly)

	err := svc.DropPublish(context.Background(), "debian/buster", false)
	require.Error(t, err)
	assert.Empty(t, aptly.droppedPublishes)
}
