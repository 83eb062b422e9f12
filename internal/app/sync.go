package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/adapters"
	"aptly-ctl/internal/core"
	"aptly-ctl/internal/types"
)

// RunPut uploads local package files into a holding area, adds them to the
// target repo, and refreshes every publish sourced from that repo. Items
// fail independently; only configuration defects abort the whole command.
func (s Service) RunPut(ctx context.Context, req PutRequest) (types.SyncOutcome, error) {
	assert.NotEmpty(ctx, req.Repo, "repo name must be set")
	if err := core.ValidateProfileSigning(s.Profile); err != nil {
		return types.SyncOutcome{}, err
	}
	if len(req.Artifacts) == 0 {
		return types.SyncOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no packages supplied")
	}
	if _, err := s.Aptly.ShowRepo(ctx, req.Repo); err != nil {
		return types.SyncOutcome{}, err
	}

	dir := fmt.Sprintf("%s_%d", req.Repo, s.now().Unix())
	s.Logger.Info().Str("dir", dir).Int("packages", len(req.Artifacts)).Msg("uploading packages")

	outcome := types.SyncOutcome{}
	staged := s.stageArtifacts(ctx, dir, req.Artifacts)
	anyStaged := false
	for _, item := range staged {
		if item.Err == nil {
			anyStaged = true
			break
		}
	}
	if anyStaged {
		defer func() {
			if err := s.Aptly.DeleteUploadDir(ctx, dir); err != nil {
				s.Logger.Warn().Str("dir", dir).Err(err).Msg("failed to delete upload directory")
			}
		}()
	}

	mutations := 0
	for _, item := range staged {
		if item.Err != nil {
			outcome.Failed = append(outcome.Failed, types.SyncFailure{
				Item:    artifactItem(item.Filename),
				Kind:    failureKindOf(item.Err),
				Message: item.Err.Error(),
			})
			continue
		}
		report, err := s.Aptly.AddUploadedFile(ctx, req.Repo, dir, item.Filename, req.ForceReplace)
		if err != nil {
			outcome.Failed = append(outcome.Failed, types.SyncFailure{
				Item:    artifactItem(item.Filename),
				Kind:    types.FailureKindRemoteCallFailed,
				Message: err.Error(),
			})
			continue
		}
		for _, warning := range report.Warnings {
			s.Logger.Warn().Str("file", item.Filename).Msg(warning)
		}
		for _, removed := range report.Removed {
			s.Logger.Info().Str("removed", removed).Msg("replaced conflicting package")
		}
		if len(report.FailedFiles) > 0 || len(report.Added) == 0 {
			outcome.Failed = append(outcome.Failed, types.SyncFailure{
				Item:    artifactItem(item.Filename),
				Kind:    types.FailureKindRemoteCallFailed,
				Message: "package was not added (already present or rejected)",
			})
			continue
		}
		for _, added := range report.Added {
			dirRef := strings.Fields(added)[0]
			ref, err := core.ParsePackageRef(req.Repo + "/" + dirRef)
			if err != nil {
				outcome.Failed = append(outcome.Failed, types.SyncFailure{
					Item:    artifactItem(item.Filename),
					Kind:    failureKindOf(err),
					Message: err.Error(),
				})
				continue
			}
			ref.Hash = item.Artifact.SHA256
			outcome.Succeeded = append(outcome.Succeeded, packageItem(ref))
			mutations++
			s.Logger.Info().Str("package", ref.String()).Msg("added package")
		}
	}

	if mutations == 0 {
		s.Logger.Warn().Str("repo", req.Repo).Msg("nothing added; skipping publish refresh")
		return outcome, nil
	}
	if err := s.refreshDependents(ctx, []string{req.Repo}, false, &outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// RunRemove deletes the referenced packages from their repos and refreshes
// the publishes of every repo that actually lost a package. Direct
// references without a hash are resolved to full keys first.
func (s Service) RunRemove(ctx context.Context, req RemoveRequest) (types.SyncOutcome, error) {
	if err := core.ValidateProfileSigning(s.Profile); err != nil {
		return types.SyncOutcome{}, err
	}
	if len(req.Refs) == 0 {
		return types.SyncOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no package references supplied")
	}

	var repoOrder []string
	byRepo := map[string][]types.PackageRef{}
	for _, raw := range req.Refs {
		ref, err := s.resolveRef(ctx, raw)
		if err != nil {
			return types.SyncOutcome{}, err
		}
		if _, ok := byRepo[ref.Repo]; !ok {
			repoOrder = append(repoOrder, ref.Repo)
		}
		byRepo[ref.Repo] = append(byRepo[ref.Repo], ref)
	}

	outcome := types.SyncOutcome{}
	var mutatedRepos []string
	for _, repo := range repoOrder {
		mutated := false
		for _, ref := range byRepo[repo] {
			if req.DryRun {
				s.Logger.Info().Str("package", ref.String()).Msg("dry-run: would remove package")
				outcome.Succeeded = append(outcome.Succeeded, packageItem(ref))
				mutated = true
				continue
			}
			if err := s.Aptly.RemoveByKey(ctx, repo, []string{ref.Key()}); err != nil {
				outcome.Failed = append(outcome.Failed, types.SyncFailure{
					Item:    packageItem(ref),
					Kind:    types.FailureKindRemoteCallFailed,
					Message: err.Error(),
				})
				s.Logger.Error().Str("package", ref.String()).Err(err).Msg("failed to remove package")
				continue
			}
			outcome.Succeeded = append(outcome.Succeeded, packageItem(ref))
			mutated = true
			s.Logger.Info().Str("package", ref.String()).Msg("removed package")
		}
		if mutated {
			mutatedRepos = append(mutatedRepos, repo)
		}
	}

	if len(mutatedRepos) == 0 {
		s.Logger.Warn().Msg("nothing removed; skipping publish refresh")
		return outcome, nil
	}
	if err := s.refreshDependents(ctx, mutatedRepos, req.DryRun, &outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// RunCopy copies package keys into the target repo and refreshes the
// target's publishes. The source repos' publishes are never touched.
func (s Service) RunCopy(ctx context.Context, req CopyRequest) (types.SyncOutcome, error) {
	assert.NotEmpty(ctx, req.Target, "target repo name must be set")
	if err := core.ValidateProfileSigning(s.Profile); err != nil {
		return types.SyncOutcome{}, err
	}
	if len(req.Refs) == 0 {
		return types.SyncOutcome{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no package references supplied")
	}

	refs := make([]types.PackageRef, 0, len(req.Refs))
	for _, raw := range req.Refs {
		ref, err := core.ParsePackageRef(trimRef(raw))
		if err != nil {
			return types.SyncOutcome{}, err
		}
		if ref.Hash == "" {
			return types.SyncOutcome{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("reference %q has no hash; a full aptly key is required for copy", raw))
		}
		refs = append(refs, ref)
	}

	outcome := types.SyncOutcome{}
	mutations := 0
	for _, ref := range refs {
		copied := ref
		copied.Repo = req.Target
		if req.DryRun {
			s.Logger.Info().Str("package", copied.String()).Msg("dry-run: would copy package")
			outcome.Succeeded = append(outcome.Succeeded, packageItem(copied))
			mutations++
			continue
		}
		if err := s.Aptly.AddByKey(ctx, req.Target, []string{ref.Key()}); err != nil {
			outcome.Failed = append(outcome.Failed, types.SyncFailure{
				Item:    packageItem(ref),
				Kind:    types.FailureKindRemoteCallFailed,
				Message: err.Error(),
			})
			s.Logger.Error().Str("package", ref.String()).Err(err).Msg("failed to copy package")
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, packageItem(copied))
		mutations++
		s.Logger.Info().Str("package", copied.String()).Msg("copied package")
	}

	if mutations == 0 {
		s.Logger.Warn().Msg("nothing copied; skipping publish refresh")
		return outcome, nil
	}
	if err := s.refreshDependents(ctx, []string{req.Target}, req.DryRun, &outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// refreshDependents resolves the publishes sourced from the given repos
// and refreshes each one with its resolved signing configuration. All
// signing configs are resolved before the first refresh call so a signing
// defect never aborts the run mid-publish.
func (s Service) refreshDependents(ctx context.Context, repos []string, dryRun bool, outcome *types.SyncOutcome) error {
	publishes, err := s.Aptly.ListPublishes(ctx)
	if err != nil {
		return err
	}
	var dependents []types.PublishTarget
	seen := map[string]struct{}{}
	for _, repo := range repos {
		for _, dependent := range core.FindDependents(repo, publishes) {
			if _, ok := seen[dependent.Key()]; ok {
				continue
			}
			seen[dependent.Key()] = struct{}{}
			dependents = append(dependents, dependent)
		}
	}
	if len(dependents) == 0 {
		s.Logger.Info().Strs("repos", repos).Msg("no dependent publishes to refresh")
		return nil
	}

	configs := make([]types.SigningConfig, len(dependents))
	for i, dependent := range dependents {
		config, err := core.ResolveSigning(s.Profile, dependent)
		if err != nil {
			return err
		}
		configs[i] = config
	}

	for i, dependent := range dependents {
		if dryRun {
			s.Logger.Info().Str("publish", dependent.Key()).Msg("dry-run: would refresh publish")
			continue
		}
		if err := s.Aptly.RefreshPublish(ctx, dependent, configs[i]); err != nil {
			outcome.Failed = append(outcome.Failed, types.SyncFailure{
				Item:    publishItem(dependent),
				Kind:    types.FailureKindRemoteCallFailed,
				Message: err.Error(),
			})
			s.Logger.Error().Str("publish", dependent.Key()).Err(err).Msg("failed to refresh publish")
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, publishItem(dependent))
		s.Logger.Info().Str("publish", dependent.Key()).Msg("refreshed publish")
	}
	return nil
}

// resolveRef parses one removal reference and, for direct references
// without a hash, looks up the full key in the reference's repo.
func (s Service) resolveRef(ctx context.Context, raw string) (types.PackageRef, error) {
	ref, err := core.ParsePackageRef(trimRef(raw))
	if err != nil {
		return types.PackageRef{}, err
	}
	if ref.Repo == "" {
		return types.PackageRef{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("reference %q has no repo name", raw))
	}
	if ref.Hash != "" {
		return ref, nil
	}
	keys, err := s.Aptly.SearchPackages(ctx, ref.Repo, ref.DirRef(), false)
	if err != nil {
		return types.PackageRef{}, err
	}
	if len(keys) != 1 {
		return types.PackageRef{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("direct reference %q matched %d packages in repo %q", ref.DirRef(), len(keys), ref.Repo))
	}
	resolved, err := core.ParsePackageRef(ref.Repo + "/" + keys[0])
	if err != nil {
		return types.PackageRef{}, err
	}
	return resolved, nil
}

type stagedArtifact struct {
	Artifact adapters.Artifact
	Filename string
	Err      error
}

// stageArtifacts uploads every artifact through a bounded worker pool.
// Results are indexed by input position so the outcome order never depends
// on upload scheduling.
func (s Service) stageArtifacts(ctx context.Context, dir string, paths []string) []stagedArtifact {
	results := make([]stagedArtifact, len(paths))
	workers := s.Workers
	if workers <= 0 {
		workers = defaultStagingWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results[i] = s.stageOne(ctx, dir, paths[i])
			}
		}()
	}
	for i := range paths {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	return results
}

func (s Service) stageOne(ctx context.Context, dir string, path string) stagedArtifact {
	filename := filepath.Base(path)
	artifact, err := adapters.StatArtifact(path)
	if err != nil {
		return stagedArtifact{Filename: filename, Err: err}
	}
	if _, err := s.Aptly.UploadFiles(ctx, dir, []string{path}); err != nil {
		return stagedArtifact{Filename: filename, Err: err}
	}
	s.Logger.Debug().Str("file", filename).Str("dir", dir).Msg("uploaded package file")
	return stagedArtifact{Artifact: artifact, Filename: filename}
}

func packageItem(ref types.PackageRef) types.SyncItem {
	r := ref
	return types.SyncItem{Package: &r}
}

func publishItem(target types.PublishTarget) types.SyncItem {
	t := target
	return types.SyncItem{Publish: &t}
}

// artifactItem builds the failure item for a local file that never made it
// into the repo; the filename is parsed into a reference when possible.
func artifactItem(filename string) types.SyncItem {
	trimmed := strings.TrimSuffix(filename, ".deb")
	if ref, err := core.ParsePackageRef(trimmed); err == nil {
		return types.SyncItem{Package: &ref}
	}
	ref := types.PackageRef{Name: filename}
	return types.SyncItem{Package: &ref}
}

// failureKindOf classifies an error for outcome reporting.
func failureKindOf(err error) types.FailureKind {
	if errors.Is(err, core.ErrInvalidVersion) {
		return types.FailureKindInvalidVersion
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return types.FailureKindInvalidArgument
	case errbuilder.CodeFailedPrecondition:
		return types.FailureKindMissingSigningKey
	}
	return types.FailureKindRemoteCallFailed
}

func trimRef(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}
