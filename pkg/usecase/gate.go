package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
	"github.com/m-mizutani/metgate/pkg/domain/model"
)

type gateUseCase struct {
	githubClient interfaces.GitHubClient
	store        interfaces.Store
}

// NewGate creates a new instance of GateUseCase
func NewGate(githubClient interfaces.GitHubClient, store interfaces.Store) interfaces.GateUseCase {
	return &gateUseCase{
		githubClient: githubClient,
		store:        store,
	}
}

// Run executes the release gate for a single commit: resolve the manifest
// version at the head commit and at its parent, compare them as opaque
// strings, and publish a tagged release when they differ.
func (uc *gateUseCase) Run(ctx context.Context, input *model.GateInput) (*model.GateResult, error) {
	logger := ctxlog.From(ctx)

	logger.Info("Running release gate",
		"owner", input.Owner,
		"repo", input.Repo,
		"commit_sha", input.CommitSHA,
		"manifest", input.ManifestPath,
	)

	// Failure to resolve the previous version is soft: the run continues
	// with an empty value and takes the initial-release path below.
	prevVersion := uc.resolvePreviousVersion(ctx, input)

	// The head manifest is expected to exist; failure here aborts the run.
	currData, err := uc.githubClient.GetFileContent(ctx, input.Owner, input.Repo, input.ManifestPath, input.CommitSHA)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest at head commit",
			goerr.V("commit_sha", input.CommitSHA))
	}

	manifest, err := model.ParseManifest(currData)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest at head commit",
			goerr.V("commit_sha", input.CommitSHA))
	}
	currVersion := manifest.Version

	if prevVersion == currVersion {
		logger.Info("Manifest version unchanged, skipping release",
			"version", currVersion,
		)
		result := &model.GateResult{
			Decision:    model.DecisionSkipped,
			PrevVersion: prevVersion,
			CurrVersion: currVersion,
		}
		uc.record(ctx, input, result)
		return result, nil
	}

	tag := "v" + currVersion
	var body string
	if prevVersion == "" {
		// Decided behavior for an unresolved previous version: treat the
		// run as the first release of this manifest.
		logger.Info("No previous version resolved, creating initial release",
			"version", currVersion,
		)
		body = fmt.Sprintf("Initial release of version %s", currVersion)
	} else {
		body = fmt.Sprintf("Version changed from %s to %s", prevVersion, currVersion)
	}

	release := &github.RepositoryRelease{
		TagName:         github.Ptr(tag),
		Name:            github.Ptr(tag),
		Body:            github.Ptr(body),
		TargetCommitish: github.Ptr(input.CommitSHA),
		Draft:           github.Ptr(false),
		Prerelease:      github.Ptr(false),
	}

	created, err := uc.githubClient.CreateRelease(ctx, input.Owner, input.Repo, release)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("tag", tag))
	}

	logger.Info("Created release",
		"tag", tag,
		"prev_version", prevVersion,
		"curr_version", currVersion,
		"url", created.GetHTMLURL(),
	)

	result := &model.GateResult{
		Decision:    model.DecisionReleased,
		PrevVersion: prevVersion,
		CurrVersion: currVersion,
		Tag:         tag,
		ReleaseURL:  created.GetHTMLURL(),
	}
	uc.record(ctx, input, result)
	return result, nil
}

// resolvePreviousVersion reads the manifest version at the parent of the
// head commit. Every failure mode here (no parent, missing file, malformed
// manifest) resolves to an empty string.
func (uc *gateUseCase) resolvePreviousVersion(ctx context.Context, input *model.GateInput) string {
	logger := ctxlog.From(ctx)

	parentSHA, err := uc.githubClient.GetParentSHA(ctx, input.Owner, input.Repo, input.CommitSHA)
	if err != nil {
		logger.Warn("Failed to resolve parent commit",
			"error", err,
			"commit_sha", input.CommitSHA,
		)
		return ""
	}
	if parentSHA == "" {
		logger.Info("Head commit has no parent", "commit_sha", input.CommitSHA)
		return ""
	}

	data, err := uc.githubClient.GetFileContent(ctx, input.Owner, input.Repo, input.ManifestPath, parentSHA)
	if err != nil {
		logger.Warn("Failed to read manifest at parent commit",
			"error", err,
			"parent_sha", parentSHA,
		)
		return ""
	}

	manifest, err := model.ParseManifest(data)
	if err != nil {
		logger.Warn("Failed to parse manifest at parent commit",
			"error", err,
			"parent_sha", parentSHA,
		)
		return ""
	}

	return manifest.Version
}

// record appends the gate run to the audit log. Audit failures are logged
// and never fail the run itself.
func (uc *gateUseCase) record(ctx context.Context, input *model.GateInput, result *model.GateResult) {
	run := &model.GateRun{
		ID:          uuid.NewString(),
		Owner:       input.Owner,
		Repo:        input.Repo,
		CommitSHA:   input.CommitSHA,
		PrevVersion: result.PrevVersion,
		CurrVersion: result.CurrVersion,
		Released:    result.Decision == model.DecisionReleased,
		Tag:         result.Tag,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.store.SaveGateRun(ctx, run); err != nil {
		ctxlog.From(ctx).Warn("Failed to record gate run",
			"error", err,
			"owner", input.Owner,
			"repo", input.Repo,
		)
	}
}
