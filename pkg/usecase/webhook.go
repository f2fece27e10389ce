package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
	"github.com/m-mizutani/metgate/pkg/domain/model"
	"github.com/m-mizutani/metgate/pkg/utils/async"
)

type webhookUseCase struct {
	gateUC   interfaces.GateUseCase
	watchCfg *model.WatchConfig
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(gateUC interfaces.GateUseCase, watchCfg *model.WatchConfig) interfaces.WebhookUseCase {
	return &webhookUseCase{
		gateUC:   gateUC,
		watchCfg: watchCfg,
	}
}

// ProcessEvent filters a webhook event down to pushes on a watched branch
// that touch the watched manifest path, and dispatches a gate run for them.
// The gate runs asynchronously so the webhook response does not wait on
// GitHub API calls.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if !event.IsSupportedEvent() {
		logger.Info("Ignoring unsupported event",
			"id", event.ID,
			"type", event.Type,
		)
		return nil
	}

	var push github.PushEvent
	if err := json.Unmarshal(event.RawPayload, &push); err != nil {
		return goerr.Wrap(err, "failed to unmarshal push event")
	}

	target := uc.watchCfg.Lookup(push.GetRepo().GetFullName())
	if target == nil {
		logger.Debug("Push for unwatched repository",
			"repository", push.GetRepo().GetFullName(),
		)
		return nil
	}

	if push.GetRef() != target.BranchRef() {
		logger.Debug("Push to unwatched ref",
			"repository", target.FullName(),
			"ref", push.GetRef(),
		)
		return nil
	}

	if !touchesManifest(&push, target.Manifest) {
		logger.Info("Push does not touch manifest, ignoring",
			"repository", target.FullName(),
			"manifest", target.Manifest,
		)
		return nil
	}

	headSHA := push.GetHeadCommit().GetID()
	if headSHA == "" {
		headSHA = push.GetAfter()
	}
	if headSHA == "" {
		return goerr.New("push event has no head commit SHA")
	}

	input := &model.GateInput{
		Owner:        target.Owner,
		Repo:         target.Repo,
		CommitSHA:    headSHA,
		ManifestPath: target.Manifest,
	}

	logger.Info("Dispatching release gate run",
		"repository", target.FullName(),
		"commit_sha", headSHA,
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.gateUC.Run(ctx, input)
		return err
	})

	return nil
}

// touchesManifest reports whether any commit of the push added, modified or
// removed the manifest path
func touchesManifest(push *github.PushEvent, manifestPath string) bool {
	for _, commit := range push.Commits {
		for _, files := range [][]string{commit.Added, commit.Modified, commit.Removed} {
			for _, f := range files {
				if f == manifestPath {
					return true
				}
			}
		}
	}
	return false
}
