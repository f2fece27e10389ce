package github

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
)

type client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub client authenticated with a personal access
// token or fine-grained token
func NewClient(token string) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is empty")
	}

	return &client{
		githubClient: github.NewClient(nil).WithAuthToken(token),
	}, nil
}

// NewAppClient creates a GitHub client with App installation authentication
func NewAppClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{
		githubClient: github.NewClient(&http.Client{Transport: itr}),
	}, nil
}

// GetFileContent returns the decoded content of path as it existed at ref
func (c *client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	fileContent, _, _, err := c.githubClient.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get file content",
			goerr.V("path", path), goerr.V("ref", ref))
	}
	if fileContent == nil {
		return nil, goerr.New("path is not a file",
			goerr.V("path", path), goerr.V("ref", ref))
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode file content",
			goerr.V("path", path), goerr.V("ref", ref))
	}

	return []byte(content), nil
}

// GetParentSHA returns the first parent of the given commit. A root commit
// resolves to an empty string with no error.
func (c *client) GetParentSHA(ctx context.Context, owner, repo, sha string) (string, error) {
	commit, _, err := c.githubClient.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get commit",
			goerr.V("sha", sha))
	}

	if len(commit.Parents) == 0 {
		return "", nil
	}
	return commit.Parents[0].GetSHA(), nil
}

// CreateRelease publishes a tagged release. Duplicate tags are rejected by
// GitHub; no extra duplicate check is performed here.
func (c *client) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error) {
	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, owner, repo, release)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("tag", release.GetTagName()))
	}
	return created, nil
}
