package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// GitHubClient defines operations against the source history store and the
// release-hosting API
type GitHubClient interface {
	// GetFileContent returns the raw content of path as it existed at ref
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)

	// GetParentSHA returns the first parent of the given commit, or an
	// empty string when the commit has no parent (initial commit)
	GetParentSHA(ctx context.Context, owner, repo, sha string) (string, error)

	// CreateRelease publishes a tagged release
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error)
}
