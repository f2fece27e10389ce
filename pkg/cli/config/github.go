package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/metgate/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration. Either a token or GitHub App
// credentials must be supplied.
type GitHub struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	WebhookSecret  string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("METGATE_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("METGATE_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("METGATE_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to GitHub App private key file",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("METGATE_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("METGATE_GITHUB_WEBHOOK_SECRET"),
		},
	}
}

// Configure builds a GitHub client from whichever credentials are set.
// A token takes precedence over App credentials.
func (c *GitHub) Configure() (interfaces.GitHubClient, error) {
	if c.Token != "" {
		return githubinfra.NewClient(c.Token)
	}

	if c.AppID != 0 && c.InstallationID != 0 && c.PrivateKeyPath != "" {
		key, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyPath))
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, key)
	}

	return nil, goerr.New("GitHub credentials required: set a token or App ID, installation ID and private key")
}
