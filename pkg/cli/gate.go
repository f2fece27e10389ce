package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/cli/config"
	"github.com/m-mizutani/metgate/pkg/domain/model"
	"github.com/m-mizutani/metgate/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdGate() *cli.Command {
	var (
		githubCfg config.GitHub
		dbCfg     config.Database

		repo     string
		commit   string
		manifest string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository in owner/name form",
			Required:    true,
			Destination: &repo,
			Sources:     cli.EnvVars("METGATE_REPO"),
		},
		&cli.StringFlag{
			Name:        "commit",
			Usage:       "Head commit SHA to gate on",
			Required:    true,
			Destination: &commit,
			Sources:     cli.EnvVars("METGATE_COMMIT"),
		},
		&cli.StringFlag{
			Name:        "manifest",
			Usage:       "Path of the manifest file within the repository",
			Value:       "manifest.json",
			Destination: &manifest,
			Sources:     cli.EnvVars("METGATE_MANIFEST"),
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, dbCfg.Flags()...)

	return &cli.Command{
		Name:  "gate",
		Usage: "Run the release gate once against a specific commit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			owner, name, ok := strings.Cut(repo, "/")
			if !ok || owner == "" || name == "" {
				return goerr.New("repo must be in owner/name form",
					goerr.V("repo", repo))
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			store, err := dbCfg.Configure()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("Failed to close store", slog.Any("error", err))
				}
			}()

			gateUC := usecase.NewGate(githubClient, store)

			result, err := gateUC.Run(ctx, &model.GateInput{
				Owner:        owner,
				Repo:         name,
				CommitSHA:    commit,
				ManifestPath: manifest,
			})
			if err != nil {
				return err
			}

			logger.Info("Gate run complete",
				slog.String("decision", string(result.Decision)),
				slog.String("prev_version", result.PrevVersion),
				slog.String("curr_version", result.CurrVersion),
				slog.String("tag", result.Tag),
			)
			return nil
		},
	}
}
