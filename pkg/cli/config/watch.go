package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Watch holds the watch configuration file path
type Watch struct {
	Path string
}

// Flags returns CLI flags for watch configuration
func (c *Watch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "watch-config",
			Usage:       "Path to YAML file listing watched repositories",
			Required:    true,
			Destination: &c.Path,
			Sources:     cli.EnvVars("METGATE_WATCH_CONFIG"),
		},
	}
}

// Load reads and parses the watch configuration
func (c *Watch) Load() (*model.WatchConfig, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read watch config",
			goerr.V("path", c.Path))
	}

	return model.ParseWatchConfig(data)
}
