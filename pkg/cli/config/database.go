package config

import (
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
	"github.com/m-mizutani/metgate/pkg/infra/sqlite"
	"github.com/urfave/cli/v3"
)

// Database holds storage configuration
type Database struct {
	Path string
}

// Flags returns CLI flags for storage configuration
func (c *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-path",
			Usage:       "Path to the SQLite database file",
			Value:       "metgate.db",
			Destination: &c.Path,
			Sources:     cli.EnvVars("METGATE_DB_PATH"),
		},
	}
}

// Configure opens the database
func (c *Database) Configure() (interfaces.Store, error) {
	return sqlite.New(c.Path)
}
