package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/infra/metoffice"
	"github.com/urfave/cli/v3"
)

// MetOffice holds Met Office DataHub configuration
type MetOffice struct {
	APIKey    string
	Latitude  float64
	Longitude float64
	Interval  time.Duration
}

// Flags returns CLI flags for Met Office DataHub configuration
func (c *MetOffice) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "metoffice-api-key",
			Usage:       "Met Office DataHub API key",
			Required:    true,
			Destination: &c.APIKey,
			Sources:     cli.EnvVars("METGATE_METOFFICE_API_KEY"),
		},
		&cli.FloatFlag{
			Name:        "latitude",
			Usage:       "Forecast location latitude",
			Required:    true,
			Destination: &c.Latitude,
			Sources:     cli.EnvVars("METGATE_LATITUDE"),
		},
		&cli.FloatFlag{
			Name:        "longitude",
			Usage:       "Forecast location longitude",
			Required:    true,
			Destination: &c.Longitude,
			Sources:     cli.EnvVars("METGATE_LONGITUDE"),
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Forecast refresh interval",
			Value:       time.Hour,
			Destination: &c.Interval,
			Sources:     cli.EnvVars("METGATE_POLL_INTERVAL"),
		},
	}
}

// Configure validates the location and builds a DataHub client
func (c *MetOffice) Configure() (*metoffice.Client, error) {
	if c.Latitude < -90 || c.Latitude > 90 {
		return nil, goerr.New("latitude out of range", goerr.V("latitude", c.Latitude))
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return nil, goerr.New("longitude out of range", goerr.V("longitude", c.Longitude))
	}

	return metoffice.New(c.APIKey, c.Latitude, c.Longitude), nil
}
