package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/cli/config"
	"github.com/m-mizutani/metgate/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdForecast() *cli.Command {
	var (
		metCfg       config.MetOffice
		forecastType string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Forecast type (hourly, three-hourly, daily)",
			Value:       string(model.ForecastHourly),
			Destination: &forecastType,
			Sources:     cli.EnvVars("METGATE_FORECAST_TYPE"),
		},
	}
	flags = append(flags, metCfg.Flags()...)

	return &cli.Command{
		Name:  "forecast",
		Usage: "Fetch a forecast and print it as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := metCfg.Configure()
			if err != nil {
				return err
			}

			data, err := client.Forecast(ctx, model.ForecastType(forecastType))
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := json.Indent(&out, data, "", "  "); err != nil {
				return goerr.Wrap(err, "failed to format forecast JSON")
			}

			fmt.Fprintln(os.Stdout, out.String())
			return nil
		},
	}
}
