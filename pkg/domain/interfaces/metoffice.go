package interfaces

import (
	"context"

	"github.com/m-mizutani/metgate/pkg/domain/model"
)

// ForecastClient fetches site-specific forecasts from the Met Office
// DataHub API. The raw response body is returned so callers can cache it
// verbatim.
type ForecastClient interface {
	Forecast(ctx context.Context, forecastType model.ForecastType) ([]byte, error)
}
