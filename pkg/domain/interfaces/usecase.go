package interfaces

import (
	"context"

	"github.com/m-mizutani/metgate/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// GateUseCase defines the release gate: compare manifest versions across a
// commit boundary and conditionally publish a release
type GateUseCase interface {
	Run(ctx context.Context, input *model.GateInput) (*model.GateResult, error)
}

// ForecastUseCase defines operations for serving Met Office forecast data
type ForecastUseCase interface {
	// Refresh fetches the hourly forecast and stores a snapshot
	Refresh(ctx context.Context) error

	// Current returns the latest current conditions
	Current(ctx context.Context) (*model.CurrentConditions, error)

	// Hourly returns the hourly forecast
	Hourly(ctx context.Context) ([]model.HourlyForecastEntry, error)

	// Daily returns the daily forecast aggregated from hourly steps
	Daily(ctx context.Context) ([]model.DailyForecastEntry, error)
}
