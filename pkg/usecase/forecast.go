package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
	"github.com/m-mizutani/metgate/pkg/domain/model"
)

// snapshotRetention bounds how long stale snapshots stay in the store
const snapshotRetention = 24 * time.Hour

type forecastUseCase struct {
	client    interfaces.ForecastClient
	store     interfaces.Store
	latitude  float64
	longitude float64
	maxAge    time.Duration
}

// NewForecast creates a new instance of ForecastUseCase. maxAge controls how
// old a cached snapshot may be before a live fetch is attempted; it should
// match the poll interval.
func NewForecast(client interfaces.ForecastClient, store interfaces.Store, latitude, longitude float64, maxAge time.Duration) interfaces.ForecastUseCase {
	return &forecastUseCase{
		client:    client,
		store:     store,
		latitude:  latitude,
		longitude: longitude,
		maxAge:    maxAge,
	}
}

// Refresh fetches the hourly forecast and stores it as the newest snapshot
func (uc *forecastUseCase) Refresh(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	data, err := uc.client.Forecast(ctx, model.ForecastHourly)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch hourly forecast")
	}

	// Reject unusable payloads before caching them.
	if _, err := model.ParseForecast(data); err != nil {
		return goerr.Wrap(err, "invalid forecast response")
	}

	snapshot := &model.ForecastSnapshot{
		ID:          uuid.NewString(),
		Type:        model.ForecastHourly,
		Latitude:    uc.latitude,
		Longitude:   uc.longitude,
		RetrievedAt: time.Now().UTC(),
		Payload:     data,
	}

	if err := uc.store.SaveSnapshot(ctx, snapshot); err != nil {
		return goerr.Wrap(err, "failed to store forecast snapshot")
	}

	logger.Info("Stored forecast snapshot",
		"id", snapshot.ID,
		"size_bytes", len(data),
	)

	pruned, err := uc.store.PruneSnapshots(ctx, time.Now().UTC().Add(-snapshotRetention))
	if err != nil {
		logger.Warn("Failed to prune old snapshots", "error", err)
	} else if pruned > 0 {
		logger.Debug("Pruned old snapshots", "count", pruned)
	}

	return nil
}

// Current returns current conditions from the first step of the freshest
// hourly time series
func (uc *forecastUseCase) Current(ctx context.Context) (*model.CurrentConditions, error) {
	resp, err := uc.latestResponse(ctx)
	if err != nil {
		return nil, err
	}

	step := resp.TimeSeries()[0]
	return &model.CurrentConditions{
		Time:                step.Time,
		Location:            resp.LocationName(),
		Temperature:         step.ScreenTemperature,
		ApparentTemperature: step.FeelsLikeTemperature,
		DewPoint:            step.ScreenDewPointTemperature,
		Humidity:            step.ScreenRelativeHumidity,
		Pressure:            step.MSLP / 100, // Pa to hPa
		Visibility:          step.Visibility,
		WindSpeed:           step.WindSpeed10m,
		WindBearing:         step.WindDirectionFrom10m,
		UVIndex:             step.UVIndex,
		Condition:           model.Condition(step.SignificantWeatherCode),
	}, nil
}

// Hourly returns the hourly forecast
func (uc *forecastUseCase) Hourly(ctx context.Context) ([]model.HourlyForecastEntry, error) {
	resp, err := uc.latestResponse(ctx)
	if err != nil {
		return nil, err
	}

	steps := resp.TimeSeries()
	entries := make([]model.HourlyForecastEntry, 0, len(steps))
	for _, step := range steps {
		entries = append(entries, model.HourlyForecastEntry{
			Time:                     step.Time,
			Temperature:              step.ScreenTemperature,
			Condition:                model.Condition(step.SignificantWeatherCode),
			PrecipitationRate:        step.PrecipitationRate,
			PrecipitationProbability: step.ProbOfPrecipitation,
			WindSpeed:                step.WindSpeed10m,
			WindBearing:              step.WindDirectionFrom10m,
		})
	}
	return entries, nil
}

// Daily groups the hourly time series by UTC calendar day and aggregates
// each group into a single forecast entry
func (uc *forecastUseCase) Daily(ctx context.Context) ([]model.DailyForecastEntry, error) {
	resp, err := uc.latestResponse(ctx)
	if err != nil {
		return nil, err
	}

	var days []model.DailyForecastEntry
	var group []model.TimeStep
	var currentDay time.Time

	for _, step := range resp.TimeSeries() {
		day := step.Time.UTC().Truncate(24 * time.Hour)
		if len(group) > 0 && !day.Equal(currentDay) {
			days = append(days, aggregateDay(group))
			group = group[:0]
		}
		currentDay = day
		group = append(group, step)
	}
	if len(group) > 0 {
		days = append(days, aggregateDay(group))
	}

	return days, nil
}

// aggregateDay reduces one day of hourly steps: max/min temperature, the
// most frequent weather code, summed precipitation rate, max precipitation
// probability, max wind speed and mean wind bearing
func aggregateDay(steps []model.TimeStep) model.DailyForecastEntry {
	entry := model.DailyForecastEntry{
		Time:     steps[0].Time,
		TempHigh: steps[0].ScreenTemperature,
		TempLow:  steps[0].ScreenTemperature,
	}

	codeCounts := map[int]int{}
	var codeOrder []int
	var bearingSum float64

	for _, step := range steps {
		if step.ScreenTemperature > entry.TempHigh {
			entry.TempHigh = step.ScreenTemperature
		}
		if step.ScreenTemperature < entry.TempLow {
			entry.TempLow = step.ScreenTemperature
		}
		if _, seen := codeCounts[step.SignificantWeatherCode]; !seen {
			codeOrder = append(codeOrder, step.SignificantWeatherCode)
		}
		codeCounts[step.SignificantWeatherCode]++
		entry.Precipitation += step.PrecipitationRate
		if step.ProbOfPrecipitation > entry.PrecipitationProbability {
			entry.PrecipitationProbability = step.ProbOfPrecipitation
		}
		if step.WindSpeed10m > entry.WindSpeed {
			entry.WindSpeed = step.WindSpeed10m
		}
		bearingSum += step.WindDirectionFrom10m
	}

	// Modal code; ties resolve to the code seen first for determinism.
	bestCode, bestCount := 0, -1
	for _, code := range codeOrder {
		if codeCounts[code] > bestCount {
			bestCode, bestCount = code, codeCounts[code]
		}
	}
	entry.Condition = model.Condition(bestCode)
	entry.WindBearing = bearingSum / float64(len(steps))

	return entry
}

// latestResponse returns the freshest usable forecast, refreshing the cache
// when it is empty or older than maxAge
func (uc *forecastUseCase) latestResponse(ctx context.Context) (*model.ForecastResponse, error) {
	logger := ctxlog.From(ctx)

	snapshot, err := uc.store.LatestSnapshot(ctx, model.ForecastHourly)
	if err == nil && time.Since(snapshot.RetrievedAt) <= uc.maxAge {
		return model.ParseForecast(snapshot.Payload)
	}
	if err != nil && err != interfaces.ErrNoSnapshot {
		return nil, goerr.Wrap(err, "failed to load forecast snapshot")
	}

	if err == interfaces.ErrNoSnapshot {
		logger.Info("No cached forecast, fetching live")
	} else {
		logger.Info("Cached forecast is stale, fetching live",
			"retrieved_at", snapshot.RetrievedAt,
		)
	}

	if err := uc.Refresh(ctx); err != nil {
		// A stale snapshot is still better than no answer.
		if snapshot != nil {
			logger.Warn("Live fetch failed, serving stale snapshot", "error", err)
			return model.ParseForecast(snapshot.Payload)
		}
		return nil, err
	}

	snapshot, err = uc.store.LatestSnapshot(ctx, model.ForecastHourly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load forecast snapshot after refresh")
	}
	return model.ParseForecast(snapshot.Payload)
}
