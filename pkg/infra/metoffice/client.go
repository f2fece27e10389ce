package metoffice

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/model"
)

// DefaultBaseURL is the Met Office DataHub site-specific point API
const DefaultBaseURL = "https://data.hub.api.metoffice.gov.uk/sitespecific/v0/point"

const maxAttempts = 3

var endpoints = map[model.ForecastType]string{
	model.ForecastHourly:      "/hourly",
	model.ForecastThreeHourly: "/three-hourly",
	model.ForecastDaily:       "/daily",
}

// Client fetches site-specific forecasts from the Met Office DataHub API
type Client struct {
	apiKey     string
	latitude   float64
	longitude  float64
	baseURL    string
	httpClient *http.Client
	retryBase  time.Duration
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryInterval overrides the backoff unit between retries
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		c.retryBase = d
	}
}

// New creates a DataHub client for a fixed location
func New(apiKey string, latitude, longitude float64, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		latitude:   latitude,
		longitude:  longitude,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryBase:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forecast fetches a forecast of the given type. Rate limiting (429) and
// transport errors are retried up to three attempts with exponential
// backoff; an invalid API key (401) fails immediately.
func (c *Client) Forecast(ctx context.Context, forecastType model.ForecastType) ([]byte, error) {
	logger := ctxlog.From(ctx)

	endpoint, ok := endpoints[forecastType]
	if !ok {
		return nil, goerr.New("invalid forecast type",
			goerr.V("forecast_type", forecastType))
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.retryBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, goerr.Wrap(ctx.Err(), "forecast request cancelled")
			case <-time.After(backoff):
			}
		}

		logger.Debug("Requesting Met Office DataHub forecast",
			"attempt", attempt+1,
			"endpoint", endpoint,
		)

		data, retryable, err := c.doRequest(ctx, endpoint)
		if err == nil {
			return data, nil
		}
		if !retryable {
			return nil, err
		}

		logger.Warn("Met Office DataHub request failed, retrying",
			"attempt", attempt+1,
			"error", err,
		)
		lastErr = err
	}

	return nil, goerr.Wrap(lastErr, "forecast request failed after retries",
		goerr.V("attempts", maxAttempts))
}

// doRequest performs one request. The second return value reports whether
// the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to create forecast request")
	}

	q := req.URL.Query()
	q.Set("datasource", "BD1")
	q.Set("includeLocationName", "true")
	q.Set("excludeParameterMetadata", "true")
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, goerr.Wrap(err, "failed to reach Met Office DataHub")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, goerr.Wrap(err, "failed to read forecast response")
		}
		return data, false, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, goerr.New("invalid Met Office DataHub API key")

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, goerr.New("rate limited by Met Office DataHub")

	default:
		return nil, false, goerr.New("unexpected status from Met Office DataHub",
			goerr.V("status", resp.StatusCode))
	}
}
