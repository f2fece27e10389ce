package metoffice_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/metgate/pkg/domain/model"
	"github.com/m-mizutani/metgate/pkg/infra/metoffice"
)

const fixtureBody = `{"type":"FeatureCollection","features":[{"properties":{"location":{"name":"London"},"timeSeries":[{"time":"2025-03-01T09:00Z","screenTemperature":8.5}]}}]}`

func TestClient_RequestShape(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte(fixtureBody))
	}))
	defer server.Close()

	client := metoffice.New("test-key", 51.5074, -0.1278,
		metoffice.WithBaseURL(server.URL),
	)

	data, err := client.Forecast(context.Background(), model.ForecastHourly)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("London")

	gt.Value(t, gotPath).Equal("/hourly")
	gt.Value(t, gotAPIKey).Equal("test-key")
	gt.Value(t, gotQuery["datasource"]).Equal("BD1")
	gt.Value(t, gotQuery["includeLocationName"]).Equal("true")
	gt.Value(t, gotQuery["excludeParameterMetadata"]).Equal("true")
	gt.Value(t, gotQuery["latitude"]).Equal("51.5074")
	gt.Value(t, gotQuery["longitude"]).Equal("-0.1278")
}

func TestClient_EndpointPerForecastType(t *testing.T) {
	tests := []struct {
		forecastType model.ForecastType
		wantPath     string
	}{
		{model.ForecastHourly, "/hourly"},
		{model.ForecastThreeHourly, "/three-hourly"},
		{model.ForecastDaily, "/daily"},
	}

	for _, tt := range tests {
		t.Run(string(tt.forecastType), func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(fixtureBody))
			}))
			defer server.Close()

			client := metoffice.New("test-key", 51.5074, -0.1278,
				metoffice.WithBaseURL(server.URL),
			)

			_, err := client.Forecast(context.Background(), tt.forecastType)
			gt.NoError(t, err)
			gt.Value(t, gotPath).Equal(tt.wantPath)
		})
	}
}

func TestClient_InvalidForecastType(t *testing.T) {
	client := metoffice.New("test-key", 51.5074, -0.1278)
	_, err := client.Forecast(context.Background(), model.ForecastType("weekly"))
	gt.Error(t, err)
}

func TestClient_RetriesOnRateLimit(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(fixtureBody))
	}))
	defer server.Close()

	client := metoffice.New("test-key", 51.5074, -0.1278,
		metoffice.WithBaseURL(server.URL),
		metoffice.WithRetryInterval(time.Millisecond),
	)

	data, err := client.Forecast(context.Background(), model.ForecastHourly)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("London")
	gt.Number(t, requests).Equal(3)
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := metoffice.New("test-key", 51.5074, -0.1278,
		metoffice.WithBaseURL(server.URL),
		metoffice.WithRetryInterval(time.Millisecond),
	)

	_, err := client.Forecast(context.Background(), model.ForecastHourly)
	gt.Error(t, err)
	gt.Number(t, requests).Equal(3)
}

func TestClient_NoRetryOnInvalidAPIKey(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := metoffice.New("bad-key", 51.5074, -0.1278,
		metoffice.WithBaseURL(server.URL),
		metoffice.WithRetryInterval(time.Millisecond),
	)

	_, err := client.Forecast(context.Background(), model.ForecastHourly)
	gt.Error(t, err)
	gt.Number(t, requests).Equal(1)
}

func TestClient_NoRetryOnServerError(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := metoffice.New("test-key", 51.5074, -0.1278,
		metoffice.WithBaseURL(server.URL),
		metoffice.WithRetryInterval(time.Millisecond),
	)

	_, err := client.Forecast(context.Background(), model.ForecastHourly)
	gt.Error(t, err)
	gt.Number(t, requests).Equal(1)
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := metoffice.New("test-key", 51.5074, -0.1278,
		metoffice.WithBaseURL(server.URL),
		metoffice.WithRetryInterval(10*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Forecast(ctx, model.ForecastHourly)
	gt.Error(t, err)
}
