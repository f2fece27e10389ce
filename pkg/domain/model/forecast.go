package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ForecastType selects the DataHub site-specific endpoint
type ForecastType string

const (
	ForecastHourly      ForecastType = "hourly"
	ForecastThreeHourly ForecastType = "three-hourly"
	ForecastDaily       ForecastType = "daily"
)

// ForecastResponse is the GeoJSON document returned by the DataHub point API
type ForecastResponse struct {
	Type     string            `json:"type"`
	Features []ForecastFeature `json:"features"`
}

// ForecastFeature is a single GeoJSON feature; the point API returns exactly
// one, for the requested location
type ForecastFeature struct {
	Type       string             `json:"type"`
	Geometry   ForecastGeometry   `json:"geometry"`
	Properties ForecastProperties `json:"properties"`
}

// ForecastGeometry holds the coordinates of the forecast site
type ForecastGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // longitude, latitude, elevation
}

// ForecastProperties carries the location metadata and the time series
type ForecastProperties struct {
	Location             ForecastLocation `json:"location"`
	RequestPointDistance float64          `json:"requestPointDistance"`
	ModelRunDate         time.Time        `json:"modelRunDate"`
	TimeSeries           []TimeStep       `json:"timeSeries"`
}

// ForecastLocation names the forecast site
type ForecastLocation struct {
	Name string `json:"name"`
}

// TimeStep is a single forecast step of the site-specific time series.
// Pressure (mslp) is in Pa, visibility in meters, wind speeds in m/s.
type TimeStep struct {
	Time                      time.Time `json:"time"`
	ScreenTemperature         float64   `json:"screenTemperature"`
	MaxScreenAirTemp          float64   `json:"maxScreenAirTemp,omitempty"`
	MinScreenAirTemp          float64   `json:"minScreenAirTemp,omitempty"`
	FeelsLikeTemperature      float64   `json:"feelsLikeTemperature"`
	ScreenDewPointTemperature float64   `json:"screenDewPointTemperature"`
	ScreenRelativeHumidity    float64   `json:"screenRelativeHumidity"`
	MSLP                      float64   `json:"mslp"`
	Visibility                float64   `json:"visibility"`
	WindSpeed10m              float64   `json:"windSpeed10m"`
	WindGustSpeed10m          float64   `json:"windGustSpeed10m"`
	WindDirectionFrom10m      float64   `json:"windDirectionFrom10m"`
	UVIndex                   int       `json:"uvIndex"`
	PrecipitationRate         float64   `json:"precipitationRate"`
	TotalPrecipAmount         float64   `json:"totalPrecipAmount,omitempty"`
	ProbOfPrecipitation       float64   `json:"probOfPrecipitation"`
	SignificantWeatherCode    int       `json:"significantWeatherCode"`
}

// conditionMap maps Met Office significant weather codes to condition
// strings. Based on the DataPoint code definitions published by the Met
// Office; codes 9/10, 13/14 etc. are night/day pairs of the same condition.
var conditionMap = map[int]string{
	0:  "clear-night",
	1:  "sunny",
	2:  "partlycloudy",
	3:  "partlycloudy",
	5:  "fog",
	6:  "fog",
	7:  "cloudy",
	8:  "cloudy",
	9:  "lightning-rainy",
	10: "lightning-rainy",
	11: "rainy",
	12: "rainy",
	13: "rainy",
	14: "rainy",
	15: "rainy",
	16: "snowy-rainy",
	17: "snowy-rainy",
	18: "snowy-rainy",
	19: "snowy",
	20: "snowy",
	21: "snowy",
	22: "snowy",
	23: "snowy",
	24: "snowy",
	25: "snowy",
	26: "snowy",
	27: "snowy",
	28: "lightning",
	29: "lightning",
	30: "lightning",
}

// Condition returns the condition string for a significant weather code
func Condition(code int) string {
	if c, ok := conditionMap[code]; ok {
		return c
	}
	return "unknown"
}

// ParseForecast parses a raw DataHub response and validates that it carries
// at least one feature with a non-empty time series
func ParseForecast(data []byte) (*ForecastResponse, error) {
	var resp ForecastResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse forecast JSON")
	}

	if len(resp.Features) == 0 {
		return nil, goerr.New("forecast response has no features")
	}
	if len(resp.Features[0].Properties.TimeSeries) == 0 {
		return nil, goerr.New("forecast response has no time series")
	}

	return &resp, nil
}

// TimeSeries returns the time series of the first (and only) feature
func (r *ForecastResponse) TimeSeries() []TimeStep {
	return r.Features[0].Properties.TimeSeries
}

// LocationName returns the name of the forecast site
func (r *ForecastResponse) LocationName() string {
	return r.Features[0].Properties.Location.Name
}

// CurrentConditions is the latest observed-equivalent forecast step,
// presented in the units the HTTP API serves (pressure in hPa)
type CurrentConditions struct {
	Time                time.Time `json:"time"`
	Location            string    `json:"location,omitempty"`
	Temperature         float64   `json:"temperature"`
	ApparentTemperature float64   `json:"apparent_temperature"`
	DewPoint            float64   `json:"dew_point"`
	Humidity            float64   `json:"humidity"`
	Pressure            float64   `json:"pressure"`
	Visibility          float64   `json:"visibility"`
	WindSpeed           float64   `json:"wind_speed"`
	WindBearing         float64   `json:"wind_bearing"`
	UVIndex             int       `json:"uv_index"`
	Condition           string    `json:"condition"`
}

// HourlyForecastEntry is one step of the hourly forecast
type HourlyForecastEntry struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperature"`
	Condition                string    `json:"condition"`
	PrecipitationRate        float64   `json:"precipitation_rate"`
	PrecipitationProbability float64   `json:"precipitation_probability"`
	WindSpeed                float64   `json:"wind_speed"`
	WindBearing              float64   `json:"wind_bearing"`
}

// DailyForecastEntry is one day of forecast aggregated from hourly steps
type DailyForecastEntry struct {
	Time                     time.Time `json:"time"`
	TempHigh                 float64   `json:"temp_high"`
	TempLow                  float64   `json:"temp_low"`
	Condition                string    `json:"condition"`
	Precipitation            float64   `json:"precipitation"`
	PrecipitationProbability float64   `json:"precipitation_probability"`
	WindSpeed                float64   `json:"wind_speed"`
	WindBearing              float64   `json:"wind_bearing"`
}

// ForecastSnapshot is a cached raw API response
type ForecastSnapshot struct {
	ID          string
	Type        ForecastType
	Latitude    float64
	Longitude   float64
	RetrievedAt time.Time
	Payload     []byte
}
