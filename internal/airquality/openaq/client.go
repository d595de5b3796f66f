// Package openaq provides a client for the OpenAQ v3 API.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/provider"
	"github.com/airsight/airsight/internal/provider/resilience"
)

const (
	// ProviderName identifies this air-quality provider.
	ProviderName = "openaq"

	// DefaultBaseURL is the OpenAQ API base URL.
	DefaultBaseURL = "https://api.openaq.org"

	// apiKeyHeader carries the OpenAQ API key.
	apiKeyHeader = "X-API-KEY"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// APIKey is the OpenAQ API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the OpenAQ API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenAQ API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// OpenAQ API response types.

type utcTimestamp struct {
	UTC string `json:"utc"`
}

type locationsResponse struct {
	Results []locationData `json:"results"`
}

type locationData struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	DatetimeLast *utcTimestamp `json:"datetimeLast"`
	Sensors      []sensorData  `json:"sensors"`
}

type sensorData struct {
	ID        int `json:"id"`
	Parameter struct {
		Name string `json:"name"`
	} `json:"parameter"`
}

type measurementsResponse struct {
	Results []measurementData `json:"results"`
}

type measurementData struct {
	Value  *float64 `json:"value"`
	Period struct {
		DatetimeTo *utcTimestamp `json:"datetimeTo"`
	} `json:"period"`
}

// FindStations returns monitoring stations within radiusMeters of coord.
func (c *Client) FindStations(ctx context.Context, coord airquality.Coordinate, radiusMeters, limit int) ([]airquality.Station, error) {
	params := url.Values{}
	params.Set("coordinates", formatCoordinate(coord))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("limit", strconv.Itoa(limit))

	c.logger.Debug().
		Str("coordinates", params.Get("coordinates")).
		Int("radius", radiusMeters).
		Msg("discovering stations via OpenAQ")

	var result locationsResponse
	if err := c.get(ctx, "/v3/locations?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	stations := make([]airquality.Station, 0, len(result.Results))
	for i := range result.Results {
		stations = append(stations, toStation(&result.Results[i]))
	}
	return stations, nil
}

// FetchHourlyMeasurements returns hourly measurements for a sensor from the
// given instant onward, in the provider's order (oldest first).
func (c *Client) FetchHourlyMeasurements(ctx context.Context, sensorID int, from time.Time) ([]airquality.Measurement, error) {
	params := url.Values{}
	params.Set("datetime_from", from.UTC().Format(time.RFC3339))

	path := fmt.Sprintf("/v3/sensors/%d/measurements/hourly?%s", sensorID, params.Encode())

	c.logger.Debug().
		Int("sensor_id", sensorID).
		Msg("fetching hourly measurements via OpenAQ")

	var result measurementsResponse
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}

	measurements := make([]airquality.Measurement, 0, len(result.Results))
	for i := range result.Results {
		measurements = append(measurements, toMeasurement(&result.Results[i]))
	}
	return measurements, nil
}

// get executes an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &provider.UpstreamError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// toStation converts API location data to a domain Station.
func toStation(loc *locationData) airquality.Station {
	station := airquality.Station{
		ID:      loc.ID,
		Name:    loc.Name,
		Sensors: make([]airquality.Sensor, 0, len(loc.Sensors)),
	}

	if loc.DatetimeLast != nil {
		if ts, err := time.Parse(time.RFC3339, loc.DatetimeLast.UTC); err == nil {
			station.LastUpdated = &ts
		}
	}

	for _, s := range loc.Sensors {
		station.Sensors = append(station.Sensors, airquality.Sensor{
			ID:        s.ID,
			Parameter: s.Parameter.Name,
		})
	}

	return station
}

// toMeasurement converts API measurement data to a domain Measurement.
func toMeasurement(m *measurementData) airquality.Measurement {
	measurement := airquality.Measurement{
		Value: m.Value,
	}

	if m.Period.DatetimeTo != nil {
		if ts, err := time.Parse(time.RFC3339, m.Period.DatetimeTo.UTC); err == nil {
			measurement.PeriodEnd = &ts
		}
	}

	return measurement
}

// formatCoordinate renders "lat,lon" the way the OpenAQ API expects.
func formatCoordinate(coord airquality.Coordinate) string {
	return strconv.FormatFloat(coord.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(coord.Longitude, 'f', -1, 64)
}
