// Package tomtom provides a client for the TomTom Search geocoding API.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/geocode"
	"github.com/airsight/airsight/internal/provider"
	"github.com/airsight/airsight/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "tomtom"

	// DefaultBaseURL is the TomTom API base URL.
	DefaultBaseURL = "https://api.tomtom.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the TomTom client.
type ClientConfig struct {
	// APIKey is the TomTom API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the TomTom API).
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

// Client is a TomTom geocoding API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new TomTom client.
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

// TomTom API response types.

type geocodeResponse struct {
	Results []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}

// Lookup resolves a placename through the TomTom geocode endpoint. A
// successful response with no results yields Match{Found: false}; a non-2xx
// response yields a provider.UpstreamError.
func (c *Client) Lookup(ctx context.Context, placename string) (geocode.Match, error) {
	reqURL := fmt.Sprintf("%s/search/2/geocode/%s.json?key=%s",
		c.baseURL, url.PathEscape(placename), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return geocode.Match{}, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("placename", placename).
		Msg("geocoding placename via TomTom")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geocode.Match{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geocode.Match{}, &provider.UpstreamError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
		}
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return geocode.Match{}, fmt.Errorf("decoding geocode response: %w", err)
	}

	if len(result.Results) == 0 {
		return geocode.Match{}, nil
	}

	// The first match is the provider's best candidate.
	position := result.Results[0].Position
	return geocode.Match{
		Found:     true,
		Latitude:  position.Lat,
		Longitude: position.Lon,
	}, nil
}
