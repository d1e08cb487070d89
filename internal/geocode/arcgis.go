package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/placeshare/placeshare/internal/metrics"
	"github.com/placeshare/placeshare/internal/model"
)

// DefaultArcGISURL is the public ArcGIS World geocoding service.
const DefaultArcGISURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer"

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 512

// ArcGISClient implements Resolver using the ArcGIS findAddressCandidates API.
type ArcGISClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewArcGISClient creates an ArcGIS geocoding client. The timeout bounds the whole
// request; hitting it is reported as ErrGeocodingUnavailable.
func NewArcGISClient(baseURL, token string, timeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *ArcGISClient {
	if baseURL == "" {
		baseURL = DefaultArcGISURL
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ArcGISClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger.With("component", "geocode.arcgis"),
		metrics: recorder,
	}
}

// Resolve looks up address and returns the first candidate's location.
func (c *ArcGISClient) Resolve(ctx context.Context, address string) (model.Coordinates, error) {
	start := time.Now()
	coords, err := c.resolve(ctx, address)
	c.metrics.ObserveGeocode(OutcomeOf(err), time.Since(start))
	return coords, err
}

func (c *ArcGISClient) resolve(ctx context.Context, address string) (model.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return model.Coordinates{}, ErrUnresolvableAddress
	}

	params := url.Values{
		"f":          {"json"},
		"singleLine": {address},
		"outFields":  {"Match_addr,Addr_type"},
	}
	if c.token != "" {
		params.Set("token", c.token)
	}
	fullURL := c.baseURL + "/findAddressCandidates?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: create request: %v", ErrGeocodingUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("geocode request failed", "error", err)
		return model.Coordinates{}, fmt.Errorf("%w: %v", ErrGeocodingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("geocode service returned error status",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return model.Coordinates{}, fmt.Errorf("%w: status %d", ErrGeocodingUnavailable, resp.StatusCode)
	}

	var payload candidatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrGeocodingUnavailable, err)
	}

	// ArcGIS reports some failures as 200 with an error object.
	if payload.Error != nil {
		c.logger.Warn("geocode service returned error payload",
			"code", payload.Error.Code,
			"message", payload.Error.Message,
		)
		return model.Coordinates{}, fmt.Errorf("%w: api error %d: %s", ErrGeocodingUnavailable, payload.Error.Code, payload.Error.Message)
	}
	if payload.Candidates == nil {
		return model.Coordinates{}, fmt.Errorf("%w: response has no candidates field", ErrGeocodingUnavailable)
	}
	if len(*payload.Candidates) == 0 {
		return model.Coordinates{}, ErrUnresolvableAddress
	}

	first := (*payload.Candidates)[0]
	if first.Location == nil || first.Location.X == nil || first.Location.Y == nil {
		return model.Coordinates{}, fmt.Errorf("%w: candidate has no location", ErrGeocodingUnavailable)
	}

	c.logger.Debug("address resolved",
		"match", first.Address,
		"score", first.Score,
		"candidates", len(*payload.Candidates),
	)

	return model.Coordinates{
		Lat: *first.Location.Y,
		Lng: *first.Location.X,
	}, nil
}

// ArcGIS API response types.

type candidatesResponse struct {
	Candidates *[]candidate `json:"candidates"`
	Error      *apiError    `json:"error"`
}

type candidate struct {
	Address  string  `json:"address"`
	Location *point  `json:"location"`
	Score    float64 `json:"score"`
}

// point uses ArcGIS axis naming: x is longitude, y is latitude.
type point struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
