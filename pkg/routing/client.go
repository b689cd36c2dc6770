package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/printlink/printlink-backend/pkg/errors"
	"github.com/printlink/printlink-backend/pkg/geo"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/metrics"
	"github.com/printlink/printlink-backend/pkg/types"
)

const (
	defaultTimeout              = 5 * time.Second
	defaultFallbackSpeedKMH     = 30.0
	minFallbackDuration         = time.Minute
	requestBodyReadLimit  int64 = 1024
)

// Source tags where an estimate came from.
type Source string

const (
	// SourceRouted indicates the external provider answered.
	SourceRouted Source = "routed"
	// SourceHaversine indicates the straight-line fallback was used.
	SourceHaversine Source = "haversine"
)

// Estimate is the distance/duration answer for an ordered path.
type Estimate struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds int64   `json:"duration_seconds"`
	Source          Source  `json:"source"`
}

// Client wraps the road-routing provider. Provider failures never surface:
// the haversine fallback is the defined recovery path.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	fallbackSpeedKMH float64
	logg             *logger.Logger
	metrics          *metrics.FulfillmentMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds the provider call; after it the fallback path is taken.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithFallbackSpeed sets the assumed average road speed for fallback durations.
func WithFallbackSpeed(kmh float64) Option {
	return func(c *Client) {
		if kmh > 0 {
			c.fallbackSpeedKMH = kmh
		}
	}
}

// WithLogger attaches a structured logger for degraded-provider reporting.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithMetrics attaches routing instrumentation.
func WithMetrics(m *metrics.FulfillmentMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a routing client. An empty base URL is allowed; every
// estimate is then served by the fallback.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:          strings.TrimSpace(baseURL),
		apiKey:           strings.TrimSpace(apiKey),
		fallbackSpeedKMH: defaultFallbackSpeedKMH,
		httpClient:       &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

type providerRequest struct {
	// Coordinates are ordered [lng, lat] pairs, first point to last.
	Coordinates [][2]float64 `json:"coordinates"`
}

type providerResponse struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// RouteEstimate returns distance/duration along the ordered path. At least
// two points are required; that is the only error this method returns.
func (c *Client) RouteEstimate(ctx context.Context, path []types.GeographyPoint) (Estimate, error) {
	if len(path) < 2 {
		return Estimate{}, pkgerrors.New(pkgerrors.CodeValidation, "route estimate requires at least two points")
	}

	if c.baseURL != "" {
		started := time.Now()
		est, err := c.callProvider(ctx, path)
		if err == nil {
			c.metrics.ObserveRouting(string(SourceRouted), time.Since(started))
			return est, nil
		}
		if c.logg != nil {
			c.logg.Error(ctx, "routing provider degraded, using haversine fallback", err)
		}
	}

	return c.fallbackEstimate(path), nil
}

func (c *Client) callProvider(ctx context.Context, path []types.GeographyPoint) (Estimate, error) {
	coords := make([][2]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, [2]float64{p.Lng, p.Lat})
	}

	payload, err := json.Marshal(providerRequest{Coordinates: coords})
	if err != nil {
		return Estimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal route request")
	}

	url := strings.TrimRight(c.baseURL, "/") + "/route"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Estimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build route request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Estimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute route request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return Estimate{}, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"route request failed",
		)
	}

	var apiResp providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Estimate{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode route response")
	}

	return Estimate{
		DistanceMeters:  apiResp.DistanceMeters,
		DurationSeconds: int64(apiResp.DurationSeconds),
		Source:          SourceRouted,
	}, nil
}

// fallbackEstimate derives a straight-line estimate between the path's first
// and last point with a fixed average-speed duration. It never fails.
func (c *Client) fallbackEstimate(path []types.GeographyPoint) Estimate {
	c.metrics.IncRoutingFallback()

	distance := geo.Distance(path[0], path[len(path)-1])

	speed := c.fallbackSpeedKMH
	if speed <= 0 {
		speed = defaultFallbackSpeedKMH
	}
	metersPerSecond := speed * 1000 / 3600
	duration := time.Duration(distance/metersPerSecond) * time.Second
	if duration < minFallbackDuration {
		duration = minFallbackDuration
	}

	return Estimate{
		DistanceMeters:  distance,
		DurationSeconds: int64(duration.Seconds()),
		Source:          SourceHaversine,
	}
}
