// Package osrm provides the general-purpose map-service fallback provider,
// backed by an OSRM routing instance. It requests alternate routes so the
// scoring engine can pick the most bicycle-suitable one.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/internal/provider/resilience"
	"github.com/cycleroute/cycleroute/internal/route"
	"github.com/cycleroute/cycleroute/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "osrm"

	// DefaultBaseURL points at the public OSRM demo server.
	DefaultBaseURL = "https://router.project-osrm.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL is the OSRM instance base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OSRM API client implementing route.Provider.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ComputeRoute computes route alternatives between the request endpoints.
// OSRM has no bike-type-specific profiles; all requests use the cycling
// profile and the coordinator's scoring picks among the alternates.
func (c *Client) ComputeRoute(ctx context.Context, req route.Request) ([]route.Candidate, error) {
	var sb strings.Builder
	// OSRM uses {lon},{lat} pairs separated by semicolons.
	fmt.Fprintf(&sb, "%f,%f", req.Start.Lon, req.Start.Lat)
	for _, w := range req.Waypoints {
		fmt.Fprintf(&sb, ";%f,%f", w.Lon, w.Lat)
	}
	fmt.Fprintf(&sb, ";%f,%f", req.End.Lon, req.End.Lat)

	// Alternatives are only supported for two-point requests.
	alternatives := "true"
	if len(req.Waypoints) > 0 {
		alternatives = "false"
	}

	url := fmt.Sprintf("%s/route/v1/cycling/%s?alternatives=%s&steps=true&geometries=polyline&overview=full",
		c.baseURL, sb.String(), alternatives)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Int("waypoints", len(req.Waypoints)).
		Float64("start_lat", req.Start.Lat).
		Float64("start_lon", req.Start.Lon).
		Float64("end_lat", req.End.Lat).
		Float64("end_lon", req.End.Lon).
		Msg("requesting route from OSRM")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &route.ProviderError{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      route.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var osrmResp osrmResponse
	if err := json.Unmarshal(respBody, &osrmResp); err != nil {
		return nil, &route.ProviderError{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "could not decode provider response",
			Err:      route.ErrInvalidResponse,
		}
	}

	if resp.StatusCode != http.StatusOK || osrmResp.Code != "Ok" {
		return nil, c.mapError(resp.StatusCode, osrmResp.Code, osrmResp.Message)
	}
	if len(osrmResp.Routes) == 0 {
		return nil, &route.ProviderError{
			Provider: ProviderName,
			Code:     "EMPTY_RESULT",
			Message:  "provider returned no routes",
			Err:      route.ErrNoRouteFound,
		}
	}

	candidates := c.toCandidates(&osrmResp)

	c.logger.Debug().
		Int("candidates", len(candidates)).
		Msg("received routes from OSRM")

	return candidates, nil
}

// mapError maps OSRM response codes to domain errors.
func (c *Client) mapError(statusCode int, code, message string) error {
	switch code {
	case "NoRoute", "NoSegment":
		return &route.ProviderError{
			Provider: ProviderName,
			Code:     code,
			Message:  "no route found between the given points",
			Err:      route.ErrNoRouteFound,
		}
	case "InvalidQuery", "InvalidValue", "InvalidCoordinates":
		return &route.ProviderError{
			Provider: ProviderName,
			Code:     code,
			Message:  message,
			Err:      route.ErrInvalidCoordinates,
		}
	default:
		return &route.ProviderError{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      route.ErrProviderUnavailable,
		}
	}
}

// toCandidates converts the OSRM response to domain candidates.
// OSRM supplies no elevation data, so profiles and gain/loss stay empty.
func (c *Client) toCandidates(resp *osrmResponse) []route.Candidate {
	candidates := make([]route.Candidate, 0, len(resp.Routes))

	for i := range resp.Routes {
		osrmRoute := &resp.Routes[i]

		coords := polyline.Decode(osrmRoute.Geometry)
		geometry := make([]route.Coordinate, len(coords))
		for j, p := range coords {
			geometry[j] = route.Coordinate{Lat: p.Lat, Lon: p.Lon}
		}

		cand := route.Candidate{
			Geometry:        geometry,
			DistanceMeters:  osrmRoute.Distance,
			DurationSeconds: osrmRoute.Duration,
		}

		for j := range osrmRoute.Legs {
			leg := &osrmRoute.Legs[j]
			for k := range leg.Steps {
				step := &leg.Steps[k]

				coord := route.Coordinate{}
				if len(step.Maneuver.Location) >= 2 {
					coord = route.Coordinate{Lat: step.Maneuver.Location[1], Lon: step.Maneuver.Location[0]}
				}

				cand.Instructions = append(cand.Instructions, route.Instruction{
					ID:             uuid.New().String(),
					Text:           instructionText(step),
					DistanceMeters: step.Distance,
					Coordinate:     coord,
					Maneuver:       maneuverFor(step.Maneuver.Type, step.Maneuver.Modifier),
				})
			}
		}

		candidates = append(candidates, cand)
	}

	return candidates
}

// instructionText synthesizes a human-readable instruction from the step's
// maneuver and way name.
func instructionText(step *osrmStep) string {
	name := step.Name
	switch step.Maneuver.Type {
	case "depart":
		if name != "" {
			return "Head out on " + name
		}
		return "Head out"
	case "arrive":
		return "You have arrived at your destination"
	case "rotary", "roundabout":
		if name != "" {
			return "Enter the roundabout and exit onto " + name
		}
		return "Enter the roundabout"
	default:
		verb := "Continue"
		switch step.Maneuver.Modifier {
		case "left", "sharp left", "slight left":
			verb = "Turn left"
		case "right", "sharp right", "slight right":
			verb = "Turn right"
		case "uturn":
			verb = "Make a U-turn"
		}
		if name != "" {
			return verb + " onto " + name
		}
		return verb
	}
}

// maneuverFor maps OSRM maneuver type and modifier to domain maneuvers.
func maneuverFor(maneuverType, modifier string) route.Maneuver {
	switch maneuverType {
	case "depart":
		return route.ManeuverStart
	case "arrive":
		return route.ManeuverDestination
	case "rotary", "roundabout":
		return route.ManeuverRoundabout
	}

	switch modifier {
	case "left", "sharp left", "slight left":
		return route.ManeuverTurnLeft
	case "right", "sharp right", "slight right":
		return route.ManeuverTurnRight
	case "uturn":
		return route.ManeuverUTurn
	default:
		return route.ManeuverStraight
	}
}

// Ensure Client implements route.Provider.
var _ route.Provider = (*Client)(nil)
