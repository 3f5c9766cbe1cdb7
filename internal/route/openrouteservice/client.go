// Package openrouteservice provides the primary cycling-specialized routing
// provider, backed by the OpenRouteService directions API.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/internal/provider/resilience"
	"github.com/cycleroute/cycleroute/internal/route"
	"github.com/cycleroute/cycleroute/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// defaultAlternatives is how many route alternatives to request.
	defaultAlternatives = 3
)

// profileForBike maps bike types to ORS cycling profiles. Cargo bikes ride
// the regular profile; ORS has no cargo-specific one.
var profileForBike = map[route.BikeType]string{
	route.BikeCity:     "cycling-regular",
	route.BikeMountain: "cycling-mountain",
	route.BikeRoad:     "cycling-road",
	route.BikeElectric: "cycling-electric",
	route.BikeCargo:    "cycling-regular",
}

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to ORS API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (optional, defaults to 10s).
	// The coordinator additionally bounds calls through the context.
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouteService API client implementing route.Provider.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouteService client.
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
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ComputeRoute computes cycling route candidates between the request endpoints,
// through any waypoints, using the profile matching the bike type.
func (c *Client) ComputeRoute(ctx context.Context, req route.Request) ([]route.Candidate, error) {
	profile, ok := profileForBike[req.BikeType]
	if !ok {
		profile = profileForBike[route.BikeCity]
	}

	coordinates := make([][]float64, 0, len(req.Waypoints)+2)
	// ORS uses [lon, lat] order (GeoJSON)
	coordinates = append(coordinates, []float64{req.Start.Lon, req.Start.Lat})
	for _, w := range req.Waypoints {
		coordinates = append(coordinates, []float64{w.Lon, w.Lat})
	}
	coordinates = append(coordinates, []float64{req.End.Lon, req.End.Lat})

	orsReq := orsRequest{
		Coordinates:  coordinates,
		Instructions: true,
		Geometry:     true,
		Elevation:    true,
		Units:        "m",
		Language:     "en",
		ExtraInfo:    []string{"surface"},
	}

	// Alternative routes are only supported for two-point requests.
	if len(req.Waypoints) == 0 {
		orsReq.AlternativeRoutes = &alternativeRoutesOpts{TargetCount: defaultAlternatives}
	}

	if avoid := avoidFeatures(req.Preferences); len(avoid) > 0 {
		orsReq.Options = &requestOptions{AvoidFeatures: avoid}
	}

	body, err := json.Marshal(orsReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	c.logger.Debug().
		Str("profile", profile).
		Int("waypoints", len(req.Waypoints)).
		Float64("start_lat", req.Start.Lat).
		Float64("start_lon", req.Start.Lon).
		Float64("end_lat", req.End.Lat).
		Float64("end_lon", req.End.Lon).
		Msg("requesting directions from ORS")

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

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var orsResp orsResponse
	if err := json.Unmarshal(respBody, &orsResp); err != nil {
		return nil, &route.ProviderError{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "could not decode provider response",
			Err:      route.ErrInvalidResponse,
		}
	}

	if len(orsResp.Routes) == 0 {
		return nil, &route.ProviderError{
			Provider: ProviderName,
			Code:     "EMPTY_RESULT",
			Message:  "provider returned no routes",
			Err:      route.ErrNoRouteFound,
		}
	}

	candidates := c.toCandidates(&orsResp, req.BikeType)

	c.logger.Debug().
		Int("candidates", len(candidates)).
		Msg("received directions from ORS")

	return candidates, nil
}

// avoidFeatures maps rider preferences to ORS avoid_features values.
func avoidFeatures(prefs route.Preferences) []string {
	var avoid []string
	if prefs.AvoidHighways {
		avoid = append(avoid, "highways")
	}
	if prefs.AvoidTunnels {
		avoid = append(avoid, "tunnels")
	}
	return avoid
}

// handleErrorResponse maps ORS error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	if err := json.Unmarshal(body, &orsErr); err != nil {
		return &route.ProviderError{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("routing provider returned status %d", statusCode),
			Err:      route.ErrProviderUnavailable,
		}
	}

	switch statusCode {
	case http.StatusNotFound:
		return &route.ProviderError{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given points",
			Err:      route.ErrNoRouteFound,
		}
	case http.StatusBadRequest:
		if orsErr.Error.Code == orsErrorCodeNotFound {
			return &route.ProviderError{
				Provider: ProviderName,
				Code:     "NO_ROUTE",
				Message:  orsErr.Error.Message,
				Err:      route.ErrNoRouteFound,
			}
		}
		return &route.ProviderError{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  orsErr.Error.Message,
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

// toCandidates converts the ORS response to domain candidates.
func (c *Client) toCandidates(resp *orsResponse, bikeType route.BikeType) []route.Candidate {
	candidates := make([]route.Candidate, 0, len(resp.Routes))

	for i := range resp.Routes {
		orsRoute := &resp.Routes[i]

		// Elevation is always requested, so ORS encodes it as a third
		// polyline dimension. Decoding 2D here would re-pair the triplets
		// into garbled coordinates.
		coords, elevation := polyline.Decode3D(orsRoute.Geometry)
		geometry := make([]route.Coordinate, len(coords))
		for j, p := range coords {
			geometry[j] = route.Coordinate{Lat: p.Lat, Lon: p.Lon}
		}

		cand := route.Candidate{
			Geometry:        geometry,
			DistanceMeters:  orsRoute.Summary.Distance,
			DurationSeconds: orsRoute.Summary.Duration,
			Elevation:       elevation,
			ElevationGainM:  orsRoute.Summary.Ascent,
			ElevationLossM:  orsRoute.Summary.Descent,
			Surface:         dominantSurface(orsRoute.Extras, bikeType),
		}

		for j := range orsRoute.Segments {
			segment := &orsRoute.Segments[j]
			for k := range segment.Steps {
				step := &segment.Steps[k]

				coord := route.Coordinate{}
				if len(step.WayPoints) > 0 && step.WayPoints[0] < len(geometry) {
					coord = geometry[step.WayPoints[0]]
				}

				cand.Instructions = append(cand.Instructions, route.Instruction{
					ID:             uuid.New().String(),
					Text:           step.Instruction,
					DistanceMeters: step.Distance,
					Coordinate:     coord,
					Maneuver:       maneuverForType(step.Type),
				})
			}
		}

		candidates = append(candidates, cand)
	}

	return candidates
}

// maneuverForType maps ORS instruction type codes to domain maneuvers.
func maneuverForType(orsType int) route.Maneuver {
	switch orsType {
	case 0, 2, 4:
		return route.ManeuverTurnLeft
	case 1, 3, 5:
		return route.ManeuverTurnRight
	case 6:
		return route.ManeuverStraight
	case 7, 8:
		return route.ManeuverRoundabout
	case 9:
		return route.ManeuverUTurn
	case 10:
		return route.ManeuverDestination
	case 11:
		return route.ManeuverStart
	default:
		return route.ManeuverStraight
	}
}

// dominantSurface picks the surface class covering the largest share of the
// route from the surface extras, falling back to the bike-type default.
func dominantSurface(extras map[string]extra, bikeType route.BikeType) route.Surface {
	surfaceExtra, ok := extras["surface"]
	if !ok || len(surfaceExtra.Summary) == 0 {
		return route.DefaultSurface(bikeType)
	}

	best := surfaceExtra.Summary[0]
	for _, s := range surfaceExtra.Summary[1:] {
		if s.Amount > best.Amount {
			best = s
		}
	}

	// ORS surface codes: 1 paved/asphalt, 2 unpaved, 3 paving stones,
	// 4 concrete, 6 gravel, 7 dirt/ground.
	switch int(best.Value) {
	case 1, 3, 4:
		return route.SurfaceAsphalt
	case 6:
		return route.SurfaceGravel
	case 2, 7:
		return route.SurfaceDirt
	default:
		return route.SurfaceMixed
	}
}

// Ensure Client implements route.Provider.
var _ route.Provider = (*Client)(nil)
