package models

import (
	"github.com/cycleroute/cycleroute/internal/route"
)

// ComputeRouteRequest is the request body for POST /v1/routes.
type ComputeRouteRequest struct {
	Start       Point           `json:"start"`
	End         Point           `json:"end"`
	Waypoints   []Point         `json:"waypoints,omitempty"`
	BikeType    string          `json:"bikeType"`
	Preferences *PreferencesDTO `json:"preferences,omitempty"`
}

// PreferencesDTO carries rider routing preferences over the wire.
type PreferencesDTO struct {
	AvoidHighways   bool    `json:"avoidHighways"`
	AvoidTunnels    bool    `json:"avoidTunnels"`
	PreferBikePaths bool    `json:"preferBikePaths"`
	PreferNature    bool    `json:"preferNature"`
	MaxDistanceKm   float64 `json:"maxDistanceKm,omitempty"`
	MaxElevationM   float64 `json:"maxElevationM,omitempty"`
}

// Validate checks the compute request for structural errors, returning
// field errors suitable for an RFC7807 response.
func (r *ComputeRouteRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Start.Lat < -90 || r.Start.Lat > 90 || r.Start.Lon < -180 || r.Start.Lon > 180 {
		errs = append(errs, FieldError{Field: "start", Message: "coordinates out of range"})
	}
	if r.End.Lat < -90 || r.End.Lat > 90 || r.End.Lon < -180 || r.End.Lon > 180 {
		errs = append(errs, FieldError{Field: "end", Message: "coordinates out of range"})
	}
	if r.BikeType != "" && !route.BikeType(r.BikeType).Valid() {
		errs = append(errs, FieldError{Field: "bikeType", Message: "unknown bike type"})
	}
	return errs
}

// ToDomain converts the wire request into a domain computation request.
func (r *ComputeRouteRequest) ToDomain() route.Request {
	bikeType := route.BikeType(r.BikeType)
	if r.BikeType == "" {
		bikeType = route.BikeCity
	}

	req := route.Request{
		Start:    route.Coordinate{Lat: r.Start.Lat, Lon: r.Start.Lon},
		End:      route.Coordinate{Lat: r.End.Lat, Lon: r.End.Lon},
		BikeType: bikeType,
	}
	for _, wp := range r.Waypoints {
		req.Waypoints = append(req.Waypoints, route.Coordinate{Lat: wp.Lat, Lon: wp.Lon})
	}
	if r.Preferences != nil {
		req.Preferences = route.Preferences{
			AvoidHighways:   r.Preferences.AvoidHighways,
			AvoidTunnels:    r.Preferences.AvoidTunnels,
			PreferBikePaths: r.Preferences.PreferBikePaths,
			PreferNature:    r.Preferences.PreferNature,
			MaxDistanceKm:   r.Preferences.MaxDistanceKm,
			MaxElevationM:   r.Preferences.MaxElevationM,
		}
	}
	return req
}

// InstructionResponse is a single turn instruction in a route response.
type InstructionResponse struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	DistanceMeters float64 `json:"distanceMeters"`
	Point          Point   `json:"point"`
	Maneuver       string  `json:"maneuver"`
}

// RouteResponse is the wire representation of a computed route.
type RouteResponse struct {
	ID                string                `json:"id"`
	Start             Point                 `json:"start"`
	End               Point                 `json:"end"`
	Waypoints         []Point               `json:"waypoints,omitempty"`
	DistanceMeters    float64               `json:"distanceMeters"`
	DurationSeconds   float64               `json:"durationSeconds"`
	FormattedDuration string                `json:"formattedDuration"`
	Elevation         []float64             `json:"elevation,omitempty"`
	Instructions      []InstructionResponse `json:"instructions"`
	Polyline          []Point               `json:"polyline"`
	Difficulty        string                `json:"difficulty"`
	Surface           string                `json:"surface"`
	BikeType          string                `json:"bikeType"`
	CreatedAt         Timestamp             `json:"createdAt"`
	Favorite          bool                  `json:"favorite"`
}

// RouteListResponse is the response body for GET /v1/routes.
type RouteListResponse struct {
	Routes []RouteResponse `json:"routes"`
}

// ToRouteResponse converts a domain route into its wire representation.
func ToRouteResponse(r *route.Route) RouteResponse {
	resp := RouteResponse{
		ID:                r.ID,
		Start:             Point{Lat: r.Start.Lat, Lon: r.Start.Lon},
		End:               Point{Lat: r.End.Lat, Lon: r.End.Lon},
		DistanceMeters:    r.DistanceMeters,
		DurationSeconds:   r.DurationSeconds,
		FormattedDuration: r.FormattedDuration(),
		Elevation:         r.Elevation,
		Difficulty:        string(r.Difficulty),
		Surface:           string(r.Surface),
		BikeType:          string(r.BikeType),
		CreatedAt:         Timestamp(r.CreatedAt),
		Favorite:          r.Favorite,
	}
	for _, wp := range r.Waypoints {
		resp.Waypoints = append(resp.Waypoints, Point{Lat: wp.Lat, Lon: wp.Lon})
	}
	resp.Instructions = make([]InstructionResponse, 0, len(r.Instructions))
	for _, in := range r.Instructions {
		resp.Instructions = append(resp.Instructions, InstructionResponse{
			ID:             in.ID,
			Text:           in.Text,
			DistanceMeters: in.DistanceMeters,
			Point:          Point{Lat: in.Coordinate.Lat, Lon: in.Coordinate.Lon},
			Maneuver:       string(in.Maneuver),
		})
	}
	resp.Polyline = make([]Point, 0, len(r.Polyline))
	for _, p := range r.Polyline {
		resp.Polyline = append(resp.Polyline, Point{Lat: p.Lat, Lon: p.Lon})
	}
	return resp
}
