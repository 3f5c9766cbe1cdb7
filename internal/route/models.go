// Package route provides bicycle route computation: domain models, provider
// orchestration with fallback, suitability scoring, caching, and persistence codecs.
package route

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for route operations.
var (
	// ErrInvalidCoordinates indicates the provided coordinates are malformed or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrNoRouteFound indicates the provider was reached but produced no usable path.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrProviderUnavailable indicates the provider could not be reached or timed out.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrInvalidResponse indicates the provider returned a payload that could not be decoded.
	ErrInvalidResponse = errors.New("invalid provider response")
	// ErrAllProvidersFailed indicates every adapter in the fallback chain failed.
	ErrAllProvidersFailed = errors.New("all routing providers failed")
	// ErrRouteNotFound indicates the requested route does not exist in the store.
	ErrRouteNotFound = errors.New("route not found")
	// ErrUnrecognizedFormat indicates persisted route data matches neither known format.
	ErrUnrecognizedFormat = errors.New("unrecognized route data format")
)

// MaxPolylinePoints caps stored route geometry for memory bounds.
const MaxPolylinePoints = 300

// CoordTolerance is the tolerance for coordinate equality checks, roughly 11 meters.
const CoordTolerance = 0.0001

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Validate checks the coordinate is within latitude/longitude bounds.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinates, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinates, c.Lon)
	}
	return nil
}

// Near reports whether the coordinate is within tolerance degrees of other
// on both axes.
func (c Coordinate) Near(other Coordinate, tolerance float64) bool {
	dLat := c.Lat - other.Lat
	if dLat < 0 {
		dLat = -dLat
	}
	dLon := c.Lon - other.Lon
	if dLon < 0 {
		dLon = -dLon
	}
	return dLat <= tolerance && dLon <= tolerance
}

// BikeType identifies the bicycle category a route is computed for.
type BikeType string

const (
	BikeCity     BikeType = "city"
	BikeMountain BikeType = "mountain"
	BikeRoad     BikeType = "road"
	BikeElectric BikeType = "electric"
	BikeCargo    BikeType = "cargo"
)

// averageSpeeds is the shared cycling-duration model in km/h, used by both
// duration estimation and difficulty classification.
var averageSpeeds = map[BikeType]float64{
	BikeCity:     15,
	BikeMountain: 12,
	BikeRoad:     25,
	BikeElectric: 22,
	BikeCargo:    12,
}

// AverageSpeedKmh returns the fixed average speed for the bike type.
// Unknown types fall back to the city speed.
func (b BikeType) AverageSpeedKmh() float64 {
	if v, ok := averageSpeeds[b]; ok {
		return v
	}
	return averageSpeeds[BikeCity]
}

// Valid reports whether the bike type is a known value.
func (b BikeType) Valid() bool {
	_, ok := averageSpeeds[b]
	return ok
}

// Difficulty classifies how demanding a route is.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExpert   Difficulty = "expert"
)

// Surface classifies the dominant surface of a route.
type Surface string

const (
	SurfaceAsphalt Surface = "asphalt"
	SurfaceGravel  Surface = "gravel"
	SurfaceDirt    Surface = "dirt"
	SurfaceMixed   Surface = "mixed"
)

// Maneuver identifies the type of a turn instruction.
type Maneuver string

const (
	ManeuverStart       Maneuver = "start"
	ManeuverTurnLeft    Maneuver = "turn-left"
	ManeuverTurnRight   Maneuver = "turn-right"
	ManeuverStraight    Maneuver = "straight"
	ManeuverDestination Maneuver = "destination"
	ManeuverRoundabout  Maneuver = "roundabout"
	ManeuverUTurn       Maneuver = "u-turn"
)

// Preferences holds the rider's routing preferences. Pure configuration, no identity.
type Preferences struct {
	AvoidHighways   bool
	AvoidTunnels    bool
	PreferBikePaths bool
	PreferNature    bool
	MaxDistanceKm   float64
	MaxElevationM   float64
}

// Request is an immutable route computation request.
type Request struct {
	ID          string
	Start       Coordinate
	End         Coordinate
	Waypoints   []Coordinate
	BikeType    BikeType
	Preferences Preferences
	CreatedAt   time.Time
}

// Instruction is a single turn-by-turn instruction. Instructions are ordered;
// the last instruction of a route always has ManeuverDestination.
type Instruction struct {
	ID             string
	Text           string
	DistanceMeters float64
	Coordinate     Coordinate
	Maneuver       Maneuver
}

// Route is a computed route. It is read-only after creation: mutations such as
// toggling the favorite flag produce a replaced copy, never in-place edits.
//
// Invariants: the polyline starts and ends within CoordTolerance of Start/End,
// DistanceMeters and DurationSeconds are non-negative, and the elevation profile
// is either empty or aligned one-to-one with the polyline.
type Route struct {
	ID              string
	Start           Coordinate
	End             Coordinate
	Waypoints       []Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Elevation       []float64 // meters, aligned with Polyline when non-empty
	Instructions    []Instruction
	Polyline        []Coordinate // capped at MaxPolylinePoints
	Difficulty      Difficulty
	Surface         Surface
	BikeType        BikeType
	CreatedAt       time.Time
	Favorite        bool
}

// DistanceKm returns the total distance in kilometers.
func (r *Route) DistanceKm() float64 {
	return r.DistanceMeters / 1000
}

// FormattedDuration renders the duration as "1h 23m" or "23m".
func (r *Route) FormattedDuration() string {
	total := int(r.DurationSeconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// ProviderError provides detailed error information from a routing provider.
type ProviderError struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying sentinel error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the next adapter
// in the fallback chain should be tried.
func (e *ProviderError) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrInvalidResponse)
}
