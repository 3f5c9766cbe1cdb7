// Package offline provides the last-resort route estimator, used when no
// network provider succeeds or when the system runs offline-only.
package offline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/internal/route"
	"github.com/cycleroute/cycleroute/pkg/polyline"
)

// ProviderName identifies the offline estimator.
const ProviderName = "offline-estimator"

// geometryIntervalMeters is the spacing of synthesized polyline points along
// each straight-line segment.
const geometryIntervalMeters = 250

// Estimator computes straight-line-segment routes through the requested
// waypoints with synthesized instructions, estimating duration from the bike
// type's fixed average speed. It never fails and performs no I/O.
type Estimator struct {
	logger zerolog.Logger
}

// NewEstimator creates an offline estimator.
func NewEstimator(logger zerolog.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// Name returns the provider name.
func (e *Estimator) Name() string {
	return ProviderName
}

// ComputeRoute returns a single straight-line candidate. Instructions are one
// start instruction, one "go straight" per waypoint, and one destination
// instruction; duration is total distance over the bike type's average speed.
func (e *Estimator) ComputeRoute(ctx context.Context, req route.Request) ([]route.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	anchors := make([]route.Coordinate, 0, len(req.Waypoints)+2)
	anchors = append(anchors, req.Start)
	anchors = append(anchors, req.Waypoints...)
	anchors = append(anchors, req.End)

	points := make([]polyline.Coordinate, len(anchors))
	for i, a := range anchors {
		points[i] = polyline.Coordinate{Lat: a.Lat, Lon: a.Lon}
	}

	distance := polyline.Length(points)
	speedMs := req.BikeType.AverageSpeedKmh() / 3.6
	duration := 0.0
	if speedMs > 0 {
		duration = distance / speedMs
	}

	instructions := make([]route.Instruction, 0, len(anchors))
	for i, a := range anchors {
		inst := route.Instruction{
			ID:         uuid.New().String(),
			Coordinate: a,
		}
		switch i {
		case 0:
			inst.Text = "Start your ride"
			inst.Maneuver = route.ManeuverStart
			inst.DistanceMeters = polyline.Distance(points[0], points[1])
		case len(anchors) - 1:
			inst.Text = "You have arrived at your destination"
			inst.Maneuver = route.ManeuverDestination
		default:
			inst.Text = "Go straight"
			inst.Maneuver = route.ManeuverStraight
			inst.DistanceMeters = polyline.Distance(points[i], points[i+1])
		}
		instructions = append(instructions, inst)
	}

	dense := polyline.Densify(points, geometryIntervalMeters)
	geometry := make([]route.Coordinate, len(dense))
	for i, p := range dense {
		geometry[i] = route.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}

	e.logger.Debug().
		Str("request_id", req.ID).
		Float64("distance_m", distance).
		Int("waypoints", len(req.Waypoints)).
		Msg("estimated straight-line route")

	return []route.Candidate{{
		Geometry:        geometry,
		DistanceMeters:  distance,
		DurationSeconds: duration,
		Instructions:    instructions,
		Surface:         route.DefaultSurface(req.BikeType),
	}}, nil
}

// Ensure Estimator implements route.Provider.
var _ route.Provider = (*Estimator)(nil)
