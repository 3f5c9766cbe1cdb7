package route

import (
	"time"

	"github.com/cycleroute/cycleroute/pkg/polyline"
)

// TrackPoint is one sample of an exported track log.
type TrackPoint struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Elevation float64   `json:"elevation"`
	Time      time.Time `json:"time"`
}

// TrackLog is a simple track-log export for interoperability with third-party
// tools: an ordered list of coordinate/elevation/timestamp triples plus route
// metadata.
type TrackLog struct {
	RouteID         string       `json:"route_id"`
	BikeType        BikeType     `json:"bike_type"`
	DistanceMeters  float64      `json:"distance_m"`
	DurationSeconds float64      `json:"duration_s"`
	Difficulty      Difficulty   `json:"difficulty"`
	Surface         Surface      `json:"surface"`
	CreatedAt       time.Time    `json:"created_at"`
	Points          []TrackPoint `json:"points"`
}

// ExportTrackLog builds a track log from a route. Timestamps are synthesized
// by spreading the route duration along the polyline proportionally to the
// distance covered; elevation is taken from the aligned profile when present.
func ExportTrackLog(r *Route) *TrackLog {
	log := &TrackLog{
		RouteID:         r.ID,
		BikeType:        r.BikeType,
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		Difficulty:      r.Difficulty,
		Surface:         r.Surface,
		CreatedAt:       r.CreatedAt,
	}

	if len(r.Polyline) == 0 {
		return log
	}

	total := geometryLength(r.Polyline)
	hasElevation := len(r.Elevation) == len(r.Polyline)

	covered := 0.0
	log.Points = make([]TrackPoint, 0, len(r.Polyline))
	for i, p := range r.Polyline {
		if i > 0 {
			covered += polyline.Distance(
				polyline.Coordinate{Lat: r.Polyline[i-1].Lat, Lon: r.Polyline[i-1].Lon},
				polyline.Coordinate{Lat: p.Lat, Lon: p.Lon},
			)
		}

		fraction := 0.0
		if total > 0 {
			fraction = covered / total
		}

		point := TrackPoint{
			Lat:  p.Lat,
			Lon:  p.Lon,
			Time: r.CreatedAt.Add(time.Duration(fraction * r.DurationSeconds * float64(time.Second))),
		}
		if hasElevation {
			point.Elevation = r.Elevation[i]
		}
		log.Points = append(log.Points, point)
	}

	return log
}

func geometryLength(coords []Coordinate) float64 {
	pts := make([]polyline.Coordinate, len(coords))
	for i, c := range coords {
		pts[i] = polyline.Coordinate{Lat: c.Lat, Lon: c.Lon}
	}
	return polyline.Length(pts)
}
