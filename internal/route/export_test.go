package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportTrackLog(t *testing.T) {
	created := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	r := &Route{
		ID:              "r1",
		BikeType:        BikeRoad,
		DistanceMeters:  20000,
		DurationSeconds: 3600,
		Difficulty:      DifficultyEasy,
		Surface:         SurfaceAsphalt,
		CreatedAt:       created,
		Polyline: []Coordinate{
			{Lat: 52.0, Lon: 4.9},
			{Lat: 52.09, Lon: 4.9},
			{Lat: 52.18, Lon: 4.9},
		},
		Elevation: []float64{1, 2, 3},
	}

	log := ExportTrackLog(r)

	assert.Equal(t, "r1", log.RouteID)
	assert.Equal(t, BikeRoad, log.BikeType)
	require.Len(t, log.Points, 3)

	// First point starts at creation time, last ends a full duration later.
	assert.Equal(t, created, log.Points[0].Time)
	assert.Equal(t, created.Add(time.Hour), log.Points[2].Time)

	// Equidistant segments place the middle point halfway through.
	mid := log.Points[1].Time.Sub(created)
	assert.InDelta(t, (30 * time.Minute).Seconds(), mid.Seconds(), 60)

	// Elevation is carried through when aligned.
	assert.Equal(t, 2.0, log.Points[1].Elevation)

	// Timestamps are monotonically non-decreasing.
	for i := 1; i < len(log.Points); i++ {
		assert.False(t, log.Points[i].Time.Before(log.Points[i-1].Time))
	}
}

func TestExportTrackLog_EmptyPolyline(t *testing.T) {
	log := ExportTrackLog(&Route{ID: "r1"})
	assert.Equal(t, "r1", log.RouteID)
	assert.Empty(t, log.Points)
}

func TestExportTrackLog_MisalignedElevationOmitted(t *testing.T) {
	r := &Route{
		ID:              "r1",
		DurationSeconds: 600,
		CreatedAt:       time.Now(),
		Polyline: []Coordinate{
			{Lat: 52.0, Lon: 4.9},
			{Lat: 52.01, Lon: 4.9},
		},
		Elevation: []float64{5},
	}

	log := ExportTrackLog(r)
	require.Len(t, log.Points, 2)
	assert.Zero(t, log.Points[0].Elevation)
	assert.Zero(t, log.Points[1].Elevation)
}
