// Package polyline provides encoding and decoding utilities for Google's polyline algorithm,
// plus geometry helpers (haversine distance, densification, downsampling) used by the
// routing core. The algorithm is documented at:
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"
)

// Coordinate represents a geographic point with latitude and longitude.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Decode decodes a polyline-encoded string into a slice of coordinates.
// Uses precision 5 (standard Google/OSRM format).
func Decode(encoded string) []Coordinate {
	if encoded == "" {
		return nil
	}

	var coords []Coordinate
	index := 0
	lat := 0
	lon := 0

	for index < len(encoded) {
		latDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		lat += latDelta

		lonDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		lon += lonDelta

		coords = append(coords, Coordinate{
			Lat: float64(lat) / 1e5,
			Lon: float64(lon) / 1e5,
		})
	}

	return coords
}

// decodeValue decodes a single delta value starting at index.
// Returns the decoded delta and the new index position.
func decodeValue(encoded string, index int) (int, int) {
	shift := 0
	result := 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Two's complement for negative values
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// Encode encodes a slice of coordinates into a polyline-encoded string
// with precision 5.
func Encode(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(coords)*4)
	prevLat := 0
	prevLon := 0

	for _, coord := range coords {
		lat := int(math.Round(coord.Lat * 1e5))
		lon := int(math.Round(coord.Lon * 1e5))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(encoded)
}

// encodeValue appends a single delta value in polyline encoding.
func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}

// Decode3D decodes a polyline whose points carry a third elevation dimension,
// as emitted by OpenRouteService when elevation is requested. Lat/lon use
// precision 5, elevation precision 2. Returns the coordinates and the aligned
// per-point elevation profile in meters.
func Decode3D(encoded string) ([]Coordinate, []float64) {
	if encoded == "" {
		return nil, nil
	}

	var coords []Coordinate
	var elevations []float64
	index := 0
	lat := 0
	lon := 0
	ele := 0

	for index < len(encoded) {
		latDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		lat += latDelta

		lonDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		lon += lonDelta

		eleDelta, newIndex := decodeValue(encoded, index)
		index = newIndex
		ele += eleDelta

		coords = append(coords, Coordinate{
			Lat: float64(lat) / 1e5,
			Lon: float64(lon) / 1e5,
		})
		elevations = append(elevations, float64(ele)/1e2)
	}

	return coords, elevations
}

// Encode3D encodes coordinates with an aligned elevation profile into the
// three-dimensional polyline format decoded by Decode3D. Missing elevation
// values are treated as zero.
func Encode3D(coords []Coordinate, elevations []float64) string {
	if len(coords) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(coords)*6)
	prevLat := 0
	prevLon := 0
	prevEle := 0

	for i, coord := range coords {
		lat := int(math.Round(coord.Lat * 1e5))
		lon := int(math.Round(coord.Lon * 1e5))
		ele := 0
		if i < len(elevations) {
			ele = int(math.Round(elevations[i] * 1e2))
		}

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)
		encoded = encodeValue(encoded, ele-prevEle)

		prevLat = lat
		prevLon = lon
		prevEle = ele
	}

	return string(encoded)
}

// Length calculates the total length of a polyline in meters.
func Length(coords []Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1], coords[i])
	}
	return total
}

// Densify returns coordinates sampled at approximately the given interval along the
// polyline, always including the original first and last points. Used to synthesize
// geometry for straight-line segments.
func Densify(coords []Coordinate, intervalMeters float64) []Coordinate {
	if len(coords) == 0 {
		return nil
	}
	if intervalMeters <= 0 {
		return coords
	}

	sampled := []Coordinate{coords[0]}
	accumulated := 0.0

	for i := 1; i < len(coords); i++ {
		segmentDist := Distance(coords[i-1], coords[i])

		for accumulated+segmentDist >= intervalMeters {
			remaining := intervalMeters - accumulated
			fraction := remaining / segmentDist

			newLat := coords[i-1].Lat + fraction*(coords[i].Lat-coords[i-1].Lat)
			newLon := coords[i-1].Lon + fraction*(coords[i].Lon-coords[i-1].Lon)
			sampled = append(sampled, Coordinate{Lat: newLat, Lon: newLon})

			segmentDist -= remaining
			accumulated = 0
		}

		accumulated += segmentDist
	}

	last := coords[len(coords)-1]
	if sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}

	return sampled
}

// DownsampleIndices returns the indices of at most maxPoints evenly spaced points,
// always retaining the first and last index. Callers use the indices to thin a
// polyline and any per-point data aligned with it (e.g. an elevation profile).
func DownsampleIndices(n, maxPoints int) []int {
	if n <= 0 || maxPoints <= 0 {
		return nil
	}
	if n <= maxPoints {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if maxPoints == 1 {
		return []int{0}
	}

	idx := make([]int, maxPoints)
	step := float64(n-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints; i++ {
		idx[i] = int(math.Round(float64(i) * step))
	}
	idx[maxPoints-1] = n - 1
	return idx
}

const earthRadiusMeters = 6371000

// Distance calculates the haversine distance between two coordinates in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
