package route

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Codec encodes and decodes routes to and from their storage representation.
//
// Two historical formats coexist in persisted data: the current binary
// object-graph format (gob) and a legacy structured-JSON format. The stored
// bytes carry no version tag (the legacy data predates one), so Decode probes
// the current format first and falls back to the legacy one. Encode always
// emits the current format.
//
// The three geometry sub-payloads (polyline, instructions, elevation profile)
// are decoded independently: corruption in one yields an empty slice for that
// field, not a total decode failure.
type Codec struct {
	logger zerolog.Logger
}

// NewCodec creates a route codec.
func NewCodec(logger zerolog.Logger) *Codec {
	return &Codec{logger: logger}
}

// binaryRoute is the current persisted envelope. The geometry sub-payloads
// are held as independently gob-encoded byte slices so a corrupt one cannot
// poison the rest of the record.
type binaryRoute struct {
	ID              string
	StartLat        float64
	StartLon        float64
	EndLat          float64
	EndLon          float64
	Waypoints       []Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Difficulty      string
	Surface         string
	BikeType        string
	CreatedAt       time.Time
	Favorite        bool
	Polyline        []byte
	Instructions    []byte
	Elevation       []byte
}

// legacyRoute is one record of the legacy JSON format: a top-level array of
// route records with raw sub-payloads.
type legacyRoute struct {
	ID              string          `json:"id"`
	StartLat        float64         `json:"start_lat"`
	StartLon        float64         `json:"start_lon"`
	EndLat          float64         `json:"end_lat"`
	EndLon          float64         `json:"end_lon"`
	Waypoints       json.RawMessage `json:"waypoints"`
	DistanceMeters  float64         `json:"distance_m"`
	DurationSeconds float64         `json:"duration_s"`
	Difficulty      string          `json:"difficulty"`
	Surface         string          `json:"surface"`
	BikeType        string          `json:"bike_type"`
	CreatedAt       time.Time       `json:"created_at"`
	Favorite        bool            `json:"favorite"`
	Polyline        json.RawMessage `json:"polyline"`
	Instructions    json.RawMessage `json:"instructions"`
	Elevation       json.RawMessage `json:"elevation"`
}

// legacyCoordinate and legacyInstruction mirror the legacy field names.
type legacyCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type legacyInstruction struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	DistanceMeters float64 `json:"distance_m"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Maneuver       string  `json:"maneuver"`
}

// Encode serializes a route in the current binary format.
func (c *Codec) Encode(r *Route) ([]byte, error) {
	polylineData, err := gobEncode(r.Polyline)
	if err != nil {
		return nil, fmt.Errorf("encoding polyline: %w", err)
	}
	instructionData, err := gobEncode(r.Instructions)
	if err != nil {
		return nil, fmt.Errorf("encoding instructions: %w", err)
	}
	elevationData, err := gobEncode(r.Elevation)
	if err != nil {
		return nil, fmt.Errorf("encoding elevation profile: %w", err)
	}

	envelope := binaryRoute{
		ID:              r.ID,
		StartLat:        r.Start.Lat,
		StartLon:        r.Start.Lon,
		EndLat:          r.End.Lat,
		EndLon:          r.End.Lon,
		Waypoints:       r.Waypoints,
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		Difficulty:      string(r.Difficulty),
		Surface:         string(r.Surface),
		BikeType:        string(r.BikeType),
		CreatedAt:       r.CreatedAt,
		Favorite:        r.Favorite,
		Polyline:        polylineData,
		Instructions:    instructionData,
		Elevation:       elevationData,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&envelope); err != nil {
		return nil, fmt.Errorf("encoding route envelope: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes persisted route data, probing the current binary format
// first and the legacy JSON format second. Returns ErrUnrecognizedFormat when
// neither matches.
func (c *Codec) Decode(data []byte) (*Route, error) {
	if r, err := c.decodeBinary(data); err == nil {
		return r, nil
	}

	if r, err := c.decodeLegacy(data); err == nil {
		return r, nil
	}

	return nil, ErrUnrecognizedFormat
}

func (c *Codec) decodeBinary(data []byte) (*Route, error) {
	var envelope binaryRoute
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding route envelope: %w", err)
	}

	r := &Route{
		ID:              envelope.ID,
		Start:           Coordinate{Lat: envelope.StartLat, Lon: envelope.StartLon},
		End:             Coordinate{Lat: envelope.EndLat, Lon: envelope.EndLon},
		Waypoints:       envelope.Waypoints,
		DistanceMeters:  envelope.DistanceMeters,
		DurationSeconds: envelope.DurationSeconds,
		Difficulty:      Difficulty(envelope.Difficulty),
		Surface:         Surface(envelope.Surface),
		BikeType:        BikeType(envelope.BikeType),
		CreatedAt:       envelope.CreatedAt,
		Favorite:        envelope.Favorite,
	}

	if err := gobDecode(envelope.Polyline, &r.Polyline); err != nil {
		c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt polyline payload, substituting empty")
		r.Polyline = nil
	}
	if err := gobDecode(envelope.Instructions, &r.Instructions); err != nil {
		c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt instruction payload, substituting empty")
		r.Instructions = nil
	}
	if err := gobDecode(envelope.Elevation, &r.Elevation); err != nil {
		c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt elevation payload, substituting empty")
		r.Elevation = nil
	}

	return r, nil
}

func (c *Codec) decodeLegacy(data []byte) (*Route, error) {
	// The legacy format is recognized by successfully parsing a top-level
	// array of route records with the expected field names.
	var records []legacyRoute
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding legacy records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("legacy payload contains no records")
	}

	rec := records[0]
	// Any JSON array of objects parses above; only records that carry the
	// legacy id field are actually legacy routes.
	if rec.ID == "" {
		return nil, fmt.Errorf("legacy record missing id")
	}

	r := &Route{
		ID:              rec.ID,
		Start:           Coordinate{Lat: rec.StartLat, Lon: rec.StartLon},
		End:             Coordinate{Lat: rec.EndLat, Lon: rec.EndLon},
		DistanceMeters:  rec.DistanceMeters,
		DurationSeconds: rec.DurationSeconds,
		Difficulty:      Difficulty(rec.Difficulty),
		Surface:         Surface(rec.Surface),
		BikeType:        BikeType(rec.BikeType),
		CreatedAt:       rec.CreatedAt,
		Favorite:        rec.Favorite,
	}

	if len(rec.Waypoints) > 0 {
		var waypoints []legacyCoordinate
		if err := json.Unmarshal(rec.Waypoints, &waypoints); err == nil {
			for _, w := range waypoints {
				r.Waypoints = append(r.Waypoints, Coordinate{Lat: w.Lat, Lon: w.Lon})
			}
		} else {
			c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt legacy waypoints, substituting empty")
		}
	}

	if len(rec.Polyline) > 0 {
		var points []legacyCoordinate
		if err := json.Unmarshal(rec.Polyline, &points); err == nil {
			for _, p := range points {
				r.Polyline = append(r.Polyline, Coordinate{Lat: p.Lat, Lon: p.Lon})
			}
		} else {
			c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt legacy polyline, substituting empty")
		}
	}

	if len(rec.Instructions) > 0 {
		var instructions []legacyInstruction
		if err := json.Unmarshal(rec.Instructions, &instructions); err == nil {
			for _, inst := range instructions {
				r.Instructions = append(r.Instructions, Instruction{
					ID:             inst.ID,
					Text:           inst.Text,
					DistanceMeters: inst.DistanceMeters,
					Coordinate:     Coordinate{Lat: inst.Lat, Lon: inst.Lon},
					Maneuver:       Maneuver(inst.Maneuver),
				})
			}
		} else {
			c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt legacy instructions, substituting empty")
		}
	}

	if len(rec.Elevation) > 0 {
		var elevation []float64
		if err := json.Unmarshal(rec.Elevation, &elevation); err == nil {
			r.Elevation = elevation
		} else {
			c.logger.Warn().Err(err).Str("route_id", r.ID).Msg("corrupt legacy elevation, substituting empty")
		}
	}

	return r, nil
}

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
