package osrm

// osrmResponse represents the OSRM route service response.
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

// osrmRoute represents a single route alternative.
type osrmRoute struct {
	Geometry string    `json:"geometry"` // encoded polyline, precision 5
	Distance float64   `json:"distance"` // meters
	Duration float64   `json:"duration"` // seconds
	Legs     []osrmLeg `json:"legs"`
}

// osrmLeg is the portion of a route between two consecutive input coordinates.
type osrmLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []osrmStep `json:"steps"`
}

// osrmStep is a single maneuver with its following way.
type osrmStep struct {
	Name     string       `json:"name"`
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Maneuver osrmManeuver `json:"maneuver"`
}

// osrmManeuver describes the maneuver at the start of a step.
type osrmManeuver struct {
	Type     string    `json:"type"`
	Modifier string    `json:"modifier,omitempty"`
	Location []float64 `json:"location"` // [lon, lat]
}
