package route

import "context"

// Provider defines the interface for routing backend adapters.
//
// ComputeRoute returns one or more route candidates. Timeouts are caller-imposed
// through the context so the coordinator's fallback chain is never blocked
// indefinitely; adapters must respect cancellation.
type Provider interface {
	// ComputeRoute computes route candidates for the request. An empty result
	// with nil error is not allowed: adapters return ErrNoRouteFound instead.
	ComputeRoute(ctx context.Context, req Request) ([]Candidate, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Candidate is a raw route alternative produced by a single provider call,
// before scoring selects one and the coordinator shapes it into a Route.
type Candidate struct {
	Geometry        []Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Instructions    []Instruction
	Elevation       []float64 // per-point profile, empty when the provider has none
	ElevationGainM  float64
	ElevationLossM  float64
	Surface         Surface
}
