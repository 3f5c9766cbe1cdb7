package route

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/pkg/polyline"
)

// EventKind identifies the outcome of a compute call.
type EventKind string

const (
	// EventCompleted signals a compute call produced a route.
	EventCompleted EventKind = "completed"
	// EventFailed signals a compute call failed terminally.
	EventFailed EventKind = "failed"
)

// Event is emitted once per compute call, replacing ambient observation of
// coordinator state with an explicit notification.
type Event struct {
	Kind      EventKind
	RequestID string
	RouteID   string
	Provider  string
	Err       error
}

// ServiceConfig holds configuration for the route coordinator.
type ServiceConfig struct {
	// Providers are tried strictly in order; the first success short-circuits
	// the chain. Wire only the offline estimator for offline-only operation.
	Providers []Provider

	// Scorer selects among multiple alternatives from a single provider call.
	Scorer *Scorer

	// Cache avoids recomputation for near-identical requests.
	Cache *Cache

	// Store is the persisted entity store for accepted routes.
	Store Store

	// Logger for coordinator operations.
	Logger zerolog.Logger

	// WorkingSetTrim is how many most-recently-created routes survive a
	// memory-pressure trim (default: 3).
	WorkingSetTrim int
}

// Service coordinates route computation: cache lookup, provider fallback,
// scoring, duplicate suppression, persistence, and cache population.
//
// The working set, calculating flag, and last error are shared mutable state
// guarded by a single mutex. The lock is never held across provider I/O or
// store writes.
type Service struct {
	providers []Provider
	scorer    *Scorer
	cache     *Cache
	store     Store
	logger    zerolog.Logger
	trimTo    int
	events    chan Event

	mu          sync.Mutex
	routes      []*Route // working set, creation order
	calculating bool
	lastErr     string
}

// NewService creates a route coordinator.
func NewService(cfg ServiceConfig) *Service {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	trimTo := cfg.WorkingSetTrim
	if trimTo <= 0 {
		trimTo = 3
	}

	return &Service{
		providers: cfg.Providers,
		scorer:    scorer,
		cache:     cfg.Cache,
		store:     cfg.Store,
		logger:    cfg.Logger,
		trimTo:    trimTo,
		events:    make(chan Event, 16),
	}
}

// Compute computes a route for the request.
//
// Endpoints are validated first; a cache hit returns without any provider
// call. On a miss, providers are invoked sequentially in priority order and
// the first success wins; individual provider failures are logged and cause
// fallthrough, not immediate failure. Only total exhaustion surfaces
// ErrAllProvidersFailed, carrying the last adapter's error as the cause.
func (s *Service) Compute(ctx context.Context, req Request) (*Route, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	if err := req.Start.Validate(); err != nil {
		s.failed(req, err)
		return nil, err
	}
	if err := req.End.Validate(); err != nil {
		s.failed(req, err)
		return nil, err
	}

	if s.cache != nil {
		if cached := s.cache.Get(req); cached != nil {
			s.logger.Debug().
				Str("request_id", req.ID).
				Str("route_id", cached.ID).
				Msg("returning cached route")
			s.emit(Event{Kind: EventCompleted, RequestID: req.ID, RouteID: cached.ID, Provider: "cache"})
			return cached, nil
		}
	}

	s.setCalculating(true)
	defer s.setCalculating(false)

	var lastErr error
	for _, provider := range s.providers {
		candidates, err := provider.ComputeRoute(ctx, req)

		// An abandoned call must not write partial results anywhere.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if err != nil {
			lastErr = err
			s.setLastError(err)
			s.logger.Warn().Err(err).
				Str("request_id", req.ID).
				Str("provider", provider.Name()).
				Msg("provider failed, trying next adapter")
			continue
		}
		if len(candidates) == 0 {
			lastErr = fmt.Errorf("%w: provider %s returned no candidates", ErrNoRouteFound, provider.Name())
			s.setLastError(lastErr)
			s.logger.Warn().
				Str("request_id", req.ID).
				Str("provider", provider.Name()).
				Msg("provider returned empty result, trying next adapter")
			continue
		}

		chosen := s.scorer.Select(candidates, req.BikeType, req.Preferences)
		r := s.buildRoute(req, chosen)

		s.admit(r)

		if err := s.store.Save(ctx, r); err != nil {
			// The computed route is still usable; persistence is best-effort here.
			s.logger.Error().Err(err).
				Str("route_id", r.ID).
				Msg("failed to persist route")
		}
		if s.cache != nil {
			s.cache.Put(req, r)
		}

		s.logger.Info().
			Str("request_id", req.ID).
			Str("route_id", r.ID).
			Str("provider", provider.Name()).
			Float64("distance_m", r.DistanceMeters).
			Int("alternatives", len(candidates)).
			Msg("route computed")

		s.emit(Event{Kind: EventCompleted, RequestID: req.ID, RouteID: r.ID, Provider: provider.Name()})
		return r, nil
	}

	var err error
	if lastErr != nil {
		err = fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
	} else {
		err = fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}
	s.setLastError(err)
	s.failed(req, err)
	return nil, err
}

// buildRoute shapes a selected candidate into an immutable Route, capping the
// polyline at MaxPolylinePoints and keeping the elevation profile aligned.
func (s *Service) buildRoute(req Request, c Candidate) *Route {
	geometry := c.Geometry
	elevation := c.Elevation
	if len(elevation) != len(geometry) {
		// Misaligned profiles are dropped: the invariant is 0 or 1:1.
		elevation = nil
	}

	if len(geometry) > MaxPolylinePoints {
		indices := polyline.DownsampleIndices(len(geometry), MaxPolylinePoints)
		thinned := make([]Coordinate, len(indices))
		var thinnedElev []float64
		if elevation != nil {
			thinnedElev = make([]float64, len(indices))
		}
		for i, idx := range indices {
			thinned[i] = geometry[idx]
			if thinnedElev != nil {
				thinnedElev[i] = elevation[idx]
			}
		}
		geometry = thinned
		elevation = thinnedElev
	}

	instructions := c.Instructions
	if n := len(instructions); n > 0 && instructions[n-1].Maneuver != ManeuverDestination {
		instructions = append(instructions, Instruction{
			ID:         uuid.New().String(),
			Text:       "You have arrived at your destination",
			Coordinate: req.End,
			Maneuver:   ManeuverDestination,
		})
	}

	surface := c.Surface
	if surface == "" {
		surface = DefaultSurface(req.BikeType)
	}

	return &Route{
		ID:              uuid.New().String(),
		Start:           req.Start,
		End:             req.End,
		Waypoints:       req.Waypoints,
		DistanceMeters:  c.DistanceMeters,
		DurationSeconds: c.DurationSeconds,
		Elevation:       elevation,
		Instructions:    instructions,
		Polyline:        geometry,
		Difficulty:      ClassifyDifficulty(req.BikeType, c.DistanceMeters, c.ElevationGainM),
		Surface:         surface,
		BikeType:        req.BikeType,
		CreatedAt:       time.Now(),
	}
}

// admit appends the route to the working set unless an existing entry's start
// and end both match within CoordTolerance. Duplicates are discarded so
// repeated identical requests cannot grow the set unboundedly. The check and
// append happen under one lock so concurrent near-identical requests are
// linearized.
func (s *Service) admit(r *Route) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.routes {
		if existing.Start.Near(r.Start, CoordTolerance) && existing.End.Near(r.End, CoordTolerance) {
			s.logger.Debug().
				Str("route_id", r.ID).
				Str("duplicate_of", existing.ID).
				Msg("duplicate route suppressed")
			return
		}
	}
	s.routes = append(s.routes, r)
}

// Routes returns a snapshot of the in-memory working set.
func (s *Service) Routes() []*Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]*Route, len(s.routes))
	copy(snapshot, s.routes)
	return snapshot
}

// IsCalculating reports whether a provider chain is currently in flight.
func (s *Service) IsCalculating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calculating
}

// LastError returns the most recent provider or validation error message,
// empty if none occurred.
func (s *Service) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnMemoryPressure trims the working set to the configured number of
// most-recently-created routes. Invoked explicitly by the host environment.
func (s *Service) OnMemoryPressure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.routes) <= s.trimTo {
		return
	}

	trimmed := len(s.routes) - s.trimTo
	s.routes = append([]*Route(nil), s.routes[len(s.routes)-s.trimTo:]...)
	s.logger.Info().
		Int("trimmed", trimmed).
		Int("kept", s.trimTo).
		Msg("working set trimmed under memory pressure")
}

// Events returns the coordinator's event stream. One event is emitted per
// compute call; slow consumers may miss events, the channel never blocks
// computation.
func (s *Service) Events() <-chan Event {
	return s.events
}

func (s *Service) emit(e Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Debug().Str("request_id", e.RequestID).Msg("event channel full, dropping event")
	}
}

func (s *Service) failed(req Request, err error) {
	s.emit(Event{Kind: EventFailed, RequestID: req.ID, Err: err})
}

func (s *Service) setCalculating(v bool) {
	s.mu.Lock()
	s.calculating = v
	s.mu.Unlock()
}

func (s *Service) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}
