package route

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a scripted provider adapter with an invocation counter.
type stubProvider struct {
	name       string
	candidates []Candidate
	err        error
	calls      atomic.Int32
	compute    func(ctx context.Context, req Request) ([]Candidate, error)
}

func (p *stubProvider) ComputeRoute(ctx context.Context, req Request) ([]Candidate, error) {
	p.calls.Add(1)
	if p.compute != nil {
		return p.compute(ctx, req)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.candidates, nil
}

func (p *stubProvider) Name() string {
	return p.name
}

func simpleCandidate() Candidate {
	return Candidate{
		Geometry: []Coordinate{
			{Lat: 52.3702, Lon: 4.8952},
			{Lat: 52.0907, Lon: 5.1214},
		},
		DistanceMeters:  35200,
		DurationSeconds: 8448,
		Instructions: []Instruction{
			{ID: "i1", Text: "Start your ride", Maneuver: ManeuverStart},
			{ID: "i2", Text: "You have arrived at your destination", Maneuver: ManeuverDestination},
		},
	}
}

func computeRequest() Request {
	return Request{
		Start:    Coordinate{Lat: 52.3702, Lon: 4.8952},
		End:      Coordinate{Lat: 52.0907, Lon: 5.1214},
		BikeType: BikeCity,
	}
}

func newTestService(cfg ServiceConfig) *Service {
	cfg.Logger = zerolog.Nop()
	if cfg.Store == nil {
		cfg.Store = NewInMemoryStore()
	}
	return NewService(cfg)
}

func TestService_ComputeSuccess(t *testing.T) {
	provider := &stubProvider{name: "primary", candidates: []Candidate{simpleCandidate()}}
	store := NewInMemoryStore()
	svc := newTestService(ServiceConfig{
		Providers: []Provider{provider},
		Store:     store,
	})

	r, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 35200.0, r.DistanceMeters)
	assert.Equal(t, BikeCity, r.BikeType)
	assert.Equal(t, int32(1), provider.calls.Load())

	// Route is persisted.
	saved, err := store.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, saved.ID)

	// And admitted to the working set.
	assert.Len(t, svc.Routes(), 1)
}

func TestService_CacheHitSkipsProviders(t *testing.T) {
	provider := &stubProvider{name: "primary", candidates: []Candidate{simpleCandidate()}}
	svc := newTestService(ServiceConfig{
		Providers: []Provider{provider},
		Cache:     NewCache(CacheConfig{Logger: zerolog.Nop()}),
	})

	first, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)

	second, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), provider.calls.Load(), "second call must be served from cache")
}

func TestService_FallbackOrder(t *testing.T) {
	failing := &stubProvider{name: "primary", err: ErrProviderUnavailable}
	succeeding := &stubProvider{name: "fallback", candidates: []Candidate{simpleCandidate()}}
	svc := newTestService(ServiceConfig{
		Providers: []Provider{failing, succeeding},
	})

	r, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), succeeding.calls.Load())
}

func TestService_EmptyCandidatesFallThrough(t *testing.T) {
	empty := &stubProvider{name: "primary", candidates: nil}
	succeeding := &stubProvider{name: "fallback", candidates: []Candidate{simpleCandidate()}}
	svc := newTestService(ServiceConfig{
		Providers: []Provider{empty, succeeding},
	})

	_, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(1), succeeding.calls.Load())
}

func TestService_AllProvidersFailed(t *testing.T) {
	cause := errors.New("upstream exploded")
	first := &stubProvider{name: "primary", err: ErrProviderUnavailable}
	last := &stubProvider{name: "fallback", err: cause}
	svc := newTestService(ServiceConfig{
		Providers: []Provider{first, last},
	})

	_, err := svc.Compute(context.Background(), computeRequest())
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.ErrorIs(t, err, cause, "error must carry the last adapter's cause")
	assert.NotEmpty(t, svc.LastError())
}

func TestService_NoProvidersConfigured(t *testing.T) {
	svc := newTestService(ServiceConfig{})

	_, err := svc.Compute(context.Background(), computeRequest())
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestService_InvalidCoordinates(t *testing.T) {
	provider := &stubProvider{name: "primary", candidates: []Candidate{simpleCandidate()}}
	svc := newTestService(ServiceConfig{Providers: []Provider{provider}})

	req := computeRequest()
	req.Start.Lat = 91

	_, err := svc.Compute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	assert.Equal(t, int32(0), provider.calls.Load(), "validation must precede provider calls")
}

func TestService_ContextCancelledDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	provider := &stubProvider{
		name: "primary",
		compute: func(context.Context, Request) ([]Candidate, error) {
			cancel() // cancelled while the provider call is in flight
			return []Candidate{simpleCandidate()}, nil
		},
	}
	store := NewInMemoryStore()
	svc := newTestService(ServiceConfig{
		Providers: []Provider{provider},
		Store:     store,
	})

	_, err := svc.Compute(ctx, computeRequest())
	assert.ErrorIs(t, err, context.Canceled)

	// No partial writes anywhere.
	assert.Empty(t, svc.Routes())
	recent, err := store.FetchRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestService_DuplicateSuppression(t *testing.T) {
	provider := &stubProvider{name: "primary", candidates: []Candidate{simpleCandidate()}}
	// No cache: both calls reach the provider, the second route is a duplicate.
	svc := newTestService(ServiceConfig{Providers: []Provider{provider}})

	first, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)

	req := computeRequest()
	req.Start.Lat += CoordTolerance / 2
	second, err := svc.Compute(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, svc.Routes(), 1, "near-identical route must not grow the working set")
}

func TestService_OnMemoryPressure(t *testing.T) {
	provider := &stubProvider{name: "primary", candidates: []Candidate{simpleCandidate()}}
	svc := newTestService(ServiceConfig{
		Providers:      []Provider{provider},
		WorkingSetTrim: 3,
	})

	for i := 0; i < 6; i++ {
		req := computeRequest()
		// Far enough apart to defeat duplicate suppression.
		req.Start.Lat += float64(i) * 0.01
		_, err := svc.Compute(context.Background(), req)
		require.NoError(t, err)
	}
	require.Len(t, svc.Routes(), 6)

	svc.OnMemoryPressure()

	routes := svc.Routes()
	require.Len(t, routes, 3)
	// The newest routes survive.
	for i := 1; i < len(routes); i++ {
		assert.False(t, routes[i].CreatedAt.Before(routes[i-1].CreatedAt))
	}
}

func TestService_Events(t *testing.T) {
	provider := &stubProvider{name: "primary", candidates: []Candidate{simpleCandidate()}}
	svc := newTestService(ServiceConfig{Providers: []Provider{provider}})

	r, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)

	select {
	case ev := <-svc.Events():
		assert.Equal(t, EventCompleted, ev.Kind)
		assert.Equal(t, r.ID, ev.RouteID)
		assert.Equal(t, "primary", ev.Provider)
	case <-time.After(time.Second):
		t.Fatal("expected a completed event")
	}

	req := computeRequest()
	req.End.Lon = 200
	_, err = svc.Compute(context.Background(), req)
	require.Error(t, err)

	select {
	case ev := <-svc.Events():
		assert.Equal(t, EventFailed, ev.Kind)
		assert.ErrorIs(t, ev.Err, ErrInvalidCoordinates)
	case <-time.After(time.Second):
		t.Fatal("expected a failed event")
	}
}

func TestService_BuildRouteShaping(t *testing.T) {
	// 1000 geometry points with an aligned elevation profile, instructions
	// missing the terminal destination step.
	candidate := Candidate{
		DistanceMeters:  42000,
		DurationSeconds: 9000,
		Instructions: []Instruction{
			{ID: "i1", Text: "Start your ride", Maneuver: ManeuverStart},
			{ID: "i2", Text: "Turn left onto Elm Road", Maneuver: ManeuverTurnLeft},
		},
	}
	for i := 0; i < 1000; i++ {
		candidate.Geometry = append(candidate.Geometry, Coordinate{
			Lat: 52.0 + float64(i)*0.0005,
			Lon: 4.9,
		})
		candidate.Elevation = append(candidate.Elevation, float64(i))
	}

	provider := &stubProvider{name: "primary", candidates: []Candidate{candidate}}
	svc := newTestService(ServiceConfig{Providers: []Provider{provider}})

	r, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)

	assert.Len(t, r.Polyline, MaxPolylinePoints)
	assert.Len(t, r.Elevation, MaxPolylinePoints, "elevation must stay aligned with the thinned polyline")

	// First and last geometry points are preserved by thinning.
	assert.Equal(t, candidate.Geometry[0], r.Polyline[0])
	assert.Equal(t, candidate.Geometry[999], r.Polyline[MaxPolylinePoints-1])
	assert.Equal(t, 0.0, r.Elevation[0])
	assert.Equal(t, 999.0, r.Elevation[MaxPolylinePoints-1])

	// A destination instruction is appended when missing.
	last := r.Instructions[len(r.Instructions)-1]
	assert.Equal(t, ManeuverDestination, last.Maneuver)

	// Surface falls back to the bike type default.
	assert.Equal(t, SurfaceAsphalt, r.Surface)
}

func TestService_BuildRouteDropsMisalignedElevation(t *testing.T) {
	candidate := simpleCandidate()
	candidate.Elevation = []float64{1.0} // 1 sample for 2 geometry points

	provider := &stubProvider{name: "primary", candidates: []Candidate{candidate}}
	svc := newTestService(ServiceConfig{Providers: []Provider{provider}})

	r, err := svc.Compute(context.Background(), computeRequest())
	require.NoError(t, err)
	assert.Empty(t, r.Elevation)
}

func TestService_IsCalculating(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	provider := &stubProvider{
		name: "primary",
		compute: func(context.Context, Request) ([]Candidate, error) {
			close(started)
			<-release
			return []Candidate{simpleCandidate()}, nil
		},
	}
	svc := newTestService(ServiceConfig{Providers: []Provider{provider}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Compute(context.Background(), computeRequest())
	}()

	<-started
	assert.True(t, svc.IsCalculating())
	close(release)
	<-done
	assert.False(t, svc.IsCalculating())
}
