package route

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// Used for testing and offline-only deployments; production uses PostgresStore.
type InMemoryStore struct {
	mu     sync.RWMutex
	routes map[string]*Route
}

// NewInMemoryStore creates a new in-memory route store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		routes: make(map[string]*Route),
	}
}

// Save persists a route.
func (s *InMemoryStore) Save(_ context.Context, r *Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpy := *r
	s.routes[r.ID] = &cpy
	return nil
}

// Get retrieves a route by ID.
func (s *InMemoryStore) Get(_ context.Context, id string) (*Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}

	cpy := *r
	return &cpy, nil
}

// FetchRecent retrieves up to limit routes, newest first.
func (s *InMemoryStore) FetchRecent(_ context.Context, limit int) ([]*Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	all := make([]*Route, 0, len(s.routes))
	for _, r := range s.routes {
		cpy := *r
		all = append(all, &cpy)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Delete removes a route by ID.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.routes, id)
	return nil
}

// ToggleFavorite replaces the stored route with a copy carrying the flipped flag.
func (s *InMemoryStore) ToggleFavorite(_ context.Context, id string) (*Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}

	replacement := *r
	replacement.Favorite = !r.Favorite
	s.routes[id] = &replacement

	cpy := replacement
	return &cpy, nil
}

// Ensure InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)
