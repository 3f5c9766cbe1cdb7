package route

import "context"

// Store defines the persisted entity store for routes. The storage engine,
// schema, and migrations are the implementation's responsibility; the
// coordinator only depends on this interface.
type Store interface {
	// Save persists a route.
	Save(ctx context.Context, r *Route) error

	// Get retrieves a route by ID. Returns ErrRouteNotFound if absent.
	Get(ctx context.Context, id string) (*Route, error)

	// FetchRecent retrieves up to limit routes, most recently created first.
	FetchRecent(ctx context.Context, limit int) ([]*Route, error)

	// Delete removes a route by ID.
	Delete(ctx context.Context, id string) error

	// ToggleFavorite flips the favorite flag, replacing the persisted copy
	// rather than mutating it in place. Returns the replacement route.
	ToggleFavorite(ctx context.Context, id string) (*Route, error)
}
