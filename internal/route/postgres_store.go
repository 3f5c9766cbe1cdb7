package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of Store. Route geometry is
// stored as a codec-encoded payload alongside scalar columns used for listing.
type PostgresStore struct {
	pool  *pgxpool.Pool
	codec *Codec
}

// NewPostgresStore creates a new PostgreSQL route store.
func NewPostgresStore(pool *pgxpool.Pool, codec *Codec) *PostgresStore {
	return &PostgresStore{pool: pool, codec: codec}
}

// Save persists a route, replacing any existing row with the same ID.
func (s *PostgresStore) Save(ctx context.Context, r *Route) error {
	data, err := s.codec.Encode(r)
	if err != nil {
		return fmt.Errorf("encoding route %s: %w", r.ID, err)
	}

	query := `
		INSERT INTO routes (id, bike_type, distance_m, duration_s, favorite, created_at, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			bike_type = EXCLUDED.bike_type,
			distance_m = EXCLUDED.distance_m,
			duration_s = EXCLUDED.duration_s,
			favorite = EXCLUDED.favorite,
			data = EXCLUDED.data
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID, string(r.BikeType), r.DistanceMeters, r.DurationSeconds, r.Favorite, r.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("saving route %s: %w", r.ID, err)
	}
	return nil
}

// Get retrieves a route by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Route, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM routes WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	return s.codec.Decode(data)
}

// FetchRecent retrieves up to limit routes, newest first. Rows whose payload
// matches neither persisted format are skipped rather than failing the batch.
func (s *PostgresStore) FetchRecent(ctx context.Context, limit int) ([]*Route, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT data FROM routes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		r, err := s.codec.Decode(data)
		if err != nil {
			continue
		}
		routes = append(routes, r)
	}

	return routes, rows.Err()
}

// Delete removes a route by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	return err
}

// ToggleFavorite replaces the stored route with a copy carrying the flipped flag.
func (s *PostgresStore) ToggleFavorite(ctx context.Context, id string) (*Route, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	replacement := *r
	replacement.Favorite = !r.Favorite

	if err := s.Save(ctx, &replacement); err != nil {
		return nil, err
	}
	return &replacement, nil
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
