package geo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "gig:locations"

// RedisIndex backs Index with a Redis GEO set. GEOADD is O(log n) and
// GEOSEARCH is sublinear in the member count, with spherical distance
// computed server-side.
type RedisIndex struct {
	client *redis.Client
	key    string
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client, key: defaultKey}
}

func (i *RedisIndex) Upsert(ctx context.Context, id string, longitude, latitude float64) error {
	err := i.client.GeoAdd(ctx, i.key, &redis.GeoLocation{
		Name:      id,
		Longitude: longitude,
		Latitude:  latitude,
	}).Err()
	if err != nil {
		return fmt.Errorf("geo upsert %q: %w", id, err)
	}
	return nil
}

func (i *RedisIndex) Remove(ctx context.Context, id string) error {
	if err := i.client.ZRem(ctx, i.key, id).Err(); err != nil {
		return fmt.Errorf("geo remove %q: %w", id, err)
	}
	return nil
}

func (i *RedisIndex) Near(ctx context.Context, longitude, latitude, radiusMeters float64) ([]Candidate, error) {
	locations, err := i.client.GeoSearchLocation(ctx, i.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  longitude,
			Latitude:   latitude,
			Radius:     radiusMeters,
			RadiusUnit: "m",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search: %w", err)
	}

	candidates := make([]Candidate, 0, len(locations))
	for _, loc := range locations {
		candidates = append(candidates, Candidate{
			ID:             loc.Name,
			DistanceMeters: loc.Dist,
		})
	}

	return candidates, nil
}
