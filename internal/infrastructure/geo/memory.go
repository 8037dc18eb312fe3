package geo

import (
	"context"
	"sync"
)

// MemoryIndex is an in-process Index over a plain map with haversine
// scanning. It trades the Redis index's sublinear query for zero
// infrastructure, which is what local development and tests want.
type MemoryIndex struct {
	mu        sync.RWMutex
	locations map[string][2]float64 // id -> (lon, lat)
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{locations: make(map[string][2]float64)}
}

func (i *MemoryIndex) Upsert(_ context.Context, id string, longitude, latitude float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.locations[id] = [2]float64{longitude, latitude}
	return nil
}

func (i *MemoryIndex) Remove(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.locations, id)
	return nil
}

func (i *MemoryIndex) Near(_ context.Context, longitude, latitude, radiusMeters float64) ([]Candidate, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var candidates []Candidate
	for id, loc := range i.locations {
		d := HaversineMeters(longitude, latitude, loc[0], loc[1])
		if d <= radiusMeters {
			candidates = append(candidates, Candidate{ID: id, DistanceMeters: d})
		}
	}

	return candidates, nil
}
