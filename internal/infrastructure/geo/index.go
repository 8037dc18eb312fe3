// Package geo provides the geospatial index over gig locations. The index
// answers radius queries only; ranking and filtering happen upstream.
package geo

import "context"

// Candidate is a gig id within the queried radius.
type Candidate struct {
	ID             string
	DistanceMeters float64
}

// Index is the geospatial index contract. Implementations use great-circle
// distance. Remote gigs are never inserted; callers treat them as matching
// every radius.
type Index interface {
	// Upsert inserts or moves a gig location.
	Upsert(ctx context.Context, id string, longitude, latitude float64) error

	// Remove deletes a gig from the index. Removing an absent id is a no-op.
	Remove(ctx context.Context, id string) error

	// Near returns all gigs within radiusMeters of the center, in no
	// particular order.
	Near(ctx context.Context, longitude, latitude, radiusMeters float64) ([]Candidate, error)
}
