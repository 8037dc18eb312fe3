package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal profile the gig surfaces join against. Account
// management lives in a separate system; this service only reads.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
