package entities

import (
	"time"

	"github.com/google/uuid"
)

// Member is the membership edge between a user and an organization, unique
// per (user, organization) pair.
type Member struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Admin          bool      `json:"admin"`
	CreatedAt      time.Time `json:"created_at"`
}
