package entities

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant owning customers, meters, and optionally a linked
// billing account. Public organizations expose their profile to
// unauthenticated readers.
type Organization struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Public     bool       `json:"public"`
	AccountID  *uuid.UUID `json:"account_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}
