package entities

import (
	"time"

	"github.com/google/uuid"
)

// Account is a payout/billing account. The owner references are authoritative
// for access decisions: a caller may link an account to an organization only
// when the stored owner matches the caller, never because the caller supplied
// the id.
type Account struct {
	ID                  uuid.UUID  `json:"id"`
	OwnerUserID         *uuid.UUID `json:"owner_user_id,omitempty"`
	OwnerOrganizationID *uuid.UUID `json:"owner_organization_id,omitempty"`
	Country             string     `json:"country"`
	CreatedAt           time.Time  `json:"created_at"`
}
