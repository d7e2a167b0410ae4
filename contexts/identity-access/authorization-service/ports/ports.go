package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/identity-access/authorization-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// MembershipDirectory resolves the organization memberships of a user
// subject. The engine itself never touches storage; the check use case loads
// memberships once per decision through this port.
type MembershipDirectory interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Membership, error)
}
