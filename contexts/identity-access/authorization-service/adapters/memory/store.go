package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/identity-access/authorization-service/domain/entities"
)

// Store is an in-memory membership directory for tests and local wiring.
type Store struct {
	mu          sync.RWMutex
	memberships map[uuid.UUID][]entities.Membership
}

func NewStore() *Store {
	return &Store{
		memberships: make(map[uuid.UUID][]entities.Membership),
	}
}

// AddMembership records one (user, organization) edge. Re-adding the same
// edge overwrites the admin flag.
func (s *Store) AddMembership(userID uuid.UUID, organizationID uuid.UUID, admin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.memberships[userID]
	for i, membership := range existing {
		if membership.OrganizationID == organizationID {
			existing[i].Admin = admin
			return
		}
	}
	s.memberships[userID] = append(existing, entities.Membership{
		OrganizationID: organizationID,
		Admin:          admin,
	})
}

// RemoveMembership deletes the (user, organization) edge if present.
func (s *Store) RemoveMembership(userID uuid.UUID, organizationID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.memberships[userID]
	for i, membership := range existing {
		if membership.OrganizationID == organizationID {
			s.memberships[userID] = append(existing[:i], existing[i+1:]...)
			return
		}
	}
}

func (s *Store) ListByUser(_ context.Context, userID uuid.UUID) ([]entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Membership(nil), s.memberships[userID]...), nil
}

// SystemClock implements ports.Clock using wall-clock UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
