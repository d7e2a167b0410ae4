package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"
)

// Store is an in-memory adapter implementing the repository ports. It is
// intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]entities.Organization
	accounts      map[uuid.UUID]entities.Account
	members       map[uuid.UUID][]entities.Member
}

func NewStore() *Store {
	return &Store{
		organizations: make(map[uuid.UUID]entities.Organization),
		accounts:      make(map[uuid.UUID]entities.Account),
		members:       make(map[uuid.UUID][]entities.Member),
	}
}

// AddOrganization seeds an organization without a creator membership.
func (s *Store) AddOrganization(organization entities.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[organization.ID] = organization
}

// AddAccount seeds a billing account.
func (s *Store) AddAccount(account entities.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

// AddMember seeds a membership edge without going through creation.
func (s *Store) AddMember(member entities.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.OrganizationID] = append(s.members[member.OrganizationID], member)
}

func (s *Store) GetOrganization(_ context.Context, id uuid.UUID) (entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	organization, ok := s.organizations[id]
	if !ok {
		return entities.Organization{}, domainerrors.ErrOrganizationNotFound
	}
	return organization, nil
}

func (s *Store) ListOrganizations(_ context.Context, filter ports.OrganizationFilter) ([]entities.Organization, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []entities.Organization
	for _, organization := range s.organizations {
		if filter.Slug != "" && organization.Slug != filter.Slug {
			continue
		}
		if !organization.Public && !s.isMemberLocked(filter.MemberUserID, organization.ID) {
			continue
		}
		matches = append(matches, organization)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Slug < matches[j].Slug
	})

	total := len(matches)
	if filter.Offset >= total {
		return []entities.Organization{}, total, nil
	}
	matches = matches[filter.Offset:]
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return append([]entities.Organization(nil), matches...), total, nil
}

func (s *Store) CreateOrganization(_ context.Context, organization entities.Organization, creator entities.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.organizations {
		if existing.Slug == organization.Slug {
			return domainerrors.ErrSlugTaken
		}
	}
	s.organizations[organization.ID] = organization
	s.members[organization.ID] = append(s.members[organization.ID], creator)
	return nil
}

func (s *Store) UpdateOrganization(_ context.Context, organization entities.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.organizations[organization.ID]; !ok {
		return domainerrors.ErrOrganizationNotFound
	}
	s.organizations[organization.ID] = organization
	return nil
}

func (s *Store) SetOrganizationAccount(_ context.Context, organizationID uuid.UUID, accountID uuid.UUID, modifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	organization, ok := s.organizations[organizationID]
	if !ok {
		return domainerrors.ErrOrganizationNotFound
	}
	organization.AccountID = &accountID
	organization.ModifiedAt = modifiedAt.UTC()
	s.organizations[organizationID] = organization
	return nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) GetMember(_ context.Context, userID uuid.UUID, organizationID uuid.UUID) (entities.Member, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, member := range s.members[organizationID] {
		if member.UserID == userID {
			return member, true, nil
		}
	}
	return entities.Member{}, false, nil
}

func (s *Store) ListMembersByOrganization(_ context.Context, organizationID uuid.UUID) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := append([]entities.Member(nil), s.members[organizationID]...)
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

// ListMembershipsByUser supports the platform bridge that feeds the decision
// engine's membership directory.
func (s *Store) ListMembershipsByUser(_ context.Context, userID uuid.UUID) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []entities.Member
	for _, members := range s.members {
		for _, member := range members {
			if member.UserID == userID {
				memberships = append(memberships, member)
			}
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		return strings.Compare(
			memberships[i].OrganizationID.String(),
			memberships[j].OrganizationID.String(),
		) < 0
	})
	return memberships, nil
}

func (s *Store) isMemberLocked(userID *uuid.UUID, organizationID uuid.UUID) bool {
	if userID == nil {
		return false
	}
	for _, member := range s.members[organizationID] {
		if member.UserID == *userID {
			return true
		}
	}
	return false
}

// SystemClock implements ports.Clock using wall-clock UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator implements ports.IDGenerator using RFC 4122 UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (uuid.UUID, error) {
	return uuid.NewRandom()
}
