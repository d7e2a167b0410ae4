package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/organizations/organization-service/domain/entities"
)

// CallerKind mirrors how the caller authenticated.
type CallerKind string

const (
	CallerKindUser              CallerKind = "user"
	CallerKindOrganizationToken CallerKind = "organization_token"
	CallerKindAnonymous         CallerKind = "anonymous"
)

// Caller is the authenticated principal attached to one request. It carries
// identity only; memberships are resolved by the authorizer.
type Caller struct {
	ID             uuid.UUID
	Kind           CallerKind
	OrganizationID *uuid.UUID
}

// Anonymous is the caller used for unauthenticated requests.
func Anonymous() Caller {
	return Caller{Kind: CallerKindAnonymous}
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new rows.
type IDGenerator interface {
	NewID(ctx context.Context) (uuid.UUID, error)
}

// OrganizationFilter narrows list queries. MemberUserID widens the result to
// the non-public organizations that user belongs to.
type OrganizationFilter struct {
	Slug         string
	MemberUserID *uuid.UUID
	Limit        int
	Offset       int
}

// OrganizationRepository is the persistence boundary for organizations.
type OrganizationRepository interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (entities.Organization, error)
	ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]entities.Organization, int, error)
	// CreateOrganization persists the organization and its creator membership
	// as one logical unit.
	CreateOrganization(ctx context.Context, organization entities.Organization, creator entities.Member) error
	UpdateOrganization(ctx context.Context, organization entities.Organization) error
	SetOrganizationAccount(ctx context.Context, organizationID uuid.UUID, accountID uuid.UUID, modifiedAt time.Time) error
}

// AccountRepository reads billing accounts.
type AccountRepository interface {
	GetAccount(ctx context.Context, id uuid.UUID) (entities.Account, error)
}

// MembershipRepository is the persistence boundary for membership edges.
type MembershipRepository interface {
	GetMember(ctx context.Context, userID uuid.UUID, organizationID uuid.UUID) (entities.Member, bool, error)
	ListMembersByOrganization(ctx context.Context, organizationID uuid.UUID) ([]entities.Member, error)
}

// Authorizer evaluates access decisions against already-loaded resources.
// Implementations bridge to the central decision engine; use cases never
// embed policy themselves.
type Authorizer interface {
	CanReadOrganization(ctx context.Context, caller Caller, organization entities.Organization) (bool, error)
	CanWriteOrganization(ctx context.Context, caller Caller, organization entities.Organization) (bool, error)
	CanListMembers(ctx context.Context, caller Caller, organization entities.Organization) (bool, error)
	CanUseAccount(ctx context.Context, caller Caller, account entities.Account) (bool, error)
}

// TaskEnqueuer submits a named recomputation request keyed by a target
// entity id. Delivery is at-least-once; handlers must be idempotent.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskName string, targetID uuid.UUID) error
}
