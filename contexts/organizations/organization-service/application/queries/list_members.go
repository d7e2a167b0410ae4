package queries

import (
	"context"
	"log/slog"

	application "meridian/contexts/organizations/organization-service/application"
	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"

	"github.com/google/uuid"
)

// ListMembersQuery lists the membership roster of one organization.
type ListMembersQuery struct {
	Caller         ports.Caller
	OrganizationID uuid.UUID
}

// ListMembersUseCase enforces the roster rule: the caller must itself be a
// member. This is checked explicitly, not derived from organization read,
// because listing reveals other principals' identities — a public
// organization profile does not make its roster public.
type ListMembersUseCase struct {
	Organizations ports.OrganizationRepository
	Members       ports.MembershipRepository
	Authorizer    ports.Authorizer
	Logger        *slog.Logger
}

func (u ListMembersUseCase) Execute(ctx context.Context, query ListMembersQuery) ([]entities.Member, error) {
	logger := application.ResolveLogger(u.Logger)

	organization, err := u.Organizations.GetOrganization(ctx, query.OrganizationID)
	if err != nil {
		return nil, err
	}

	canList, err := u.Authorizer.CanListMembers(ctx, query.Caller, organization)
	if err != nil {
		return nil, err
	}
	if !canList {
		logger.Warn("member listing refused for non-member",
			"event", "org_members_unauthorized",
			"module", "organizations/organization-service",
			"layer", "application",
			"organization_id", organization.ID.String(),
			"caller_kind", string(query.Caller.Kind),
		)
		return nil, domainerrors.ErrUnauthorized
	}

	members, err := u.Members.ListMembersByOrganization(ctx, organization.ID)
	if err != nil {
		return nil, err
	}
	return members, nil
}
