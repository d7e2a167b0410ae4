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

// GetOrganizationQuery fetches one organization by id.
type GetOrganizationQuery struct {
	Caller         ports.Caller
	OrganizationID uuid.UUID
}

// GetOrganizationUseCase returns the organization when the caller may read
// it. A deny-read is reported as not-found so the response shape matches a
// genuinely absent organization.
type GetOrganizationUseCase struct {
	Organizations ports.OrganizationRepository
	Authorizer    ports.Authorizer
	Logger        *slog.Logger
}

func (u GetOrganizationUseCase) Execute(ctx context.Context, query GetOrganizationQuery) (entities.Organization, error) {
	logger := application.ResolveLogger(u.Logger)

	organization, err := u.Organizations.GetOrganization(ctx, query.OrganizationID)
	if err != nil {
		return entities.Organization{}, err
	}

	canRead, err := u.Authorizer.CanReadOrganization(ctx, query.Caller, organization)
	if err != nil {
		return entities.Organization{}, err
	}
	if !canRead {
		logger.Debug("organization read denied, reporting not found",
			"event", "org_get_denied",
			"module", "organizations/organization-service",
			"layer", "application",
			"organization_id", organization.ID.String(),
		)
		return entities.Organization{}, domainerrors.ErrOrganizationNotFound
	}
	return organization, nil
}
