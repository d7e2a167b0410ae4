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

// GetAccountQuery fetches the billing account linked to an organization.
type GetAccountQuery struct {
	Caller         ports.Caller
	OrganizationID uuid.UUID
}

// GetAccountUseCase is deliberately gated at write level even though it only
// reads: account identifiers enable billing side channels, so disclosure is
// treated as sensitive as mutation.
type GetAccountUseCase struct {
	Organizations ports.OrganizationRepository
	Accounts      ports.AccountRepository
	Authorizer    ports.Authorizer
	Logger        *slog.Logger
}

func (u GetAccountUseCase) Execute(ctx context.Context, query GetAccountQuery) (entities.Account, error) {
	logger := application.ResolveLogger(u.Logger)

	organization, err := u.Organizations.GetOrganization(ctx, query.OrganizationID)
	if err != nil {
		return entities.Account{}, err
	}

	canWrite, err := u.Authorizer.CanWriteOrganization(ctx, query.Caller, organization)
	if err != nil {
		return entities.Account{}, err
	}
	if !canWrite {
		canRead, err := u.Authorizer.CanReadOrganization(ctx, query.Caller, organization)
		if err != nil {
			return entities.Account{}, err
		}
		if !canRead {
			return entities.Account{}, domainerrors.ErrOrganizationNotFound
		}
		return entities.Account{}, domainerrors.ErrNotPermitted
	}

	if organization.AccountID == nil {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}

	account, err := u.Accounts.GetAccount(ctx, *organization.AccountID)
	if err != nil {
		logger.Error("linked account lookup failed",
			"event", "org_get_account_failed",
			"module", "organizations/organization-service",
			"layer", "application",
			"organization_id", organization.ID.String(),
			"error", err.Error(),
		)
		return entities.Account{}, err
	}
	return account, nil
}
