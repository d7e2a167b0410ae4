package commands

import (
	"context"
	"log/slog"
	"time"

	application "meridian/contexts/organizations/organization-service/application"
	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"

	"github.com/google/uuid"
)

// TaskRefreshOrganizationBilling recomputes derived billing state for every
// customer of the organization after its account linkage changed.
const TaskRefreshOrganizationBilling = "organization.refresh_billing"

// SetAccountCommand links a billing account to an organization.
type SetAccountCommand struct {
	Caller         ports.Caller
	OrganizationID uuid.UUID
	AccountID      uuid.UUID
}

// SetAccountUseCase links an account after two decisions: write on the
// organization, and ownership of the target account. Ownership is read from
// the stored account row, so a caller cannot link someone else's account by
// supplying its id.
type SetAccountUseCase struct {
	Organizations ports.OrganizationRepository
	Accounts      ports.AccountRepository
	Authorizer    ports.Authorizer
	Tasks         ports.TaskEnqueuer
	Clock         ports.Clock
	Logger        *slog.Logger
}

func (u SetAccountUseCase) Execute(ctx context.Context, cmd SetAccountCommand) (entities.Organization, error) {
	logger := application.ResolveLogger(u.Logger)

	organization, err := u.Organizations.GetOrganization(ctx, cmd.OrganizationID)
	if err != nil {
		return entities.Organization{}, err
	}
	if err := requireWrite(ctx, u.Authorizer, cmd.Caller, organization); err != nil {
		return entities.Organization{}, err
	}

	account, err := u.Accounts.GetAccount(ctx, cmd.AccountID)
	if err != nil {
		return entities.Organization{}, err
	}
	canUse, err := u.Authorizer.CanUseAccount(ctx, cmd.Caller, account)
	if err != nil {
		return entities.Organization{}, err
	}
	if !canUse {
		return entities.Organization{}, domainerrors.ErrNotPermitted
	}

	now := u.now()
	if err := u.Organizations.SetOrganizationAccount(ctx, organization.ID, account.ID, now); err != nil {
		logger.Error("set organization account failed",
			"event", "org_set_account_failed",
			"module", "organizations/organization-service",
			"layer", "application",
			"organization_id", organization.ID.String(),
			"account_id", account.ID.String(),
			"error", err.Error(),
		)
		return entities.Organization{}, err
	}
	organization.AccountID = &account.ID
	organization.ModifiedAt = now

	// The account link changes billing eligibility, so previously computed
	// meter state is stale. Recomputation happens off the request path; a
	// failed enqueue is logged, not surfaced, because the periodic refresh
	// converges the same derived state.
	if u.Tasks != nil {
		if err := u.Tasks.Enqueue(ctx, TaskRefreshOrganizationBilling, organization.ID); err != nil {
			logger.Error("billing refresh enqueue failed",
				"event", "org_billing_refresh_enqueue_failed",
				"module", "organizations/organization-service",
				"layer", "application",
				"organization_id", organization.ID.String(),
				"error", err.Error(),
			)
		}
	}

	logger.Info("organization account set",
		"event", "org_account_set",
		"module", "organizations/organization-service",
		"layer", "application",
		"organization_id", organization.ID.String(),
		"account_id", account.ID.String(),
	)
	return organization, nil
}

func (u SetAccountUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
