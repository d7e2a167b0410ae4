package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "meridian/contexts/organizations/organization-service/application"
	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"

	"github.com/google/uuid"
)

// UpdateOrganizationCommand carries the mutable organization fields. Nil
// pointers leave the current value untouched.
type UpdateOrganizationCommand struct {
	Caller         ports.Caller
	OrganizationID uuid.UUID
	Name           *string
	Public         *bool
}

// UpdateOrganizationUseCase applies fetch -> authorize -> mutate -> persist.
// A caller that may not read the organization gets not-found, never
// not-permitted, so denied callers cannot probe for existence.
type UpdateOrganizationUseCase struct {
	Organizations ports.OrganizationRepository
	Authorizer    ports.Authorizer
	Clock         ports.Clock
	Logger        *slog.Logger
}

func (u UpdateOrganizationUseCase) Execute(ctx context.Context, cmd UpdateOrganizationCommand) (entities.Organization, error) {
	logger := application.ResolveLogger(u.Logger)

	organization, err := u.Organizations.GetOrganization(ctx, cmd.OrganizationID)
	if err != nil {
		return entities.Organization{}, err
	}

	if err := requireWrite(ctx, u.Authorizer, cmd.Caller, organization); err != nil {
		return entities.Organization{}, err
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return entities.Organization{}, domainerrors.ErrInvalidOrganizationInput
		}
		organization.Name = name
	}
	if cmd.Public != nil {
		organization.Public = *cmd.Public
	}
	organization.ModifiedAt = u.now()

	if err := u.Organizations.UpdateOrganization(ctx, organization); err != nil {
		logger.Error("update organization failed",
			"event", "org_update_failed",
			"module", "organizations/organization-service",
			"layer", "application",
			"organization_id", organization.ID.String(),
			"error", err.Error(),
		)
		return entities.Organization{}, err
	}

	logger.Info("organization updated",
		"event", "org_updated",
		"module", "organizations/organization-service",
		"layer", "application",
		"organization_id", organization.ID.String(),
	)
	return organization, nil
}

// requireWrite enforces the visibility rule shared by every write-gated
// operation: unreadable means not-found, readable-but-unwritable means
// not-permitted.
func requireWrite(
	ctx context.Context,
	authorizer ports.Authorizer,
	caller ports.Caller,
	organization entities.Organization,
) error {
	canWrite, err := authorizer.CanWriteOrganization(ctx, caller, organization)
	if err != nil {
		return err
	}
	if canWrite {
		return nil
	}

	canRead, err := authorizer.CanReadOrganization(ctx, caller, organization)
	if err != nil {
		return err
	}
	if !canRead {
		return domainerrors.ErrOrganizationNotFound
	}
	return domainerrors.ErrNotPermitted
}

func (u UpdateOrganizationUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
