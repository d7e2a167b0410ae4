package commands

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	application "meridian/contexts/organizations/organization-service/application"
	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// CreateOrganizationCommand contains transport-agnostic input for creation.
type CreateOrganizationCommand struct {
	Caller ports.Caller
	Name   string
	Slug   string
	Public bool
}

// CreateOrganizationUseCase creates an organization and makes the creator its
// first admin member. There is no resource-level decision here: the resource
// does not exist yet, so the only gate is that the caller is an authenticated
// user.
type CreateOrganizationUseCase struct {
	Organizations ports.OrganizationRepository
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

func (u CreateOrganizationUseCase) Execute(ctx context.Context, cmd CreateOrganizationCommand) (entities.Organization, error) {
	logger := application.ResolveLogger(u.Logger)

	if cmd.Caller.Kind != ports.CallerKindUser {
		return entities.Organization{}, domainerrors.ErrUnauthorized
	}

	name := strings.TrimSpace(cmd.Name)
	slug := strings.ToLower(strings.TrimSpace(cmd.Slug))
	if name == "" || !slugPattern.MatchString(slug) {
		return entities.Organization{}, domainerrors.ErrInvalidOrganizationInput
	}

	id, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Organization{}, err
	}
	now := u.now()

	organization := entities.Organization{
		ID:         id,
		Name:       name,
		Slug:       slug,
		Public:     cmd.Public,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	creator := entities.Member{
		UserID:         cmd.Caller.ID,
		OrganizationID: id,
		Admin:          true,
		CreatedAt:      now,
	}

	if err := u.Organizations.CreateOrganization(ctx, organization, creator); err != nil {
		logger.Error("create organization failed",
			"event", "org_create_failed",
			"module", "organizations/organization-service",
			"layer", "application",
			"slug", slug,
			"error", err.Error(),
		)
		return entities.Organization{}, err
	}

	logger.Info("organization created",
		"event", "org_created",
		"module", "organizations/organization-service",
		"layer", "application",
		"organization_id", id.String(),
		"slug", slug,
		"creator_id", cmd.Caller.ID.String(),
	)
	return organization, nil
}

func (u CreateOrganizationUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
