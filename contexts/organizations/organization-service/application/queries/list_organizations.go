package queries

import (
	"context"
	"log/slog"
	"strings"

	application "meridian/contexts/organizations/organization-service/application"
	"meridian/contexts/organizations/organization-service/domain/entities"
	"meridian/contexts/organizations/organization-service/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListOrganizationsQuery lists organizations visible to the caller.
type ListOrganizationsQuery struct {
	Caller ports.Caller
	Slug   string
	Limit  int
	Offset int
}

// ListOrganizationsResult carries one page plus the total match count.
type ListOrganizationsResult struct {
	Items      []entities.Organization
	TotalCount int
}

// ListOrganizationsUseCase returns public organizations plus, for user
// callers, the organizations they belong to. The visibility rule is pushed
// into the repository filter so pagination counts stay correct.
type ListOrganizationsUseCase struct {
	Organizations ports.OrganizationRepository
	Logger        *slog.Logger
}

func (u ListOrganizationsUseCase) Execute(ctx context.Context, query ListOrganizationsQuery) (ListOrganizationsResult, error) {
	logger := application.ResolveLogger(u.Logger)

	filter := ports.OrganizationFilter{
		Slug:   strings.ToLower(strings.TrimSpace(query.Slug)),
		Limit:  normalizeLimit(query.Limit),
		Offset: max(query.Offset, 0),
	}
	if query.Caller.Kind == ports.CallerKindUser {
		userID := query.Caller.ID
		filter.MemberUserID = &userID
	}

	items, total, err := u.Organizations.ListOrganizations(ctx, filter)
	if err != nil {
		logger.Error("list organizations failed",
			"event", "org_list_failed",
			"module", "organizations/organization-service",
			"layer", "application",
			"error", err.Error(),
		)
		return ListOrganizationsResult{}, err
	}
	return ListOrganizationsResult{Items: items, TotalCount: total}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
