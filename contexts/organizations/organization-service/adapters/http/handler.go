package httpadapter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	application "meridian/contexts/organizations/organization-service/application"
	"meridian/contexts/organizations/organization-service/application/commands"
	"meridian/contexts/organizations/organization-service/application/queries"
	"meridian/contexts/organizations/organization-service/domain/entities"
	"meridian/contexts/organizations/organization-service/ports"
	httptransport "meridian/contexts/organizations/organization-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	ListOrganizations  queries.ListOrganizationsUseCase
	GetOrganization    queries.GetOrganizationUseCase
	CreateOrganization commands.CreateOrganizationUseCase
	UpdateOrganization commands.UpdateOrganizationUseCase
	GetAccount         queries.GetAccountUseCase
	SetAccount         commands.SetAccountUseCase
	ListMembers        queries.ListMembersUseCase
	Logger             *slog.Logger
}

// ListOrganizationsHandler returns one page of visible organizations.
func (h Handler) ListOrganizationsHandler(
	ctx context.Context,
	caller ports.Caller,
	slug string,
	limit int,
	offset int,
) (httptransport.ListOrganizationsResponse, error) {
	result, err := h.ListOrganizations.Execute(ctx, queries.ListOrganizationsQuery{
		Caller: caller,
		Slug:   slug,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httptransport.ListOrganizationsResponse{}, err
	}

	items := make([]httptransport.OrganizationDTO, 0, len(result.Items))
	for _, organization := range result.Items {
		items = append(items, organizationDTO(organization))
	}
	return httptransport.ListOrganizationsResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// GetOrganizationHandler returns one organization by id.
func (h Handler) GetOrganizationHandler(
	ctx context.Context,
	caller ports.Caller,
	organizationID uuid.UUID,
) (httptransport.OrganizationDTO, error) {
	organization, err := h.GetOrganization.Execute(ctx, queries.GetOrganizationQuery{
		Caller:         caller,
		OrganizationID: organizationID,
	})
	if err != nil {
		return httptransport.OrganizationDTO{}, err
	}
	return organizationDTO(organization), nil
}

// CreateOrganizationHandler creates an organization owned by the caller.
func (h Handler) CreateOrganizationHandler(
	ctx context.Context,
	caller ports.Caller,
	request httptransport.CreateOrganizationRequest,
) (httptransport.OrganizationDTO, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http create organization received",
		"event", "org_http_create_received",
		"module", "organizations/organization-service",
		"layer", "transport",
		"slug", request.Slug,
	)

	organization, err := h.CreateOrganization.Execute(ctx, commands.CreateOrganizationCommand{
		Caller: caller,
		Name:   request.Name,
		Slug:   request.Slug,
		Public: request.Public,
	})
	if err != nil {
		return httptransport.OrganizationDTO{}, err
	}
	return organizationDTO(organization), nil
}

// UpdateOrganizationHandler applies a partial update.
func (h Handler) UpdateOrganizationHandler(
	ctx context.Context,
	caller ports.Caller,
	organizationID uuid.UUID,
	request httptransport.UpdateOrganizationRequest,
) (httptransport.OrganizationDTO, error) {
	organization, err := h.UpdateOrganization.Execute(ctx, commands.UpdateOrganizationCommand{
		Caller:         caller,
		OrganizationID: organizationID,
		Name:           request.Name,
		Public:         request.Public,
	})
	if err != nil {
		return httptransport.OrganizationDTO{}, err
	}
	return organizationDTO(organization), nil
}

// GetAccountHandler returns the linked billing account.
func (h Handler) GetAccountHandler(
	ctx context.Context,
	caller ports.Caller,
	organizationID uuid.UUID,
) (httptransport.AccountDTO, error) {
	account, err := h.GetAccount.Execute(ctx, queries.GetAccountQuery{
		Caller:         caller,
		OrganizationID: organizationID,
	})
	if err != nil {
		return httptransport.AccountDTO{}, err
	}
	return accountDTO(account), nil
}

// SetAccountHandler links a billing account to the organization.
func (h Handler) SetAccountHandler(
	ctx context.Context,
	caller ports.Caller,
	organizationID uuid.UUID,
	accountID uuid.UUID,
) (httptransport.OrganizationDTO, error) {
	organization, err := h.SetAccount.Execute(ctx, commands.SetAccountCommand{
		Caller:         caller,
		OrganizationID: organizationID,
		AccountID:      accountID,
	})
	if err != nil {
		return httptransport.OrganizationDTO{}, err
	}
	return organizationDTO(organization), nil
}

// ListMembersHandler returns the roster.
func (h Handler) ListMembersHandler(
	ctx context.Context,
	caller ports.Caller,
	organizationID uuid.UUID,
) (httptransport.ListMembersResponse, error) {
	members, err := h.ListMembers.Execute(ctx, queries.ListMembersQuery{
		Caller:         caller,
		OrganizationID: organizationID,
	})
	if err != nil {
		return httptransport.ListMembersResponse{}, err
	}

	items := make([]httptransport.MemberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, httptransport.MemberDTO{
			UserID:         member.UserID.String(),
			OrganizationID: member.OrganizationID.String(),
			Admin:          member.Admin,
			CreatedAt:      member.CreatedAt,
		})
	}
	return httptransport.ListMembersResponse{
		Items:      items,
		TotalCount: len(items),
	}, nil
}

func organizationDTO(organization entities.Organization) httptransport.OrganizationDTO {
	dto := httptransport.OrganizationDTO{
		ID:         organization.ID.String(),
		Name:       organization.Name,
		Slug:       organization.Slug,
		Public:     organization.Public,
		CreatedAt:  organization.CreatedAt,
		ModifiedAt: organization.ModifiedAt,
	}
	if organization.AccountID != nil {
		accountID := organization.AccountID.String()
		dto.AccountID = &accountID
	}
	return dto
}

func accountDTO(account entities.Account) httptransport.AccountDTO {
	dto := httptransport.AccountDTO{
		ID:        account.ID.String(),
		Country:   account.Country,
		CreatedAt: account.CreatedAt,
	}
	if account.OwnerUserID != nil {
		ownerID := account.OwnerUserID.String()
		dto.OwnerUserID = &ownerID
	}
	if account.OwnerOrganizationID != nil {
		ownerOrgID := account.OwnerOrganizationID.String()
		dto.OwnerOrganizationID = &ownerOrgID
	}
	return dto
}
