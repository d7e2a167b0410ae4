package httpadapter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	application "meridian/contexts/identity-access/authorization-service/application"
	"meridian/contexts/identity-access/authorization-service/application/queries"
	"meridian/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/authorization-service/domain/errors"
	httptransport "meridian/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps HTTP DTOs to the check-access use case.
type Handler struct {
	CheckAccess queries.CheckAccessUseCase
	Logger      *slog.Logger
}

// CheckAccessHandler evaluates one dry-run decision.
func (h Handler) CheckAccessHandler(
	ctx context.Context,
	request httptransport.CheckAccessRequest,
) (httptransport.CheckAccessResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http authz check received",
		"event", "authz_http_check_received",
		"module", "identity-access/authorization-service",
		"layer", "transport",
		"subject_id", request.SubjectID,
		"access", request.Access,
		"resource_type", request.ResourceType,
	)

	subject, err := subjectFromRequest(request)
	if err != nil {
		return httptransport.CheckAccessResponse{}, err
	}
	resource, err := resourceFromRequest(request)
	if err != nil {
		return httptransport.CheckAccessResponse{}, err
	}

	decision, err := h.CheckAccess.Execute(ctx, queries.CheckAccessQuery{
		Subject:  subject,
		Access:   entities.AccessType(request.Access),
		Resource: resource,
	})
	if err != nil {
		logger.Error("http authz check failed",
			"event", "authz_http_check_failed",
			"module", "identity-access/authorization-service",
			"layer", "transport",
			"subject_id", request.SubjectID,
			"error", err.Error(),
		)
		return httptransport.CheckAccessResponse{}, err
	}

	return httptransport.CheckAccessResponse{
		SubjectID:    decision.SubjectID,
		SubjectKind:  decision.SubjectKind,
		Access:       string(decision.Access),
		ResourceType: decision.ResourceType,
		ResourceID:   decision.ResourceID,
		Allowed:      decision.Allowed,
		Reason:       decision.Reason,
		CheckedAt:    decision.CheckedAt,
	}, nil
}

func subjectFromRequest(request httptransport.CheckAccessRequest) (entities.Subject, error) {
	kind := entities.SubjectKind(request.SubjectKind)
	if kind == "" || kind == entities.SubjectKindAnonymous {
		return entities.Anonymous(), nil
	}
	if kind != entities.SubjectKindUser && kind != entities.SubjectKindOrganizationToken {
		return entities.Subject{}, domainerrors.ErrInvalidSubjectID
	}

	subjectID, err := uuid.Parse(request.SubjectID)
	if err != nil {
		return entities.Subject{}, domainerrors.ErrInvalidSubjectID
	}
	subject := entities.Subject{ID: subjectID, Kind: kind}
	if request.OrganizationID != "" {
		orgID, err := uuid.Parse(request.OrganizationID)
		if err != nil {
			return entities.Subject{}, domainerrors.ErrInvalidSubjectID
		}
		subject.OrganizationID = &orgID
	}
	return subject, nil
}

func resourceFromRequest(request httptransport.CheckAccessRequest) (entities.Resource, error) {
	resourceID, err := uuid.Parse(request.ResourceID)
	if err != nil {
		return nil, domainerrors.ErrInvalidResource
	}

	switch request.ResourceType {
	case "organization":
		return entities.Organization{ID: resourceID, Public: request.Resource.Public}, nil
	case "account":
		account := entities.Account{ID: resourceID}
		if request.Resource.OwnerUserID != "" {
			ownerID, err := uuid.Parse(request.Resource.OwnerUserID)
			if err != nil {
				return nil, domainerrors.ErrInvalidResource
			}
			account.OwnerUserID = &ownerID
		}
		if request.Resource.OwnerOrganizationID != "" {
			ownerOrgID, err := uuid.Parse(request.Resource.OwnerOrganizationID)
			if err != nil {
				return nil, domainerrors.ErrInvalidResource
			}
			account.OwnerOrganizationID = &ownerOrgID
		}
		return account, nil
	case "customer":
		orgID, err := uuid.Parse(request.Resource.OrganizationID)
		if err != nil {
			return nil, domainerrors.ErrInvalidResource
		}
		return entities.Customer{ID: resourceID, OrganizationID: orgID}, nil
	case "member_list":
		return entities.MemberList{OrganizationID: resourceID}, nil
	default:
		return nil, domainerrors.ErrInvalidResource
	}
}
