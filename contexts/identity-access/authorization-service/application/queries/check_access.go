package queries

import (
	"context"
	"log/slog"
	"time"

	application "meridian/contexts/identity-access/authorization-service/application"
	"meridian/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "meridian/contexts/identity-access/authorization-service/domain/errors"
	"meridian/contexts/identity-access/authorization-service/domain/services"
	"meridian/contexts/identity-access/authorization-service/ports"
)

// CheckAccessQuery is the request model for one access decision.
type CheckAccessQuery struct {
	Subject  entities.Subject
	Access   entities.AccessType
	Resource entities.Resource
}

// CheckAccessUseCase loads the subject's memberships and evaluates the pure
// policy engine. The use case is the only place that touches I/O; the
// decision itself stays referentially transparent.
type CheckAccessUseCase struct {
	Memberships ports.MembershipDirectory
	Clock       ports.Clock
	Logger      *slog.Logger
}

// Execute evaluates one decision and denies by default when the membership
// lookup fails: an unavailable directory must never widen access.
func (u CheckAccessUseCase) Execute(ctx context.Context, query CheckAccessQuery) (entities.Decision, error) {
	if query.Resource == nil {
		return entities.Decision{}, domainerrors.ErrInvalidResource
	}
	if query.Access != entities.AccessRead && query.Access != entities.AccessWrite {
		return entities.Decision{}, domainerrors.ErrInvalidAccessType
	}

	logger := application.ResolveLogger(u.Logger)
	now := u.now()
	subject := query.Subject

	if subject.Kind == entities.SubjectKindUser && subject.Memberships == nil && u.Memberships != nil {
		memberships, err := u.Memberships.ListByUser(ctx, subject.ID)
		if err != nil {
			logger.Error("membership lookup failed, deny by default",
				"event", "authz_membership_lookup_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"subject_id", subject.ID.String(),
				"resource_type", query.Resource.ResourceType(),
				"error", err.Error(),
			)
			return decisionFor(subject, query, false, "deny_by_default", now), nil
		}
		subject.Memberships = memberships
	}

	allowed, reason := services.Decide(subject, query.Access, query.Resource)
	if !allowed {
		logger.Warn("access denied",
			"event", "authz_access_denied",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"subject_id", subject.ID.String(),
			"subject_kind", string(subject.Kind),
			"access", string(query.Access),
			"resource_type", query.Resource.ResourceType(),
			"reason", reason,
		)
	} else {
		logger.Debug("access allowed",
			"event", "authz_access_allowed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"subject_id", subject.ID.String(),
			"subject_kind", string(subject.Kind),
			"access", string(query.Access),
			"resource_type", query.Resource.ResourceType(),
			"reason", reason,
		)
	}
	return decisionFor(subject, query, allowed, reason, now), nil
}

func decisionFor(
	subject entities.Subject,
	query CheckAccessQuery,
	allowed bool,
	reason string,
	now time.Time,
) entities.Decision {
	return entities.Decision{
		SubjectID:    subject.ID.String(),
		SubjectKind:  string(subject.Kind),
		Access:       query.Access,
		ResourceType: query.Resource.ResourceType(),
		ResourceID:   resourceID(query.Resource),
		Allowed:      allowed,
		Reason:       reason,
		CheckedAt:    now,
	}
}

func resourceID(resource entities.Resource) string {
	switch res := resource.(type) {
	case entities.Organization:
		return res.ID.String()
	case entities.Account:
		return res.ID.String()
	case entities.Customer:
		return res.ID.String()
	case entities.MemberList:
		return res.OrganizationID.String()
	default:
		return ""
	}
}

func (u CheckAccessUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
