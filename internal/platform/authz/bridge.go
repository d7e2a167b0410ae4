// Package authz composes the authorization decision engine with the
// resource-owning contexts. Each context declares its own narrow Authorizer
// port; this bridge implements them all on top of the shared engine so
// policy lives in exactly one place.
package authz

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	billingentities "meridian/contexts/billing/customer-meter-service/domain/entities"
	billingports "meridian/contexts/billing/customer-meter-service/ports"
	authzqueries "meridian/contexts/identity-access/authorization-service/application/queries"
	authzentities "meridian/contexts/identity-access/authorization-service/domain/entities"
	authzports "meridian/contexts/identity-access/authorization-service/ports"
	orgentities "meridian/contexts/organizations/organization-service/domain/entities"
	orgports "meridian/contexts/organizations/organization-service/ports"
	"meridian/internal/platform/observability"
)

// MembershipSource reads a user's organization memberships. The organization
// repository satisfies it.
type MembershipSource interface {
	ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]orgentities.Member, error)
}

// Bridge evaluates access for every context through the decision engine.
type Bridge struct {
	check   authzqueries.CheckAccessUseCase
	metrics *observability.MetricsCollector
}

func NewBridge(memberships MembershipSource, clock authzports.Clock, metrics *observability.MetricsCollector, logger *slog.Logger) *Bridge {
	return &Bridge{
		check: authzqueries.CheckAccessUseCase{
			Memberships: membershipDirectory{source: memberships},
			Clock:       clock,
			Logger:      logger,
		},
		metrics: metrics,
	}
}

func (b *Bridge) CanReadOrganization(ctx context.Context, caller orgports.Caller, organization orgentities.Organization) (bool, error) {
	return b.decide(ctx, subjectFromOrgCaller(caller), authzentities.AccessRead, authzentities.Organization{
		ID:     organization.ID,
		Public: organization.Public,
	})
}

func (b *Bridge) CanWriteOrganization(ctx context.Context, caller orgports.Caller, organization orgentities.Organization) (bool, error) {
	return b.decide(ctx, subjectFromOrgCaller(caller), authzentities.AccessWrite, authzentities.Organization{
		ID:     organization.ID,
		Public: organization.Public,
	})
}

func (b *Bridge) CanListMembers(ctx context.Context, caller orgports.Caller, organization orgentities.Organization) (bool, error) {
	return b.decide(ctx, subjectFromOrgCaller(caller), authzentities.AccessRead, authzentities.MemberList{
		OrganizationID: organization.ID,
	})
}

func (b *Bridge) CanUseAccount(ctx context.Context, caller orgports.Caller, account orgentities.Account) (bool, error) {
	return b.decide(ctx, subjectFromOrgCaller(caller), authzentities.AccessWrite, authzentities.Account{
		ID:                  account.ID,
		OwnerUserID:         account.OwnerUserID,
		OwnerOrganizationID: account.OwnerOrganizationID,
	})
}

func (b *Bridge) CanReadCustomer(ctx context.Context, caller billingports.Caller, customer billingentities.Customer) (bool, error) {
	return b.decide(ctx, subjectFromBillingCaller(caller), authzentities.AccessRead, authzentities.Customer{
		ID:             customer.ID,
		OrganizationID: customer.OrganizationID,
	})
}

func (b *Bridge) CanWriteCustomer(ctx context.Context, caller billingports.Caller, customer billingentities.Customer) (bool, error) {
	return b.decide(ctx, subjectFromBillingCaller(caller), authzentities.AccessWrite, authzentities.Customer{
		ID:             customer.ID,
		OrganizationID: customer.OrganizationID,
	})
}

func (b *Bridge) decide(ctx context.Context, subject authzentities.Subject, access authzentities.AccessType, resource authzentities.Resource) (bool, error) {
	decision, err := b.check.Execute(ctx, authzqueries.CheckAccessQuery{
		Subject:  subject,
		Access:   access,
		Resource: resource,
	})
	if err != nil {
		return false, err
	}
	if b.metrics != nil {
		b.metrics.AccessDecisionsTotal.WithLabelValues(
			decision.ResourceType,
			string(access),
			strconv.FormatBool(decision.Allowed),
		).Inc()
	}
	return decision.Allowed, nil
}

func subjectFromOrgCaller(caller orgports.Caller) authzentities.Subject {
	return authzentities.Subject{
		ID:             caller.ID,
		Kind:           subjectKind(string(caller.Kind)),
		OrganizationID: caller.OrganizationID,
	}
}

func subjectFromBillingCaller(caller billingports.Caller) authzentities.Subject {
	return authzentities.Subject{
		ID:             caller.ID,
		Kind:           subjectKind(string(caller.Kind)),
		OrganizationID: caller.OrganizationID,
	}
}

func subjectKind(kind string) authzentities.SubjectKind {
	switch kind {
	case string(authzentities.SubjectKindUser):
		return authzentities.SubjectKindUser
	case string(authzentities.SubjectKindOrganizationToken):
		return authzentities.SubjectKindOrganizationToken
	default:
		return authzentities.SubjectKindAnonymous
	}
}

// NewMembershipDirectory exposes the same adapter the bridge uses, so the
// standalone check endpoint answers from the organization membership rows.
func NewMembershipDirectory(source MembershipSource) authzports.MembershipDirectory {
	return membershipDirectory{source: source}
}

// membershipDirectory adapts the organization membership rows to the
// engine's membership view.
type membershipDirectory struct {
	source MembershipSource
}

func (d membershipDirectory) ListByUser(ctx context.Context, userID uuid.UUID) ([]authzentities.Membership, error) {
	if d.source == nil {
		return nil, nil
	}
	members, err := d.source.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberships := make([]authzentities.Membership, 0, len(members))
	for _, member := range members {
		memberships = append(memberships, authzentities.Membership{
			OrganizationID: member.OrganizationID,
			Admin:          member.Admin,
		})
	}
	return memberships, nil
}
