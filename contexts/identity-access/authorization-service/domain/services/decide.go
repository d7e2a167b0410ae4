package services

import (
	"github.com/google/uuid"

	"meridian/contexts/identity-access/authorization-service/domain/entities"
)

// Decide evaluates whether subject may perform access on resource. It is a
// pure function over already-loaded values: no I/O, no side effects, same
// output for the same inputs. All policy lives in this one exhaustive match
// so the rules stay auditable in a single place.
func Decide(subject entities.Subject, access entities.AccessType, resource entities.Resource) (bool, string) {
	if access != entities.AccessRead && access != entities.AccessWrite {
		return false, "unknown_access_type"
	}

	switch res := resource.(type) {
	case entities.Organization:
		return decideOrganization(subject, access, res)
	case entities.Account:
		return decideAccount(subject, res)
	case entities.Customer:
		return decideCustomer(subject, access, res)
	case entities.MemberList:
		return decideMemberList(subject, res)
	default:
		return false, "unknown_resource"
	}
}

func decideOrganization(subject entities.Subject, access entities.AccessType, org entities.Organization) (bool, string) {
	if tokenBoundTo(subject, org.ID) {
		return true, "organization_token"
	}

	if subject.Kind == entities.SubjectKindUser {
		if membership, ok := subject.MembershipIn(org.ID); ok {
			if access == entities.AccessWrite {
				if membership.Admin {
					return true, "admin_membership"
				}
				return false, "admin_required"
			}
			return true, "membership"
		}
	}

	if access == entities.AccessRead && org.Public {
		return true, "public_resource"
	}
	return false, "membership_missing"
}

// decideAccount applies the same rule for read and write: account linkage
// enables billing side channels, so there is no read-only tier. Ownership is
// followed from the account's stored owner reference.
func decideAccount(subject entities.Subject, account entities.Account) (bool, string) {
	if account.OwnerUserID == nil && account.OwnerOrganizationID == nil {
		return false, "owner_missing"
	}

	if account.OwnerUserID != nil &&
		subject.Kind == entities.SubjectKindUser &&
		subject.ID == *account.OwnerUserID {
		return true, "owner_user"
	}

	if account.OwnerOrganizationID != nil {
		ownerOrg := *account.OwnerOrganizationID
		if tokenBoundTo(subject, ownerOrg) {
			return true, "owner_organization_token"
		}
		if subject.Kind == entities.SubjectKindUser {
			if membership, ok := subject.MembershipIn(ownerOrg); ok && membership.Admin {
				return true, "owner_organization_admin"
			}
		}
	}
	return false, "ownership_mismatch"
}

func decideCustomer(subject entities.Subject, access entities.AccessType, customer entities.Customer) (bool, string) {
	if tokenBoundTo(subject, customer.OrganizationID) {
		return true, "organization_token"
	}

	if subject.Kind == entities.SubjectKindUser {
		if membership, ok := subject.MembershipIn(customer.OrganizationID); ok {
			if access == entities.AccessWrite {
				if membership.Admin {
					return true, "admin_membership"
				}
				return false, "admin_required"
			}
			return true, "membership"
		}
	}
	return false, "membership_missing"
}

// decideMemberList is intentionally narrower than organization read: the
// roster reveals other subjects' identities, so only a user who is itself a
// member may list it. A public organization flag does not help here.
func decideMemberList(subject entities.Subject, list entities.MemberList) (bool, string) {
	if subject.Kind != entities.SubjectKindUser {
		return false, "user_required"
	}
	if _, ok := subject.MembershipIn(list.OrganizationID); ok {
		return true, "self_membership"
	}
	return false, "not_a_member"
}

func tokenBoundTo(subject entities.Subject, organizationID uuid.UUID) bool {
	return subject.Kind == entities.SubjectKindOrganizationToken &&
		subject.OrganizationID != nil &&
		*subject.OrganizationID == organizationID
}
