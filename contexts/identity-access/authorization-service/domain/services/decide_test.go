package services

import (
	"testing"

	"github.com/google/uuid"

	"meridian/contexts/identity-access/authorization-service/domain/entities"
)

func userSubject(id uuid.UUID, memberships ...entities.Membership) entities.Subject {
	if memberships == nil {
		memberships = []entities.Membership{}
	}
	return entities.Subject{ID: id, Kind: entities.SubjectKindUser, Memberships: memberships}
}

func tokenSubject(orgID uuid.UUID) entities.Subject {
	return entities.Subject{
		ID:             uuid.New(),
		Kind:           entities.SubjectKindOrganizationToken,
		OrganizationID: &orgID,
	}
}

func TestDecideDeniesStrangersOnPrivateOrganization(t *testing.T) {
	org := entities.Organization{ID: uuid.New(), Public: false}
	stranger := userSubject(uuid.New())

	for _, access := range []entities.AccessType{entities.AccessRead, entities.AccessWrite} {
		if allowed, reason := Decide(stranger, access, org); allowed {
			t.Fatalf("expected deny for %s, got allow (%s)", access, reason)
		}
	}
	if allowed, _ := Decide(entities.Anonymous(), entities.AccessRead, org); allowed {
		t.Fatalf("expected deny for anonymous read of private organization")
	}
}

func TestDecideMembershipGrantsReadButNotWrite(t *testing.T) {
	org := entities.Organization{ID: uuid.New()}
	member := userSubject(uuid.New(), entities.Membership{OrganizationID: org.ID})

	if allowed, _ := Decide(member, entities.AccessRead, org); !allowed {
		t.Fatalf("expected member read allow")
	}
	allowed, reason := Decide(member, entities.AccessWrite, org)
	if allowed {
		t.Fatalf("expected non-admin write deny")
	}
	if reason != "admin_required" {
		t.Fatalf("expected admin_required reason, got %q", reason)
	}
}

func TestDecideAdminMembershipGrantsWrite(t *testing.T) {
	org := entities.Organization{ID: uuid.New()}
	admin := userSubject(uuid.New(), entities.Membership{OrganizationID: org.ID, Admin: true})

	if allowed, _ := Decide(admin, entities.AccessWrite, org); !allowed {
		t.Fatalf("expected admin write allow")
	}
}

func TestDecideOrganizationTokenBoundToExactOrganization(t *testing.T) {
	org := entities.Organization{ID: uuid.New()}
	other := entities.Organization{ID: uuid.New()}
	token := tokenSubject(org.ID)

	if allowed, _ := Decide(token, entities.AccessWrite, org); !allowed {
		t.Fatalf("expected bound token write allow")
	}
	if allowed, _ := Decide(token, entities.AccessRead, other); allowed {
		t.Fatalf("expected token deny on a different organization")
	}
}

func TestDecidePublicOrganizationReadableByAnyone(t *testing.T) {
	org := entities.Organization{ID: uuid.New(), Public: true}

	if allowed, reason := Decide(entities.Anonymous(), entities.AccessRead, org); !allowed || reason != "public_resource" {
		t.Fatalf("expected anonymous public read allow, got %v (%s)", allowed, reason)
	}
	if allowed, _ := Decide(entities.Anonymous(), entities.AccessWrite, org); allowed {
		t.Fatalf("public flag must not grant write")
	}
}

func TestDecideMemberListRequiresSelfMembership(t *testing.T) {
	org := entities.Organization{ID: uuid.New(), Public: true}
	list := entities.MemberList{OrganizationID: org.ID}
	outsider := userSubject(uuid.New())

	// Public read access does not leak into the roster rule.
	if allowed, _ := Decide(outsider, entities.AccessRead, org); !allowed {
		t.Fatalf("expected outsider public org read allow")
	}
	if allowed, _ := Decide(outsider, entities.AccessRead, list); allowed {
		t.Fatalf("expected outsider member-list deny")
	}
	if allowed, _ := Decide(tokenSubject(org.ID), entities.AccessRead, list); allowed {
		t.Fatalf("expected organization-token member-list deny")
	}

	member := userSubject(uuid.New(), entities.Membership{OrganizationID: org.ID})
	if allowed, reason := Decide(member, entities.AccessRead, list); !allowed || reason != "self_membership" {
		t.Fatalf("expected member list allow, got %v (%s)", allowed, reason)
	}
}

func TestDecideAccountFollowsOwnerReference(t *testing.T) {
	ownerID := uuid.New()
	orgID := uuid.New()
	account := entities.Account{ID: uuid.New(), OwnerUserID: &ownerID}

	if allowed, _ := Decide(userSubject(ownerID), entities.AccessWrite, account); !allowed {
		t.Fatalf("expected owner write allow")
	}
	// A caller claiming ownership through request context must not pass.
	if allowed, _ := Decide(userSubject(uuid.New()), entities.AccessWrite, account); allowed {
		t.Fatalf("expected non-owner deny")
	}

	orgAccount := entities.Account{ID: uuid.New(), OwnerOrganizationID: &orgID}
	if allowed, _ := Decide(tokenSubject(orgID), entities.AccessWrite, orgAccount); !allowed {
		t.Fatalf("expected owning-organization token allow")
	}
	admin := userSubject(uuid.New(), entities.Membership{OrganizationID: orgID, Admin: true})
	if allowed, _ := Decide(admin, entities.AccessRead, orgAccount); !allowed {
		t.Fatalf("expected owning-organization admin allow")
	}
	reader := userSubject(uuid.New(), entities.Membership{OrganizationID: orgID})
	if allowed, _ := Decide(reader, entities.AccessRead, orgAccount); allowed {
		t.Fatalf("expected non-admin member deny on account")
	}
}

func TestDecideOwnerlessAccountDeniesEveryone(t *testing.T) {
	account := entities.Account{ID: uuid.New()}
	admin := userSubject(uuid.New(), entities.Membership{OrganizationID: uuid.New(), Admin: true})

	allowed, reason := Decide(admin, entities.AccessRead, account)
	if allowed {
		t.Fatalf("expected ownerless account deny")
	}
	if reason != "owner_missing" {
		t.Fatalf("expected owner_missing reason, got %q", reason)
	}
}

func TestDecideCustomerGatedByOwningOrganization(t *testing.T) {
	orgID := uuid.New()
	customer := entities.Customer{ID: uuid.New(), OrganizationID: orgID}

	member := userSubject(uuid.New(), entities.Membership{OrganizationID: orgID})
	if allowed, _ := Decide(member, entities.AccessRead, customer); !allowed {
		t.Fatalf("expected member customer read allow")
	}
	if allowed, _ := Decide(member, entities.AccessWrite, customer); allowed {
		t.Fatalf("expected non-admin customer write deny")
	}
	if allowed, _ := Decide(tokenSubject(orgID), entities.AccessWrite, customer); !allowed {
		t.Fatalf("expected bound token customer write allow")
	}
	if allowed, _ := Decide(userSubject(uuid.New()), entities.AccessRead, customer); allowed {
		t.Fatalf("expected stranger customer read deny")
	}
}

func TestDecideUnknownAccessTypeDeniesEverything(t *testing.T) {
	org := entities.Organization{ID: uuid.New(), Public: true}
	admin := userSubject(uuid.New(), entities.Membership{OrganizationID: org.ID, Admin: true})

	allowed, reason := Decide(admin, entities.AccessType("delete"), org)
	if allowed {
		t.Fatalf("expected unknown access type deny")
	}
	if reason != "unknown_access_type" {
		t.Fatalf("expected unknown_access_type reason, got %q", reason)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	org := entities.Organization{ID: uuid.New()}
	member := userSubject(uuid.New(), entities.Membership{OrganizationID: org.ID, Admin: true})

	firstAllowed, firstReason := Decide(member, entities.AccessWrite, org)
	for i := 0; i < 10; i++ {
		allowed, reason := Decide(member, entities.AccessWrite, org)
		if allowed != firstAllowed || reason != firstReason {
			t.Fatalf("decision changed across identical calls")
		}
	}
}
