package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"meridian/contexts/identity-access/authorization-service/adapters/memory"
	"meridian/contexts/identity-access/authorization-service/domain/entities"
)

type failingDirectory struct{}

func (failingDirectory) ListByUser(_ context.Context, _ uuid.UUID) ([]entities.Membership, error) {
	return nil, errors.New("directory unavailable")
}

func TestCheckAccessLoadsMembershipsFromDirectory(t *testing.T) {
	store := memory.NewStore()
	orgID := uuid.New()
	userID := uuid.New()
	store.AddMembership(userID, orgID, true)

	useCase := CheckAccessUseCase{Memberships: store}
	decision, err := useCase.Execute(context.Background(), CheckAccessQuery{
		Subject:  entities.Subject{ID: userID, Kind: entities.SubjectKindUser},
		Access:   entities.AccessWrite,
		Resource: entities.Organization{ID: orgID},
	})
	if err != nil {
		t.Fatalf("check access failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow, got deny (%s)", decision.Reason)
	}
}

func TestCheckAccessDeniesByDefaultWhenDirectoryFails(t *testing.T) {
	useCase := CheckAccessUseCase{Memberships: failingDirectory{}}
	decision, err := useCase.Execute(context.Background(), CheckAccessQuery{
		Subject:  entities.Subject{ID: uuid.New(), Kind: entities.SubjectKindUser},
		Access:   entities.AccessRead,
		Resource: entities.Organization{ID: uuid.New(), Public: false},
	})
	if err != nil {
		t.Fatalf("lookup failure must deny, not error: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny by default")
	}
	if decision.Reason != "deny_by_default" {
		t.Fatalf("expected deny_by_default reason, got %q", decision.Reason)
	}
}

func TestCheckAccessKeepsPreloadedMemberships(t *testing.T) {
	orgID := uuid.New()
	subject := entities.Subject{
		ID:          uuid.New(),
		Kind:        entities.SubjectKindUser,
		Memberships: []entities.Membership{{OrganizationID: orgID}},
	}

	// A failing directory is irrelevant when memberships came preloaded.
	useCase := CheckAccessUseCase{Memberships: failingDirectory{}}
	decision, err := useCase.Execute(context.Background(), CheckAccessQuery{
		Subject:  subject,
		Access:   entities.AccessRead,
		Resource: entities.Organization{ID: orgID},
	})
	if err != nil {
		t.Fatalf("check access failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow from preloaded membership")
	}
}
