package commands

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"meridian/contexts/organizations/organization-service/adapters/memory"
	"meridian/contexts/organizations/organization-service/domain/entities"
	domainerrors "meridian/contexts/organizations/organization-service/domain/errors"
	"meridian/contexts/organizations/organization-service/ports"
)

// stubAuthorizer scripts decisions per capability.
type stubAuthorizer struct {
	read        bool
	write       bool
	listMembers bool
	useAccount  bool
}

func (s stubAuthorizer) CanReadOrganization(_ context.Context, _ ports.Caller, _ entities.Organization) (bool, error) {
	return s.read, nil
}

func (s stubAuthorizer) CanWriteOrganization(_ context.Context, _ ports.Caller, _ entities.Organization) (bool, error) {
	return s.write, nil
}

func (s stubAuthorizer) CanListMembers(_ context.Context, _ ports.Caller, _ entities.Organization) (bool, error) {
	return s.listMembers, nil
}

func (s stubAuthorizer) CanUseAccount(_ context.Context, _ ports.Caller, _ entities.Account) (bool, error) {
	return s.useAccount, nil
}

type recordingEnqueuer struct {
	mu       sync.Mutex
	requests []string
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, taskName string, targetID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, taskName+":"+targetID.String())
	return nil
}

func userCaller() ports.Caller {
	return ports.Caller{ID: uuid.New(), Kind: ports.CallerKindUser}
}

func seedOrganization(t *testing.T, store *memory.Store, caller ports.Caller, slug string) entities.Organization {
	t.Helper()
	useCase := CreateOrganizationUseCase{
		Organizations: store,
		Clock:         memory.SystemClock{},
		IDGenerator:   memory.UUIDGenerator{},
	}
	organization, err := useCase.Execute(context.Background(), CreateOrganizationCommand{
		Caller: caller,
		Name:   "Acme Inc",
		Slug:   slug,
	})
	if err != nil {
		t.Fatalf("seed organization failed: %v", err)
	}
	return organization
}

func TestCreateOrganizationAddsCreatorAsAdmin(t *testing.T) {
	store := memory.NewStore()
	caller := userCaller()

	organization := seedOrganization(t, store, caller, "acme")

	member, found, err := store.GetMember(context.Background(), caller.ID, organization.ID)
	if err != nil || !found {
		t.Fatalf("expected creator membership, found=%v err=%v", found, err)
	}
	if !member.Admin {
		t.Fatalf("creator membership must be admin")
	}
}

func TestCreateOrganizationRejectsNonUserCallers(t *testing.T) {
	store := memory.NewStore()
	useCase := CreateOrganizationUseCase{
		Organizations: store,
		Clock:         memory.SystemClock{},
		IDGenerator:   memory.UUIDGenerator{},
	}

	orgID := uuid.New()
	for _, caller := range []ports.Caller{
		ports.Anonymous(),
		{ID: uuid.New(), Kind: ports.CallerKindOrganizationToken, OrganizationID: &orgID},
	} {
		_, err := useCase.Execute(context.Background(), CreateOrganizationCommand{
			Caller: caller,
			Name:   "Acme",
			Slug:   "acme",
		})
		if !errors.Is(err, domainerrors.ErrUnauthorized) {
			t.Fatalf("expected unauthorized for %s caller, got %v", caller.Kind, err)
		}
	}
}

func TestCreateOrganizationRejectsDuplicateSlug(t *testing.T) {
	store := memory.NewStore()
	seedOrganization(t, store, userCaller(), "acme")

	useCase := CreateOrganizationUseCase{
		Organizations: store,
		Clock:         memory.SystemClock{},
		IDGenerator:   memory.UUIDGenerator{},
	}
	_, err := useCase.Execute(context.Background(), CreateOrganizationCommand{
		Caller: userCaller(),
		Name:   "Other Acme",
		Slug:   "acme",
	})
	if !errors.Is(err, domainerrors.ErrSlugTaken) {
		t.Fatalf("expected slug taken, got %v", err)
	}
}

func TestUpdateOrganizationPersistsNewName(t *testing.T) {
	store := memory.NewStore()
	caller := userCaller()
	organization := seedOrganization(t, store, caller, "acme")

	useCase := UpdateOrganizationUseCase{
		Organizations: store,
		Authorizer:    stubAuthorizer{read: true, write: true},
		Clock:         memory.SystemClock{},
	}
	name := "Acme"
	updated, err := useCase.Execute(context.Background(), UpdateOrganizationCommand{
		Caller:         caller,
		OrganizationID: organization.ID,
		Name:           &name,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Acme" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	persisted, err := store.GetOrganization(context.Background(), organization.ID)
	if err != nil {
		t.Fatalf("fetch after update failed: %v", err)
	}
	if persisted.Name != "Acme" {
		t.Fatalf("expected persisted name Acme, got %q", persisted.Name)
	}
}

func TestUpdateOrganizationReadableButNotWritableIsNotPermitted(t *testing.T) {
	store := memory.NewStore()
	organization := seedOrganization(t, store, userCaller(), "acme")

	useCase := UpdateOrganizationUseCase{
		Organizations: store,
		Authorizer:    stubAuthorizer{read: true, write: false},
		Clock:         memory.SystemClock{},
	}
	name := "New Name"
	_, err := useCase.Execute(context.Background(), UpdateOrganizationCommand{
		Caller:         userCaller(),
		OrganizationID: organization.ID,
		Name:           &name,
	})
	if !errors.Is(err, domainerrors.ErrNotPermitted) {
		t.Fatalf("expected not permitted, got %v", err)
	}
}

func TestUpdateOrganizationUnreadableIsDisguisedAsNotFound(t *testing.T) {
	store := memory.NewStore()
	organization := seedOrganization(t, store, userCaller(), "acme")

	useCase := UpdateOrganizationUseCase{
		Organizations: store,
		Authorizer:    stubAuthorizer{},
		Clock:         memory.SystemClock{},
	}
	name := "New Name"
	_, err := useCase.Execute(context.Background(), UpdateOrganizationCommand{
		Caller:         userCaller(),
		OrganizationID: organization.ID,
		Name:           &name,
	})
	if !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("expected disguised not found, got %v", err)
	}
}

func TestSetAccountEnqueuesBillingRefresh(t *testing.T) {
	store := memory.NewStore()
	caller := userCaller()
	organization := seedOrganization(t, store, caller, "acme")

	account := entities.Account{ID: uuid.New(), OwnerUserID: &caller.ID, Country: "SE"}
	store.AddAccount(account)

	tasks := &recordingEnqueuer{}
	useCase := SetAccountUseCase{
		Organizations: store,
		Accounts:      store,
		Authorizer:    stubAuthorizer{read: true, write: true, useAccount: true},
		Tasks:         tasks,
		Clock:         memory.SystemClock{},
	}
	updated, err := useCase.Execute(context.Background(), SetAccountCommand{
		Caller:         caller,
		OrganizationID: organization.ID,
		AccountID:      account.ID,
	})
	if err != nil {
		t.Fatalf("set account failed: %v", err)
	}
	if updated.AccountID == nil || *updated.AccountID != account.ID {
		t.Fatalf("expected linked account id")
	}

	want := TaskRefreshOrganizationBilling + ":" + organization.ID.String()
	if len(tasks.requests) != 1 || tasks.requests[0] != want {
		t.Fatalf("expected one enqueued refresh %q, got %v", want, tasks.requests)
	}
}

func TestSetAccountRejectsForeignAccount(t *testing.T) {
	store := memory.NewStore()
	caller := userCaller()
	organization := seedOrganization(t, store, caller, "acme")

	otherOwner := uuid.New()
	account := entities.Account{ID: uuid.New(), OwnerUserID: &otherOwner}
	store.AddAccount(account)

	tasks := &recordingEnqueuer{}
	useCase := SetAccountUseCase{
		Organizations: store,
		Accounts:      store,
		Authorizer:    stubAuthorizer{read: true, write: true, useAccount: false},
		Tasks:         tasks,
		Clock:         memory.SystemClock{},
	}
	_, err := useCase.Execute(context.Background(), SetAccountCommand{
		Caller:         caller,
		OrganizationID: organization.ID,
		AccountID:      account.ID,
	})
	if !errors.Is(err, domainerrors.ErrNotPermitted) {
		t.Fatalf("expected not permitted for foreign account, got %v", err)
	}
	if len(tasks.requests) != 0 {
		t.Fatalf("denied mutation must not enqueue tasks")
	}
}

func TestSetAccountMissingAccountIsNotFound(t *testing.T) {
	store := memory.NewStore()
	caller := userCaller()
	organization := seedOrganization(t, store, caller, "acme")

	useCase := SetAccountUseCase{
		Organizations: store,
		Accounts:      store,
		Authorizer:    stubAuthorizer{read: true, write: true, useAccount: true},
		Clock:         memory.SystemClock{},
	}
	_, err := useCase.Execute(context.Background(), SetAccountCommand{
		Caller:         caller,
		OrganizationID: organization.ID,
		AccountID:      uuid.New(),
	})
	if !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}
