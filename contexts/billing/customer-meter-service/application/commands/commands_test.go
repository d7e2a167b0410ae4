package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/adapters/memory"
	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	"meridian/contexts/billing/customer-meter-service/ports"
)

type stubAuthorizer struct {
	read  bool
	write bool
}

func (a stubAuthorizer) CanReadCustomer(context.Context, ports.Caller, entities.Customer) (bool, error) {
	return a.read, nil
}

func (a stubAuthorizer) CanWriteCustomer(context.Context, ports.Caller, entities.Customer) (bool, error) {
	return a.write, nil
}

type recordingEnqueuer struct {
	calls []string
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, taskName string, targetID uuid.UUID) error {
	e.calls = append(e.calls, taskName+":"+targetID.String())
	return nil
}

func userCaller() ports.Caller {
	return ports.Caller{ID: uuid.New(), Kind: ports.CallerKindUser}
}

func newIngestUseCase(store *memory.Store, authorizer ports.Authorizer, tasks ports.TaskEnqueuer) IngestEventUseCase {
	return IngestEventUseCase{
		Customers:  store,
		Events:     store,
		Authorizer: authorizer,
		Tasks:      tasks,
		Clock:      memory.SystemClock{},
		IDs:        memory.UUIDGenerator{},
	}
}

func TestIngestEventAppendsAndSchedulesRecomputation(t *testing.T) {
	store := memory.NewStore()
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New(), CreatedAt: time.Now()}
	store.AddCustomer(customer)

	enqueuer := &recordingEnqueuer{}
	uc := newIngestUseCase(store, stubAuthorizer{read: true, write: true}, enqueuer)

	event, err := uc.Execute(context.Background(), IngestEventCommand{
		Caller:     userCaller(),
		CustomerID: customer.ID,
		Name:       "api.request",
		Value:      4,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if event.OrganizationID != customer.OrganizationID {
		t.Errorf("event organization = %s, want %s", event.OrganizationID, customer.OrganizationID)
	}

	stored, err := store.ListEventsByCustomer(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored event, got %d", len(stored))
	}

	want := TaskUpdateCustomerMeters + ":" + customer.ID.String()
	if len(enqueuer.calls) != 1 || enqueuer.calls[0] != want {
		t.Errorf("enqueued %v, want [%s]", enqueuer.calls, want)
	}
}

func TestIngestEventAnonymousCallerRejected(t *testing.T) {
	store := memory.NewStore()
	uc := newIngestUseCase(store, stubAuthorizer{read: true, write: true}, &recordingEnqueuer{})

	_, err := uc.Execute(context.Background(), IngestEventCommand{
		Caller:     ports.Anonymous(),
		CustomerID: uuid.New(),
		Name:       "api.request",
		Value:      1,
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestIngestEventValidation(t *testing.T) {
	store := memory.NewStore()
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New()}
	store.AddCustomer(customer)
	uc := newIngestUseCase(store, stubAuthorizer{read: true, write: true}, &recordingEnqueuer{})

	cases := []struct {
		name string
		cmd  IngestEventCommand
	}{
		{"empty name", IngestEventCommand{Caller: userCaller(), CustomerID: customer.ID, Name: "  ", Value: 1}},
		{"negative value", IngestEventCommand{Caller: userCaller(), CustomerID: customer.ID, Name: "api.request", Value: -1}},
		{"credit without meter", IngestEventCommand{Caller: userCaller(), CustomerID: customer.ID, Name: entities.CreditEventName, Value: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tc.cmd)
			if !errors.Is(err, domainerrors.ErrInvalidEventInput) {
				t.Fatalf("expected ErrInvalidEventInput, got %v", err)
			}
		})
	}
}

func TestIngestEventUnreadableCustomerLooksMissing(t *testing.T) {
	store := memory.NewStore()
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New()}
	store.AddCustomer(customer)
	uc := newIngestUseCase(store, stubAuthorizer{read: false, write: false}, &recordingEnqueuer{})

	_, err := uc.Execute(context.Background(), IngestEventCommand{
		Caller:     userCaller(),
		CustomerID: customer.ID,
		Name:       "api.request",
		Value:      1,
	})
	if !errors.Is(err, domainerrors.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestIngestEventReadableButNotWritable(t *testing.T) {
	store := memory.NewStore()
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New()}
	store.AddCustomer(customer)
	enqueuer := &recordingEnqueuer{}
	uc := newIngestUseCase(store, stubAuthorizer{read: true, write: false}, enqueuer)

	_, err := uc.Execute(context.Background(), IngestEventCommand{
		Caller:     userCaller(),
		CustomerID: customer.ID,
		Name:       "api.request",
		Value:      1,
	})
	if !errors.Is(err, domainerrors.ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}
	if len(enqueuer.calls) != 0 {
		t.Errorf("denied ingestion must not schedule work, got %v", enqueuer.calls)
	}
}
