package workers

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/adapters/memory"
	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type recordingEnqueuer struct {
	calls []string
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, taskName string, targetID uuid.UUID) error {
	e.calls = append(e.calls, taskName+":"+targetID.String())
	return nil
}

func seedCustomer(store *memory.Store, organizationID uuid.UUID) entities.Customer {
	customer := entities.Customer{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		ExternalID:     "cus_test",
		Name:           "Test Customer",
		Email:          "test@example.com",
		CreatedAt:      time.Now(),
	}
	store.AddCustomer(customer)
	return customer
}

func TestUpdateCustomerMetersDerivesBalances(t *testing.T) {
	store := memory.NewStore()
	organizationID := uuid.New()
	customer := seedCustomer(store, organizationID)

	meter := entities.Meter{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           "API Calls",
		EventName:      "api.request",
	}
	store.AddMeter(meter)

	for _, value := range []float64{3, 7} {
		if err := store.AppendEvent(context.Background(), entities.UsageEvent{
			ID:             uuid.New(),
			OrganizationID: organizationID,
			CustomerID:     customer.ID,
			Name:           "api.request",
			Value:          value,
			Timestamp:      time.Now(),
		}); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}
	creditMeterID := meter.ID
	if err := store.AppendEvent(context.Background(), entities.UsageEvent{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		CustomerID:     customer.ID,
		Name:           entities.CreditEventName,
		Value:          100,
		MeterID:        &creditMeterID,
		Timestamp:      time.Now(),
	}); err != nil {
		t.Fatalf("append credit event: %v", err)
	}

	worker := UpdateCustomerMetersWorker{
		Customers:      store,
		Meters:         store,
		Events:         store,
		CustomerMeters: store,
		Clock:          fixedClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	}
	if err := worker.Execute(context.Background(), customer.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}

	meters, err := store.ListByCustomer(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("list customer meters: %v", err)
	}
	if len(meters) != 1 {
		t.Fatalf("expected one derived row, got %d", len(meters))
	}
	row := meters[0]
	if row.ConsumedUnits != 10 {
		t.Errorf("consumed units = %v, want 10", row.ConsumedUnits)
	}
	if row.CreditedUnits != 100 {
		t.Errorf("credited units = %v, want 100", row.CreditedUnits)
	}
	if row.Balance != 90 {
		t.Errorf("balance = %v, want 90", row.Balance)
	}
}

func TestUpdateCustomerMetersIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	organizationID := uuid.New()
	customer := seedCustomer(store, organizationID)

	meterA := entities.Meter{ID: uuid.New(), OrganizationID: organizationID, Name: "Requests", EventName: "api.request"}
	meterB := entities.Meter{ID: uuid.New(), OrganizationID: organizationID, Name: "Storage", EventName: "storage.write"}
	store.AddMeter(meterA)
	store.AddMeter(meterB)

	for _, name := range []string{"api.request", "storage.write", "api.request"} {
		if err := store.AppendEvent(context.Background(), entities.UsageEvent{
			ID:             uuid.New(),
			OrganizationID: organizationID,
			CustomerID:     customer.ID,
			Name:           name,
			Value:          2.5,
			Timestamp:      time.Now(),
		}); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	worker := UpdateCustomerMetersWorker{
		Customers:      store,
		Meters:         store,
		Events:         store,
		CustomerMeters: store,
		Clock:          fixedClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	}

	if err := worker.Execute(context.Background(), customer.ID); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	first, err := store.ListByCustomer(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("list after first run: %v", err)
	}

	if err := worker.Execute(context.Background(), customer.ID); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	second, err := store.ListByCustomer(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("list after second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("redelivery changed derived state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("expected rows for both meters, got %d", len(first))
	}
}

func TestUpdateCustomerMetersDeletedCustomerIsFinal(t *testing.T) {
	store := memory.NewStore()
	customer := seedCustomer(store, uuid.New())
	store.RemoveCustomer(customer.ID)

	worker := UpdateCustomerMetersWorker{
		Customers:      store,
		Meters:         store,
		Events:         store,
		CustomerMeters: store,
		Clock:          fixedClock{now: time.Now()},
	}
	err := worker.Execute(context.Background(), customer.ID)
	if !errors.Is(err, domainerrors.ErrCustomerDoesNotExist) {
		t.Fatalf("expected ErrCustomerDoesNotExist, got %v", err)
	}
}

func TestRefreshOrganizationBillingFansOut(t *testing.T) {
	store := memory.NewStore()
	organizationID := uuid.New()
	first := seedCustomer(store, organizationID)
	second := seedCustomer(store, organizationID)
	seedCustomer(store, uuid.New()) // other organization, must not be scheduled

	enqueuer := &recordingEnqueuer{}
	worker := RefreshOrganizationBillingWorker{
		Customers: store,
		Tasks:     enqueuer,
	}
	if err := worker.Execute(context.Background(), organizationID); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(enqueuer.calls) != 2 {
		t.Fatalf("expected 2 enqueued tasks, got %d: %v", len(enqueuer.calls), enqueuer.calls)
	}
	want := map[string]bool{
		"customer_meter.update_customer:" + first.ID.String():  true,
		"customer_meter.update_customer:" + second.ID.String(): true,
	}
	for _, call := range enqueuer.calls {
		if !want[call] {
			t.Errorf("unexpected enqueue %q", call)
		}
	}
}

func TestRefreshOrganizationBillingEmptyOrganization(t *testing.T) {
	store := memory.NewStore()
	enqueuer := &recordingEnqueuer{}
	worker := RefreshOrganizationBillingWorker{
		Customers: store,
		Tasks:     enqueuer,
	}
	if err := worker.Execute(context.Background(), uuid.New()); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if len(enqueuer.calls) != 0 {
		t.Fatalf("expected no enqueues, got %v", enqueuer.calls)
	}
}
