package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/domain/entities"
)

func TestCustomerMeterIDIsStable(t *testing.T) {
	customerID := uuid.New()
	meterID := uuid.New()
	if CustomerMeterID(customerID, meterID) != CustomerMeterID(customerID, meterID) {
		t.Fatal("same pair produced different ids")
	}
	if CustomerMeterID(customerID, meterID) == CustomerMeterID(meterID, customerID) {
		t.Fatal("swapped pair produced the same id")
	}
}

func TestRecomputeIgnoresOtherCustomersAndUnknownEvents(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New()}
	meter := entities.Meter{ID: uuid.New(), OrganizationID: customer.OrganizationID, EventName: "api.request"}

	events := []entities.UsageEvent{
		{ID: uuid.New(), CustomerID: customer.ID, Name: "api.request", Value: 5},
		{ID: uuid.New(), CustomerID: uuid.New(), Name: "api.request", Value: 99},
		{ID: uuid.New(), CustomerID: customer.ID, Name: "unmatched.event", Value: 42},
	}

	got := RecomputeCustomerMeters(customer, []entities.Meter{meter}, events, now)
	want := []entities.CustomerMeter{{
		ID:            CustomerMeterID(customer.ID, meter.ID),
		CustomerID:    customer.ID,
		MeterID:       meter.ID,
		ConsumedUnits: 5,
		CreditedUnits: 0,
		Balance:       -5,
		UpdatedAt:     now,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRecomputeSharedEventNameCountsForEveryMeter(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New()}
	first := entities.Meter{ID: uuid.New(), OrganizationID: customer.OrganizationID, EventName: "api.request"}
	second := entities.Meter{ID: uuid.New(), OrganizationID: customer.OrganizationID, EventName: "api.request"}

	events := []entities.UsageEvent{
		{ID: uuid.New(), CustomerID: customer.ID, Name: "api.request", Value: 3},
		{ID: uuid.New(), CustomerID: customer.ID, Name: "api.request", Value: 4},
	}

	got := RecomputeCustomerMeters(customer, []entities.Meter{first, second}, events, now)
	if len(got) != 2 {
		t.Fatalf("expected a row per meter, got %+v", got)
	}
	for _, row := range got {
		if row.ConsumedUnits != 7 {
			t.Errorf("meter %s consumed %v, want 7", row.MeterID, row.ConsumedUnits)
		}
	}
}

func TestRecomputeCreditAgainstForeignMeterDropped(t *testing.T) {
	now := time.Now().UTC()
	customer := entities.Customer{ID: uuid.New(), OrganizationID: uuid.New()}
	foreignMeterID := uuid.New()

	events := []entities.UsageEvent{
		{ID: uuid.New(), CustomerID: customer.ID, Name: entities.CreditEventName, Value: 10, MeterID: &foreignMeterID},
	}
	got := RecomputeCustomerMeters(customer, nil, events, now)
	if len(got) != 0 {
		t.Fatalf("credit against unknown meter must be dropped, got %+v", got)
	}
}
