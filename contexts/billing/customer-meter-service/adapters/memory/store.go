// Package memory provides in-process repositories for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
)

// Store keeps the billing state in maps guarded by one mutex.
type Store struct {
	mu             sync.RWMutex
	customers      map[uuid.UUID]entities.Customer
	meters         map[uuid.UUID]entities.Meter
	events         map[uuid.UUID][]entities.UsageEvent
	customerMeters map[uuid.UUID][]entities.CustomerMeter
}

func NewStore() *Store {
	return &Store{
		customers:      make(map[uuid.UUID]entities.Customer),
		meters:         make(map[uuid.UUID]entities.Meter),
		events:         make(map[uuid.UUID][]entities.UsageEvent),
		customerMeters: make(map[uuid.UUID][]entities.CustomerMeter),
	}
}

// AddCustomer seeds a customer.
func (s *Store) AddCustomer(customer entities.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = customer
}

// RemoveCustomer deletes a customer, leaving any queued tasks pointing at a
// target that no longer exists.
func (s *Store) RemoveCustomer(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.customers, id)
}

// AddMeter seeds a meter definition.
func (s *Store) AddMeter(meter entities.Meter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meters[meter.ID] = meter
}

func (s *Store) GetCustomer(_ context.Context, id uuid.UUID) (entities.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers[id]
	if !ok {
		return entities.Customer{}, domainerrors.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Store) ListCustomerIDsByOrganization(_ context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0)
	for _, customer := range s.customers {
		if customer.OrganizationID == organizationID {
			ids = append(ids, customer.ID)
		}
	}
	return ids, nil
}

func (s *Store) ListOrganizationIDsWithCustomers(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, customer := range s.customers {
		if _, ok := seen[customer.OrganizationID]; ok {
			continue
		}
		seen[customer.OrganizationID] = struct{}{}
		ids = append(ids, customer.OrganizationID)
	}
	return ids, nil
}

func (s *Store) ListMetersByOrganization(_ context.Context, organizationID uuid.UUID) ([]entities.Meter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meters := make([]entities.Meter, 0)
	for _, meter := range s.meters {
		if meter.OrganizationID == organizationID {
			meters = append(meters, meter)
		}
	}
	return meters, nil
}

func (s *Store) AppendEvent(_ context.Context, event entities.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CustomerID] = append(s.events[event.CustomerID], event)
	return nil
}

func (s *Store) ListEventsByCustomer(_ context.Context, customerID uuid.UUID) ([]entities.UsageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[customerID]
	out := make([]entities.UsageEvent, len(events))
	copy(out, events)
	return out, nil
}

func (s *Store) ReplaceForCustomer(_ context.Context, customerID uuid.UUID, meters []entities.CustomerMeter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	replacement := make([]entities.CustomerMeter, len(meters))
	copy(replacement, meters)
	s.customerMeters[customerID] = replacement
	return nil
}

func (s *Store) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]entities.CustomerMeter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meters := s.customerMeters[customerID]
	out := make([]entities.CustomerMeter, len(meters))
	copy(out, meters)
	return out, nil
}

// SystemClock implements ports.Clock using wall-clock UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator implements ports.IDGenerator using RFC 4122 UUID v4 values.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (uuid.UUID, error) {
	return uuid.NewRandom()
}
