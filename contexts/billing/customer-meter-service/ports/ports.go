// Package ports declares the interfaces the billing application layer
// depends on. Adapters and the platform wire concrete implementations.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/domain/entities"
)

// CallerKind identifies how the request was authenticated.
type CallerKind string

const (
	CallerKindUser              CallerKind = "user"
	CallerKindOrganizationToken CallerKind = "organization_token"
	CallerKindAnonymous         CallerKind = "anonymous"
)

// Caller is the authenticated principal on whose behalf an operation runs.
type Caller struct {
	ID             uuid.UUID
	Kind           CallerKind
	OrganizationID *uuid.UUID
}

// Anonymous returns the unauthenticated caller.
func Anonymous() Caller {
	return Caller{Kind: CallerKindAnonymous}
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new rows.
type IDGenerator interface {
	NewID(ctx context.Context) (uuid.UUID, error)
}

// CustomerRepository reads customers and enumerates them per organization.
// ListOrganizationIDsWithCustomers feeds the periodic refresh sweep.
type CustomerRepository interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (entities.Customer, error)
	ListCustomerIDsByOrganization(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error)
	ListOrganizationIDsWithCustomers(ctx context.Context) ([]uuid.UUID, error)
}

// MeterRepository reads the meters defined by an organization.
type MeterRepository interface {
	ListMetersByOrganization(ctx context.Context, organizationID uuid.UUID) ([]entities.Meter, error)
}

// UsageEventRepository stores the immutable event history.
type UsageEventRepository interface {
	AppendEvent(ctx context.Context, event entities.UsageEvent) error
	ListEventsByCustomer(ctx context.Context, customerID uuid.UUID) ([]entities.UsageEvent, error)
}

// CustomerMeterRepository holds the derived balances. ReplaceForCustomer
// swaps the customer's full row set atomically so recomputation overwrites
// rather than accumulates.
type CustomerMeterRepository interface {
	ReplaceForCustomer(ctx context.Context, customerID uuid.UUID, meters []entities.CustomerMeter) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entities.CustomerMeter, error)
}

// Authorizer answers access questions about billing resources.
type Authorizer interface {
	CanReadCustomer(ctx context.Context, caller Caller, customer entities.Customer) (bool, error)
	CanWriteCustomer(ctx context.Context, caller Caller, customer entities.Customer) (bool, error)
}

// TaskEnqueuer hands work to the background dispatcher.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskName string, targetID uuid.UUID) error
}
