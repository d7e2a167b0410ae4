// Package workers contains the background task handlers of the billing
// context. Handlers are idempotent so the dispatcher can redeliver them.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/application"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	"meridian/contexts/billing/customer-meter-service/domain/services"
	"meridian/contexts/billing/customer-meter-service/ports"
)

// UpdateCustomerMetersWorker rebuilds one customer's derived meter state
// from the full event history. Rebuilding from scratch makes redelivery
// harmless: two runs over the same events produce the same rows.
type UpdateCustomerMetersWorker struct {
	Customers      ports.CustomerRepository
	Meters         ports.MeterRepository
	Events         ports.UsageEventRepository
	CustomerMeters ports.CustomerMeterRepository
	Clock          ports.Clock
	Logger         *slog.Logger
}

func (w UpdateCustomerMetersWorker) Execute(ctx context.Context, customerID uuid.UUID) error {
	logger := application.ResolveLogger(w.Logger)

	customer, err := w.Customers.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrCustomerNotFound) {
			// The customer was deleted after the task was enqueued. No
			// number of retries brings it back.
			return fmt.Errorf("%w: %s", domainerrors.ErrCustomerDoesNotExist, customerID)
		}
		return fmt.Errorf("load customer %s: %w", customerID, err)
	}

	meters, err := w.Meters.ListMetersByOrganization(ctx, customer.OrganizationID)
	if err != nil {
		return fmt.Errorf("load meters for organization %s: %w", customer.OrganizationID, err)
	}
	events, err := w.Events.ListEventsByCustomer(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("load usage events for customer %s: %w", customer.ID, err)
	}

	derived := services.RecomputeCustomerMeters(customer, meters, events, w.Clock.Now().UTC())
	if err := w.CustomerMeters.ReplaceForCustomer(ctx, customer.ID, derived); err != nil {
		return fmt.Errorf("store customer meters for %s: %w", customer.ID, err)
	}

	logger.Info("customer meters recomputed",
		slog.String("event", "customer_meters_recomputed"),
		slog.String("module", "billing.customer_meter"),
		slog.String("layer", "application"),
		slog.String("customer_id", customer.ID.String()),
		slog.Int("meter_count", len(derived)),
	)
	return nil
}
