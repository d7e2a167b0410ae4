package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/application"
	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	"meridian/contexts/billing/customer-meter-service/ports"
)

// ListCustomerMetersUseCase returns the derived balances of one customer.
// Callers without read access learn nothing, not even that the customer
// exists.
type ListCustomerMetersUseCase struct {
	Customers      ports.CustomerRepository
	CustomerMeters ports.CustomerMeterRepository
	Authorizer     ports.Authorizer
	Logger         *slog.Logger
}

// ListCustomerMetersQuery identifies the customer whose balances to read.
type ListCustomerMetersQuery struct {
	Caller     ports.Caller
	CustomerID uuid.UUID
}

func (uc ListCustomerMetersUseCase) Execute(ctx context.Context, query ListCustomerMetersQuery) ([]entities.CustomerMeter, error) {
	logger := application.ResolveLogger(uc.Logger)

	customer, err := uc.Customers.GetCustomer(ctx, query.CustomerID)
	if err != nil {
		return nil, err
	}

	allowed, err := uc.Authorizer.CanReadCustomer(ctx, query.Caller, customer)
	if err != nil {
		return nil, fmt.Errorf("authorize customer meter listing: %w", err)
	}
	if !allowed {
		return nil, domainerrors.ErrCustomerNotFound
	}

	meters, err := uc.CustomerMeters.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list customer meters: %w", err)
	}

	logger.Debug("customer meters listed",
		slog.String("event", "customer_meters_listed"),
		slog.String("module", "billing.customer_meter"),
		slog.String("layer", "application"),
		slog.String("customer_id", customer.ID.String()),
		slog.Int("count", len(meters)),
	)
	return meters, nil
}
