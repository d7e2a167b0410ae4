package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/application"
	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	"meridian/contexts/billing/customer-meter-service/ports"
)

// TaskUpdateCustomerMeters recomputes one customer's derived meter state.
// Its payload is the customer ID.
const TaskUpdateCustomerMeters = "customer_meter.update_customer"

// IngestEventUseCase appends a usage event to a customer's history and
// schedules the recomputation that folds it into the derived balances.
type IngestEventUseCase struct {
	Customers  ports.CustomerRepository
	Events     ports.UsageEventRepository
	Authorizer ports.Authorizer
	Tasks      ports.TaskEnqueuer
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Logger     *slog.Logger
}

// IngestEventCommand carries the raw event fields from the transport layer.
type IngestEventCommand struct {
	Caller     ports.Caller
	CustomerID uuid.UUID
	Name       string
	Value      float64
	MeterID    *uuid.UUID
}

func (uc IngestEventUseCase) Execute(ctx context.Context, cmd IngestEventCommand) (entities.UsageEvent, error) {
	logger := application.ResolveLogger(uc.Logger)

	if cmd.Caller.Kind == ports.CallerKindAnonymous {
		return entities.UsageEvent{}, domainerrors.ErrUnauthorized
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.UsageEvent{}, fmt.Errorf("%w: event name is required", domainerrors.ErrInvalidEventInput)
	}
	if name == entities.CreditEventName && cmd.MeterID == nil {
		return entities.UsageEvent{}, fmt.Errorf("%w: credit events require a meter id", domainerrors.ErrInvalidEventInput)
	}
	if cmd.Value < 0 {
		return entities.UsageEvent{}, fmt.Errorf("%w: value must not be negative", domainerrors.ErrInvalidEventInput)
	}

	customer, err := uc.Customers.GetCustomer(ctx, cmd.CustomerID)
	if err != nil {
		return entities.UsageEvent{}, err
	}

	allowed, err := uc.Authorizer.CanWriteCustomer(ctx, cmd.Caller, customer)
	if err != nil {
		return entities.UsageEvent{}, fmt.Errorf("authorize event ingestion: %w", err)
	}
	if !allowed {
		readable, err := uc.Authorizer.CanReadCustomer(ctx, cmd.Caller, customer)
		if err != nil {
			return entities.UsageEvent{}, fmt.Errorf("authorize event ingestion: %w", err)
		}
		if !readable {
			return entities.UsageEvent{}, domainerrors.ErrCustomerNotFound
		}
		return entities.UsageEvent{}, domainerrors.ErrNotPermitted
	}

	eventID, err := uc.IDs.NewID(ctx)
	if err != nil {
		return entities.UsageEvent{}, fmt.Errorf("generate event id: %w", err)
	}
	event := entities.UsageEvent{
		ID:             eventID,
		OrganizationID: customer.OrganizationID,
		CustomerID:     customer.ID,
		Name:           name,
		Value:          cmd.Value,
		MeterID:        cmd.MeterID,
		Timestamp:      uc.Clock.Now().UTC(),
	}
	if err := uc.Events.AppendEvent(ctx, event); err != nil {
		return entities.UsageEvent{}, fmt.Errorf("append usage event: %w", err)
	}

	// The periodic billing refresh recomputes every customer anyway, so a
	// failed enqueue delays the balance update instead of losing it.
	if err := uc.Tasks.Enqueue(ctx, TaskUpdateCustomerMeters, customer.ID); err != nil {
		logger.Warn("usage event ingested but recomputation enqueue failed",
			slog.String("event", "ingest_event_enqueue_failed"),
			slog.String("module", "billing.customer_meter"),
			slog.String("layer", "application"),
			slog.String("customer_id", customer.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	logger.Info("usage event ingested",
		slog.String("event", "usage_event_ingested"),
		slog.String("module", "billing.customer_meter"),
		slog.String("layer", "application"),
		slog.String("customer_id", customer.ID.String()),
		slog.String("event_name", name),
	)
	return event, nil
}
