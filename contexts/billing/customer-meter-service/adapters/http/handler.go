package httpadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/application/commands"
	"meridian/contexts/billing/customer-meter-service/application/queries"
	"meridian/contexts/billing/customer-meter-service/domain/entities"
	domainerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	"meridian/contexts/billing/customer-meter-service/ports"
	httptransport "meridian/contexts/billing/customer-meter-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	IngestEvent        commands.IngestEventUseCase
	ListCustomerMeters queries.ListCustomerMetersUseCase
	Logger             *slog.Logger
}

// IngestEventHandler records one usage event against a customer.
func (h Handler) IngestEventHandler(
	ctx context.Context,
	caller ports.Caller,
	customerID uuid.UUID,
	request httptransport.IngestEventRequest,
) (httptransport.UsageEventDTO, error) {
	var meterID *uuid.UUID
	if request.MeterID != nil {
		parsed, err := uuid.Parse(*request.MeterID)
		if err != nil {
			return httptransport.UsageEventDTO{}, fmt.Errorf("%w: meter_id is not a valid uuid", domainerrors.ErrInvalidEventInput)
		}
		meterID = &parsed
	}

	event, err := h.IngestEvent.Execute(ctx, commands.IngestEventCommand{
		Caller:     caller,
		CustomerID: customerID,
		Name:       request.Name,
		Value:      request.Value,
		MeterID:    meterID,
	})
	if err != nil {
		return httptransport.UsageEventDTO{}, err
	}
	return usageEventDTO(event), nil
}

// ListCustomerMetersHandler returns the customer's derived balances.
func (h Handler) ListCustomerMetersHandler(
	ctx context.Context,
	caller ports.Caller,
	customerID uuid.UUID,
) (httptransport.ListCustomerMetersResponse, error) {
	meters, err := h.ListCustomerMeters.Execute(ctx, queries.ListCustomerMetersQuery{
		Caller:     caller,
		CustomerID: customerID,
	})
	if err != nil {
		return httptransport.ListCustomerMetersResponse{}, err
	}

	items := make([]httptransport.CustomerMeterDTO, 0, len(meters))
	for _, meter := range meters {
		items = append(items, httptransport.CustomerMeterDTO{
			ID:            meter.ID.String(),
			CustomerID:    meter.CustomerID.String(),
			MeterID:       meter.MeterID.String(),
			ConsumedUnits: meter.ConsumedUnits,
			CreditedUnits: meter.CreditedUnits,
			Balance:       meter.Balance,
			UpdatedAt:     meter.UpdatedAt,
		})
	}
	return httptransport.ListCustomerMetersResponse{
		Items:      items,
		TotalCount: len(items),
	}, nil
}

func usageEventDTO(event entities.UsageEvent) httptransport.UsageEventDTO {
	dto := httptransport.UsageEventDTO{
		ID:             event.ID.String(),
		OrganizationID: event.OrganizationID.String(),
		CustomerID:     event.CustomerID.String(),
		Name:           event.Name,
		Value:          event.Value,
		Timestamp:      event.Timestamp,
	}
	if event.MeterID != nil {
		meterID := event.MeterID.String()
		dto.MeterID = &meterID
	}
	return dto
}
