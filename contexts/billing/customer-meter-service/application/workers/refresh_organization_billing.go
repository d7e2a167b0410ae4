package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"meridian/contexts/billing/customer-meter-service/application"
	"meridian/contexts/billing/customer-meter-service/application/commands"
	"meridian/contexts/billing/customer-meter-service/ports"
)

// RefreshOrganizationBillingWorker fans one organization-wide refresh out
// into per-customer recomputation tasks. An organization with no customers
// is a successful no-op.
type RefreshOrganizationBillingWorker struct {
	Customers ports.CustomerRepository
	Tasks     ports.TaskEnqueuer
	Logger    *slog.Logger
}

func (w RefreshOrganizationBillingWorker) Execute(ctx context.Context, organizationID uuid.UUID) error {
	logger := application.ResolveLogger(w.Logger)

	customerIDs, err := w.Customers.ListCustomerIDsByOrganization(ctx, organizationID)
	if err != nil {
		return fmt.Errorf("list customers for organization %s: %w", organizationID, err)
	}

	for _, customerID := range customerIDs {
		if err := w.Tasks.Enqueue(ctx, commands.TaskUpdateCustomerMeters, customerID); err != nil {
			return fmt.Errorf("enqueue recomputation for customer %s: %w", customerID, err)
		}
	}

	logger.Info("organization billing refresh scheduled",
		slog.String("event", "organization_billing_refreshed"),
		slog.String("module", "billing.customer_meter"),
		slog.String("layer", "application"),
		slog.String("organization_id", organizationID.String()),
		slog.Int("customer_count", len(customerIDs)),
	)
	return nil
}
