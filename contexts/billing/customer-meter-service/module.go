package billing

import (
	"log/slog"

	"meridian/contexts/billing/customer-meter-service/adapters/http"
	"meridian/contexts/billing/customer-meter-service/adapters/memory"
	"meridian/contexts/billing/customer-meter-service/application/commands"
	"meridian/contexts/billing/customer-meter-service/application/queries"
	"meridian/contexts/billing/customer-meter-service/application/workers"
	"meridian/contexts/billing/customer-meter-service/ports"
)

// Dependencies are the ports the billing module needs from its host.
type Dependencies struct {
	Customers      ports.CustomerRepository
	Meters         ports.MeterRepository
	Events         ports.UsageEventRepository
	CustomerMeters ports.CustomerMeterRepository
	Authorizer     ports.Authorizer
	Tasks          ports.TaskEnqueuer
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
}

// Module bundles the wired use cases, workers and transport handler.
type Module struct {
	Handler             httpadapter.Handler
	UpdateCustomer      workers.UpdateCustomerMetersWorker
	RefreshOrganization workers.RefreshOrganizationBillingWorker
	Store               *memory.Store
}

// NewModule wires the billing service against the supplied ports.
func NewModule(deps Dependencies) Module {
	ingest := commands.IngestEventUseCase{
		Customers:  deps.Customers,
		Events:     deps.Events,
		Authorizer: deps.Authorizer,
		Tasks:      deps.Tasks,
		Clock:      deps.Clock,
		IDs:        deps.IDGenerator,
		Logger:     deps.Logger,
	}
	listMeters := queries.ListCustomerMetersUseCase{
		Customers:      deps.Customers,
		CustomerMeters: deps.CustomerMeters,
		Authorizer:     deps.Authorizer,
		Logger:         deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			IngestEvent:        ingest,
			ListCustomerMeters: listMeters,
			Logger:             deps.Logger,
		},
		UpdateCustomer: workers.UpdateCustomerMetersWorker{
			Customers:      deps.Customers,
			Meters:         deps.Meters,
			Events:         deps.Events,
			CustomerMeters: deps.CustomerMeters,
			Clock:          deps.Clock,
			Logger:         deps.Logger,
		},
		RefreshOrganization: workers.RefreshOrganizationBillingWorker{
			Customers: deps.Customers,
			Tasks:     deps.Tasks,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the billing service on top of the in-process
// store. The authorizer and task enqueuer stay injectable because they are
// composed outside this context.
func NewInMemoryModule(authorizer ports.Authorizer, tasks ports.TaskEnqueuer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Customers:      store,
		Meters:         store,
		Events:         store,
		CustomerMeters: store,
		Authorizer:     authorizer,
		Tasks:          tasks,
		Clock:          memory.SystemClock{},
		IDGenerator:    memory.UUIDGenerator{},
		Logger:         logger,
	})
	module.Store = store
	return module
}
