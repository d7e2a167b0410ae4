package organizations

import (
	"log/slog"

	httpadapter "meridian/contexts/organizations/organization-service/adapters/http"
	"meridian/contexts/organizations/organization-service/adapters/memory"
	"meridian/contexts/organizations/organization-service/application/commands"
	"meridian/contexts/organizations/organization-service/application/queries"
	"meridian/contexts/organizations/organization-service/ports"
)

// Module is the organization-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Organizations ports.OrganizationRepository
	Accounts      ports.AccountRepository
	Members       ports.MembershipRepository
	Authorizer    ports.Authorizer
	Tasks         ports.TaskEnqueuer
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// NewModule wires use cases and the transport handler with explicit ports.
func NewModule(deps Dependencies) Module {
	handler := httpadapter.Handler{
		ListOrganizations: queries.ListOrganizationsUseCase{
			Organizations: deps.Organizations,
			Logger:        deps.Logger,
		},
		GetOrganization: queries.GetOrganizationUseCase{
			Organizations: deps.Organizations,
			Authorizer:    deps.Authorizer,
			Logger:        deps.Logger,
		},
		CreateOrganization: commands.CreateOrganizationUseCase{
			Organizations: deps.Organizations,
			Clock:         deps.Clock,
			IDGenerator:   deps.IDGenerator,
			Logger:        deps.Logger,
		},
		UpdateOrganization: commands.UpdateOrganizationUseCase{
			Organizations: deps.Organizations,
			Authorizer:    deps.Authorizer,
			Clock:         deps.Clock,
			Logger:        deps.Logger,
		},
		GetAccount: queries.GetAccountUseCase{
			Organizations: deps.Organizations,
			Accounts:      deps.Accounts,
			Authorizer:    deps.Authorizer,
			Logger:        deps.Logger,
		},
		SetAccount: commands.SetAccountUseCase{
			Organizations: deps.Organizations,
			Accounts:      deps.Accounts,
			Authorizer:    deps.Authorizer,
			Tasks:         deps.Tasks,
			Clock:         deps.Clock,
			Logger:        deps.Logger,
		},
		ListMembers: queries.ListMembersUseCase{
			Organizations: deps.Organizations,
			Members:       deps.Members,
			Authorizer:    deps.Authorizer,
			Logger:        deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{Handler: handler}
}

// NewInMemoryModule builds a development/testing module with in-memory
// repositories. The authorizer and task enqueuer stay injectable because they
// are bridged outside this context.
func NewInMemoryModule(authorizer ports.Authorizer, tasks ports.TaskEnqueuer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Organizations: store,
		Accounts:      store,
		Members:       store,
		Authorizer:    authorizer,
		Tasks:         tasks,
		Clock:         memory.SystemClock{},
		IDGenerator:   memory.UUIDGenerator{},
		Logger:        logger,
	})
	module.Store = store
	return module
}
